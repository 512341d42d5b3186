package repository

import (
	"course_platform_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) WithTx(tx *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: tx}
}

// Create 只写入 submission_choices 关联，不回写选项本身
func (r *SubmissionRepository) Create(submission *model.Submission) error {
	return r.DB.Omit("Choices.*").Create(submission).Error
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var submission model.Submission
	err := r.DB.Preload("Choices", func(db *gorm.DB) *gorm.DB {
		return db.Order("choices.id ASC")
	}).
		Preload("Enrollment").
		First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

type ExamSessionRepository struct {
	DB *gorm.DB
}

func NewExamSessionRepository(db *gorm.DB) *ExamSessionRepository {
	return &ExamSessionRepository{DB: db}
}

func (r *ExamSessionRepository) WithTx(tx *gorm.DB) *ExamSessionRepository {
	return &ExamSessionRepository{DB: tx}
}

func (r *ExamSessionRepository) FindActive(userID, courseID uint) (*model.ExamSession, error) {
	var session model.ExamSession
	err := r.DB.Where("user_id = ? AND course_id = ? AND is_active = ?", userID, courseID, true).
		Order("id ASC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ExamSessionRepository) Create(session *model.ExamSession) error {
	return r.DB.Create(session).Error
}

func (r *ExamSessionRepository) Save(session *model.ExamSession) error {
	return r.DB.Save(session).Error
}
