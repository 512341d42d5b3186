package repository

import (
	"course_platform_backend/internal/model"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

// FindOrCreate 对应 (user, course) 唯一的进度记录，不存在时创建
func (r *ProgressRepository) FindOrCreate(userID, courseID uint) (*model.Progress, error) {
	var progress model.Progress
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	progress = model.Progress{UserID: userID, CourseID: courseID}
	if err := r.DB.Create(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) HasCompletedLesson(progressID, lessonID uint) (bool, error) {
	var count int64
	err := r.DB.Table("progress_lessons").
		Where("progress_id = ? AND lesson_id = ?", progressID, lessonID).
		Count(&count).Error
	return count > 0, err
}

// AddCompletedLesson 已完成的课时不会重复写入
func (r *ProgressRepository) AddCompletedLesson(progress *model.Progress, lesson *model.Lesson) error {
	done, err := r.HasCompletedLesson(progress.ID, lesson.ID)
	if err != nil || done {
		return err
	}
	return r.DB.Table("progress_lessons").Create(map[string]interface{}{
		"progress_id": progress.ID,
		"lesson_id":   lesson.ID,
	}).Error
}

func (r *ProgressRepository) CountCompletedLessons(progressID uint) (int64, error) {
	var count int64
	err := r.DB.Table("progress_lessons").Where("progress_id = ?", progressID).Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CompletedLessonIDs(progressID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Table("progress_lessons").
		Where("progress_id = ?", progressID).
		Order("lesson_id ASC").
		Pluck("lesson_id", &ids).Error
	return ids, err
}

func (r *ProgressRepository) UpdatePercentage(progress *model.Progress) error {
	return r.DB.Model(progress).Updates(map[string]interface{}{
		"progress_percentage": progress.ProgressPercentage,
		"current_lesson":      progress.CurrentLesson,
	}).Error
}
