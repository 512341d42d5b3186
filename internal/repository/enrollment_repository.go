package repository

import (
	"course_platform_backend/internal/model"
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) WithTx(tx *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: tx}
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) UpdateProgress(enrollment *model.Enrollment) error {
	return r.DB.Model(enrollment).Update("progress", enrollment.Progress).Error
}

func (r *EnrollmentRepository) MarkCompleted(enrollment *model.Enrollment) error {
	return r.DB.Model(enrollment).Updates(map[string]interface{}{
		"completed":       enrollment.Completed,
		"completion_date": enrollment.CompletionDate,
	}).Error
}

func (r *EnrollmentRepository) MarkCertificateIssued(enrollment *model.Enrollment) error {
	return r.DB.Model(enrollment).Updates(map[string]interface{}{
		"certificate_issued": enrollment.CertificateIssued,
		"certificate_url":    enrollment.CertificateURL,
	}).Error
}

func (r *EnrollmentRepository) FindByUserAndCourse(userID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) FindByUserAndCourseForUpdate(userID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *EnrollmentRepository) IsEnrolled(userID, courseID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// EnrolledCourseIDs 返回用户已选课程 ID 集合，用于列表页标记
func (r *EnrollmentRepository) EnrolledCourseIDs(userID uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if userID == 0 {
		return result, nil
	}
	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).Where("user_id = ?", userID).Pluck("course_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (r *EnrollmentRepository) ListByUser(userID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("user_id = ?", userID).
		Preload("Course").
		Order("date_enrolled DESC").
		Order("id DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *EnrollmentRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// AverageCompletedRating 已结课选课记录的 rating 平均值，无记录时 Valid 为 false
func (r *EnrollmentRepository) AverageCompletedRating(courseID uint) (sql.NullFloat64, error) {
	var avg sql.NullFloat64
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id = ? AND completed = ?", courseID, true).
		Select("AVG(rating)").
		Scan(&avg).Error
	return avg, err
}
