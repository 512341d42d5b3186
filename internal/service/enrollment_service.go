package service

import (
	"context"
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/repository"
	"course_platform_backend/internal/util"
	"course_platform_backend/pkg/logger"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EnrollmentService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
	Cache          CatalogCache
}

func NewEnrollmentService(db *gorm.DB, courseRepo *repository.CourseRepository, enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository, cache CatalogCache) *EnrollmentService {
	if cache == nil {
		cache = NopCatalogCache{}
	}
	return &EnrollmentService{
		DB:             db,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
		Cache:          cache,
	}
}

// Enroll 幂等报名。首次报名时创建报名记录、累加课程报名数并初始化进度。
// 第二个返回值表示本次是否新建。
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID uint) (*model.Enrollment, bool, error) {
	var (
		enrollment *model.Enrollment
		created    bool
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		courseRepo := s.CourseRepo.WithTx(tx)
		course, err := courseRepo.FindByIDForUpdate(courseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrCourseNotFound
			}
			return err
		}
		if !course.IsActive {
			return util.ErrCourseNotFound
		}

		enrollmentRepo := s.EnrollmentRepo.WithTx(tx)
		existing, err := enrollmentRepo.FindByUserAndCourse(userID, courseID)
		if err == nil {
			enrollment = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		enrollment = &model.Enrollment{
			UserID:       userID,
			CourseID:     courseID,
			DateEnrolled: time.Now(),
			Mode:         model.ModeHonor,
		}
		if err := enrollmentRepo.Create(enrollment); err != nil {
			return err
		}
		if err := courseRepo.IncrementEnrollment(courseID); err != nil {
			return err
		}
		if _, err := s.ProgressRepo.WithTx(tx).FindOrCreate(userID, courseID); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.Cache.Invalidate(ctx, courseID)
		logger.Log.Info("User enrolled",
			zap.Uint("userID", userID),
			zap.Uint("courseID", courseID),
			zap.Uint("enrollmentID", enrollment.ID))
	}
	return enrollment, created, nil
}

// MyCourses 当前用户的全部报名及课程信息
func (s *EnrollmentService) MyCourses(ctx context.Context, userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByUser(userID)
}
