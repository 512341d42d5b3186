package service

import (
	"context"
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/repository"
	"course_platform_backend/internal/util"
	"course_platform_backend/pkg/logger"
	"course_platform_backend/pkg/monitoring"
	"course_platform_backend/pkg/tracing"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressPercentage 已完成课时占比，课程没有课时时为 0
func ProgressPercentage(completed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) * 100 / float64(total)
}

type ProgressService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
}

func NewProgressService(db *gorm.DB, courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository, progressRepo *repository.ProgressRepository) *ProgressService {
	return &ProgressService{
		DB:             db,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
	}
}

// UpdateProgress 标记课时完成并重新计算进度。
// Progress.progress_percentage 与 Enrollment.progress 在同一事务中写入。
func (s *ProgressService) UpdateProgress(ctx context.Context, userID, courseID, lessonID uint) (float64, error) {
	_, span := tracing.Tracer.Start(ctx, "ProgressService.UpdateProgress")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("course.id", int64(courseID)),
		attribute.Int64("lesson.id", int64(lessonID)),
	)

	var percentage float64
	newlyCompleted := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.CourseRepo.WithTx(tx).FindByID(courseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrCourseNotFound
			}
			return err
		}

		enrollmentRepo := s.EnrollmentRepo.WithTx(tx)
		enrollment, err := enrollmentRepo.FindByUserAndCourseForUpdate(userID, courseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrNotEnrolled
			}
			return err
		}

		lesson, err := s.CourseRepo.WithTx(tx).FindLesson(courseID, lessonID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrLessonNotFound
			}
			return err
		}

		progressRepo := s.ProgressRepo.WithTx(tx)
		progress, err := progressRepo.FindOrCreate(userID, courseID)
		if err != nil {
			return err
		}

		done, err := progressRepo.HasCompletedLesson(progress.ID, lesson.ID)
		if err != nil {
			return err
		}
		if !done {
			if err := progressRepo.AddCompletedLesson(progress, lesson); err != nil {
				return err
			}
			newlyCompleted = true
		}

		total, err := s.CourseRepo.WithTx(tx).CountLessons(courseID)
		if err != nil {
			return err
		}
		completed, err := progressRepo.CountCompletedLessons(progress.ID)
		if err != nil {
			return err
		}

		percentage = ProgressPercentage(completed, total)
		progress.ProgressPercentage = percentage
		if err := progressRepo.UpdatePercentage(progress); err != nil {
			return err
		}

		enrollment.Progress = percentage
		return enrollmentRepo.UpdateProgress(enrollment)
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	if newlyCompleted {
		monitoring.LessonCompletions.Inc()
	}
	span.SetAttributes(attribute.Float64("progress.percentage", percentage))
	logger.Log.Debug("Lesson progress updated",
		zap.Uint("userID", userID),
		zap.Uint("courseID", courseID),
		zap.Uint("lessonID", lessonID),
		zap.Float64("percentage", percentage))
	return percentage, nil
}

// CourseProgressView 课程进度页数据
type CourseProgressView struct {
	Progress           *model.Progress `json:"progress"`
	Lessons            []model.Lesson  `json:"lessons"`
	CompletedLessonIDs []uint          `json:"completedLessonIds"`
}

// GetCourseProgress 已报名用户查看课程进度，进度记录不存在时创建
func (s *ProgressService) GetCourseProgress(ctx context.Context, userID, courseID uint) (*CourseProgressView, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	enrolled, err := s.EnrollmentRepo.IsEnrolled(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	view := &CourseProgressView{}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		progressRepo := s.ProgressRepo.WithTx(tx)
		progress, err := progressRepo.FindOrCreate(userID, courseID)
		if err != nil {
			return err
		}
		view.Progress = progress

		view.CompletedLessonIDs, err = progressRepo.CompletedLessonIDs(progress.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	view.Lessons, err = s.CourseRepo.ListLessons(courseID)
	if err != nil {
		return nil, err
	}
	return view, nil
}
