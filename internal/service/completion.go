package service

import (
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/repository"
	"course_platform_backend/pkg/logger"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const DefaultPassingGrade = 80

// CompletionResult MaybeComplete 的结果。Transitioned 只在本次调用完成课程时为 true。
type CompletionResult struct {
	Completed    bool              `json:"completed"`
	Transitioned bool              `json:"transitioned"`
	Enrollment   *model.Enrollment `json:"enrollment,omitempty"`
	Learner      *model.Learner    `json:"learner,omitempty"`
	Course       *model.Course     `json:"course,omitempty"`
}

// CompletionService 处理报名从进行中到已完成的状态迁移以及相关统计
type CompletionService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	LearnerRepo    *repository.LearnerRepository
	CourseRepo     *repository.CourseRepository
	passingGrade   atomic.Int64
}

func NewCompletionService(enrollmentRepo *repository.EnrollmentRepository, learnerRepo *repository.LearnerRepository,
	courseRepo *repository.CourseRepository, passingGrade int) *CompletionService {
	s := &CompletionService{
		EnrollmentRepo: enrollmentRepo,
		LearnerRepo:    learnerRepo,
		CourseRepo:     courseRepo,
	}
	s.SetPassingGrade(passingGrade)
	return s
}

func (s *CompletionService) PassingGrade() int {
	return int(s.passingGrade.Load())
}

// SetPassingGrade 配置热更新时调用，超出 [0,100] 的值会被截断
func (s *CompletionService) SetPassingGrade(grade int) {
	if grade < 0 {
		grade = 0
	}
	if grade > 100 {
		grade = 100
	}
	s.passingGrade.Store(int64(grade))
}

func (s *CompletionService) IsPassing(grade int) bool {
	return grade >= s.PassingGrade()
}

// CompletionRate 已完成课程数占报名数的百分比
func CompletionRate(completed int, enrollments int64) float64 {
	if enrollments <= 0 {
		return 0
	}
	return float64(completed) * 100 / float64(enrollments)
}

// MaybeComplete 必须在事务内调用，enrollment 应已加锁读取。
// 已完成的报名不会再次触发统计更新。
func (s *CompletionService) MaybeComplete(tx *gorm.DB, enrollment *model.Enrollment, grade int, now time.Time) (*CompletionResult, error) {
	result := &CompletionResult{Completed: enrollment.Completed, Enrollment: enrollment}
	if enrollment.Completed || !s.IsPassing(grade) {
		return result, nil
	}

	enrollment.Completed = true
	enrollment.CompletionDate = &now
	if err := s.EnrollmentRepo.WithTx(tx).MarkCompleted(enrollment); err != nil {
		return nil, err
	}

	learner, err := s.RecomputeLearnerStats(tx, enrollment.UserID)
	if err != nil {
		return nil, err
	}
	course, err := s.RecomputeCourseRating(tx, enrollment.CourseID)
	if err != nil {
		return nil, err
	}

	result.Completed = true
	result.Transitioned = true
	result.Learner = learner
	result.Course = course

	logger.Log.Info("Enrollment completed",
		zap.Uint("enrollmentID", enrollment.ID),
		zap.Uint("userID", enrollment.UserID),
		zap.Uint("courseID", enrollment.CourseID),
		zap.Int("grade", grade))
	return result, nil
}

// RecomputeLearnerStats 用户没有学习者档案时跳过
func (s *CompletionService) RecomputeLearnerStats(tx *gorm.DB, userID uint) (*model.Learner, error) {
	learnerRepo := s.LearnerRepo.WithTx(tx)
	learner, err := learnerRepo.FindByUserForUpdate(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Warn("Learner profile missing, stats skipped", zap.Uint("userID", userID))
			return nil, nil
		}
		return nil, err
	}

	total, err := s.EnrollmentRepo.WithTx(tx).CountByUser(userID)
	if err != nil {
		return nil, err
	}

	learner.TotalCoursesCompleted++
	learner.CompletionRate = CompletionRate(learner.TotalCoursesCompleted, total)
	if err := learnerRepo.UpdateStats(learner); err != nil {
		return nil, err
	}
	return learner, nil
}

// RecomputeCourseRating 评分取已完成报名的平均分，平均分为空或为 0 时保留原值
func (s *CompletionService) RecomputeCourseRating(tx *gorm.DB, courseID uint) (*model.Course, error) {
	courseRepo := s.CourseRepo.WithTx(tx)
	course, err := courseRepo.FindByIDForUpdate(courseID)
	if err != nil {
		return nil, err
	}

	avg, err := s.EnrollmentRepo.WithTx(tx).AverageCompletedRating(courseID)
	if err != nil {
		return nil, err
	}

	course.TotalRatings++
	if avg.Valid && avg.Float64 != 0 {
		course.Rating = avg.Float64
	}
	if err := courseRepo.UpdateRatingStats(course); err != nil {
		return nil, err
	}
	return course, nil
}
