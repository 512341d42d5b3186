package service

import (
	"context"
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/repository"
	"course_platform_backend/internal/util"
	"errors"
	"strings"
	"time"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// CourseSummary 课程列表项
type CourseSummary struct {
	ID              uint              `json:"id"`
	Name            string            `json:"name"`
	Image           string            `json:"image"`
	Description     string            `json:"description"`
	PubDate         *time.Time        `json:"pubDate"`
	Level           model.CourseLevel `json:"level"`
	Duration        string            `json:"duration"`
	Category        string            `json:"category"`
	TotalEnrollment int               `json:"totalEnrollment"`
	Rating          float64           `json:"rating"`
	TotalRatings    int               `json:"totalRatings"`
	IsEnrolled      bool              `json:"isEnrolled"`
}

type LessonItem struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	Content   string `json:"content"`
	VideoURL  string `json:"videoUrl"`
	Duration  int    `json:"duration"`
	IsPreview bool   `json:"isPreview"`
}

// CourseStats 课程详情中与用户无关、可缓存的部分
type CourseStats struct {
	Lessons         []LessonItem `json:"lessons"`
	QuestionsCount  int64        `json:"questionsCount"`
	EnrollmentCount int64        `json:"enrollmentCount"`
}

type CourseDetail struct {
	CourseSummary
	Prerequisites    string `json:"prerequisites"`
	LearningOutcomes string `json:"learningOutcomes"`
	CourseStats
	Progress float64 `json:"progress"`
}

type CatalogService struct {
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Cache          CatalogCache
}

func NewCatalogService(courseRepo *repository.CourseRepository, enrollmentRepo *repository.EnrollmentRepository, cache CatalogCache) *CatalogService {
	if cache == nil {
		cache = NopCatalogCache{}
	}
	return &CatalogService{CourseRepo: courseRepo, EnrollmentRepo: enrollmentRepo, Cache: cache}
}

func (s *CatalogService) toSummaries(courses []model.Course, userID uint) ([]CourseSummary, error) {
	summaries := make([]CourseSummary, 0, len(courses))
	if len(courses) == 0 {
		return summaries, nil
	}
	if err := copier.Copy(&summaries, &courses); err != nil {
		return nil, err
	}

	enrolled, err := s.EnrollmentRepo.EnrolledCourseIDs(userID)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].IsEnrolled = enrolled[summaries[i].ID]
	}
	return summaries, nil
}

// ListCourses 启用的课程按发布时间倒序，userID 为 0 表示未登录
func (s *CatalogService) ListCourses(ctx context.Context, userID uint) ([]CourseSummary, error) {
	courses, err := s.CourseRepo.ListActive()
	if err != nil {
		return nil, err
	}
	return s.toSummaries(courses, userID)
}

// Search 空查询返回空列表
func (s *CatalogService) Search(ctx context.Context, userID uint, query string) ([]CourseSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []CourseSummary{}, nil
	}
	courses, err := s.CourseRepo.SearchActive(query)
	if err != nil {
		return nil, err
	}
	return s.toSummaries(courses, userID)
}

func (s *CatalogService) loadStats(ctx context.Context, courseID uint) (*CourseStats, error) {
	if stats, ok := s.Cache.GetStats(ctx, courseID); ok {
		return stats, nil
	}

	lessons, err := s.CourseRepo.ListLessons(courseID)
	if err != nil {
		return nil, err
	}
	stats := &CourseStats{Lessons: make([]LessonItem, 0, len(lessons))}
	if len(lessons) > 0 {
		if err := copier.Copy(&stats.Lessons, &lessons); err != nil {
			return nil, err
		}
	}
	if stats.QuestionsCount, err = s.CourseRepo.CountActiveQuestions(courseID); err != nil {
		return nil, err
	}
	if stats.EnrollmentCount, err = s.EnrollmentRepo.CountByCourse(courseID); err != nil {
		return nil, err
	}

	s.Cache.SetStats(ctx, courseID, stats)
	return stats, nil
}

// GetCourseDetail 课程详情，已报名用户附带进度
func (s *CatalogService) GetCourseDetail(ctx context.Context, userID, courseID uint) (*CourseDetail, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	detail := &CourseDetail{
		Prerequisites:    course.Prerequisites,
		LearningOutcomes: course.LearningOutcomes,
	}
	if err := copier.Copy(&detail.CourseSummary, course); err != nil {
		return nil, err
	}

	stats, err := s.loadStats(ctx, courseID)
	if err != nil {
		return nil, err
	}
	detail.CourseStats = *stats

	if userID != 0 {
		enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
		if err == nil {
			detail.IsEnrolled = true
			detail.Progress = enrollment.Progress
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return detail, nil
}
