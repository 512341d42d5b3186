package repository

import (
	"course_platform_backend/internal/model"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByIDForUpdate 事务内加行锁读取，避免并发更新统计字段时丢失写入
func (r *CourseRepository) FindByIDForUpdate(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) IncrementEnrollment(courseID uint) error {
	return r.DB.Model(&model.Course{}).
		Where("id = ?", courseID).
		UpdateColumn("total_enrollment", gorm.Expr("total_enrollment + ?", 1)).Error
}

func (r *CourseRepository) UpdateRatingStats(course *model.Course) error {
	return r.DB.Model(course).Updates(map[string]interface{}{
		"total_ratings": course.TotalRatings,
		"rating":        course.Rating,
	}).Error
}

func (r *CourseRepository) ListActive() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("is_active = ?", true).
		Order("pub_date DESC").
		Find(&courses).Error
	return courses, err
}

// SearchActive 按课程名称模糊匹配（不区分大小写）
func (r *CourseRepository) SearchActive(query string) ([]model.Course, error) {
	var courses []model.Course
	pattern := "%" + strings.ToLower(query) + "%"
	err := r.DB.Where("is_active = ? AND LOWER(name) LIKE ?", true, pattern).
		Order("pub_date DESC").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListLessons(courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("course_id = ?", courseID).
		Order("sort_order ASC").
		Order("id ASC").
		Find(&lessons).Error
	return lessons, err
}

func (r *CourseRepository) CountLessons(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *CourseRepository) FindLesson(courseID, lessonID uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Where("course_id = ?", courseID).First(&lesson, lessonID).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CourseRepository) FindLessonByID(lessonID uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := r.DB.First(&lesson, lessonID).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CourseRepository) UpdateLessonMedia(lessonID uint, videoURL string, duration int) error {
	return r.DB.Model(&model.Lesson{}).
		Where("id = ?", lessonID).
		Updates(map[string]interface{}{
			"video_url": videoURL,
			"duration":  duration,
		}).Error
}

// ListActiveQuestions 返回课程下所有启用的题目及选项，按 ID 排序保证评分结果稳定
func (r *CourseRepository) ListActiveQuestions(courseID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("course_id = ? AND is_active = ?", courseID, true).
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Order("id ASC").
		Find(&questions).Error
	return questions, err
}

func (r *CourseRepository) CountActiveQuestions(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).
		Where("course_id = ? AND is_active = ?", courseID, true).
		Count(&count).Error
	return count, err
}

type ChoiceRepository struct {
	DB *gorm.DB
}

func NewChoiceRepository(db *gorm.DB) *ChoiceRepository {
	return &ChoiceRepository{DB: db}
}

func (r *ChoiceRepository) WithTx(tx *gorm.DB) *ChoiceRepository {
	return &ChoiceRepository{DB: tx}
}

// FindByIDs 不存在的 ID 直接忽略
func (r *ChoiceRepository) FindByIDs(ids []uint) ([]model.Choice, error) {
	if len(ids) == 0 {
		return []model.Choice{}, nil
	}
	var choices []model.Choice
	err := r.DB.Where("id IN ?", ids).Order("id ASC").Find(&choices).Error
	return choices, err
}
