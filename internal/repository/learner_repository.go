package repository

import (
	"course_platform_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LearnerRepository struct {
	DB *gorm.DB
}

func NewLearnerRepository(db *gorm.DB) *LearnerRepository {
	return &LearnerRepository{DB: db}
}

func (r *LearnerRepository) WithTx(tx *gorm.DB) *LearnerRepository {
	return &LearnerRepository{DB: tx}
}

// FindByUserForUpdate 没有学习者档案时返回 gorm.ErrRecordNotFound
func (r *LearnerRepository) FindByUserForUpdate(userID uint) (*model.Learner, error) {
	var learner model.Learner
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&learner).Error
	if err != nil {
		return nil, err
	}
	return &learner, nil
}

func (r *LearnerRepository) Create(learner *model.Learner) error {
	return r.DB.Create(learner).Error
}

func (r *LearnerRepository) UpdateStats(learner *model.Learner) error {
	return r.DB.Model(learner).Updates(map[string]interface{}{
		"total_courses_completed": learner.TotalCoursesCompleted,
		"completion_rate":         learner.CompletionRate,
	}).Error
}

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{DB: tx}
}

// ListWithoutLearner 查找尚未建立学习者档案的用户
func (r *UserRepository) ListWithoutLearner() ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("id NOT IN (?)", r.DB.Model(&model.Learner{}).Select("user_id")).
		Order("id ASC").
		Find(&users).Error
	return users, err
}
