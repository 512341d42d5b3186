package service

import (
	"context"
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/repository"
	"course_platform_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LearnerService struct {
	DB          *gorm.DB
	UserRepo    *repository.UserRepository
	LearnerRepo *repository.LearnerRepository
}

func NewLearnerService(db *gorm.DB, userRepo *repository.UserRepository, learnerRepo *repository.LearnerRepository) *LearnerService {
	return &LearnerService{DB: db, UserRepo: userRepo, LearnerRepo: learnerRepo}
}

// BackfillProfiles 为没有学习者档案的用户补建档案，职业默认 student，返回新建数量
func (s *LearnerService) BackfillProfiles(ctx context.Context) (int, error) {
	created := 0
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := s.UserRepo.WithTx(tx).ListWithoutLearner()
		if err != nil {
			return err
		}

		learnerRepo := s.LearnerRepo.WithTx(tx)
		for _, user := range users {
			joined := user.CreatedAt
			if joined.IsZero() {
				joined = time.Now()
			}
			learner := &model.Learner{
				UserID:     user.ID,
				Occupation: model.OccupationStudent,
				DateJoined: &joined,
			}
			if err := learnerRepo.Create(learner); err != nil {
				return err
			}
			created++
			logger.Log.Debug("Learner profile created", zap.Uint("userID", user.ID))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Log.Info("Learner profile backfill finished", zap.Int("created", created))
	return created, nil
}
