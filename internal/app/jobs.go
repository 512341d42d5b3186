package app

import (
	"context"
	"course_platform_backend/pkg/logger"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func (a *App) startBackgroundTasks(s *services) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	if spec := a.Config.Jobs.LearnerBackfillCron; spec != "" {
		_, err := c.AddFunc(spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if _, err := s.learner.BackfillProfiles(ctx); err != nil {
				logger.Log.Error("learner backfill error", zap.Error(err))
			}
		})
		if err != nil {
			logger.Log.Error("Invalid learner backfill schedule", zap.String("spec", spec), zap.Error(err))
		}
	}

	// 清理长时间未访问的限流条目
	_, _ = c.AddFunc("@every 1m", func() {
		expiry := a.Config.RateLimit.Window() * 3
		if expiry < time.Minute {
			expiry = time.Minute
		}
		a.Policy.Sweep(expiry)
	})

	c.Start()
	a.cron = c
}
