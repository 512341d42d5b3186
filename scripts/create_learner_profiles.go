// 为尚未建立学习者档案的用户补建档案
//
// 主应用的定时任务（jobs.learner_backfill_cron）会定期执行同样的逻辑，
// 此脚本用于首次部署或批量导入用户后手动触发。
//
// 用法: go run scripts/create_learner_profiles.go

package main

import (
	"context"
	"course_platform_backend/internal/config"
	"course_platform_backend/internal/repository"
	"course_platform_backend/internal/service"
	"course_platform_backend/pkg/database"
	"course_platform_backend/pkg/logger"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	learnerService := service.NewLearnerService(db, repository.NewUserRepository(db), repository.NewLearnerRepository(db))

	created, err := learnerService.BackfillProfiles(context.Background())
	if err != nil {
		log.Fatalf("补建学习者档案失败: %v", err)
	}
	log.Printf("完成，新建 %d 个学习者档案", created)
}
