package database

import (
	"course_platform_backend/internal/config"
	"course_platform_backend/internal/model"
	applog "course_platform_backend/pkg/logger"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models 需要自动迁移的模型，连接表由 many2many 标签生成
var Models = []interface{}{
	&model.User{},
	&model.Learner{},
	&model.Instructor{},
	&model.Course{},
	&model.Lesson{},
	&model.Question{},
	&model.Choice{},
	&model.Enrollment{},
	&model.Certificate{},
	&model.Submission{},
	&model.ExamSession{},
	&model.Progress{},
}

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.DBName,
		dbCfg.Charset,
		dbCfg.ParseTime,
	)

	logLevel := logger.Info
	if cfg.Server.Mode == "release" {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	applog.Log.Info("Database connection established", zap.String("host", dbCfg.Host), zap.String("db", dbCfg.DBName))

	// release 模式下默认跳过迁移，需要通过 -migrate 显式开启
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		applog.Log.Info("Database migration completed")
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}
