package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Mode: "debug"},
		JWT:    JWTConfig{Secret: "short"},
		Exam:   ExamConfig{PassingGrade: 80, AnswerPrefix: "choice_"},
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	release := validConfig()
	release.Server.Mode = "release"
	assert.Error(t, release.Validate())
	release.JWT.Secret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, release.Validate())

	grade := validConfig()
	grade.Exam.PassingGrade = 101
	assert.Error(t, grade.Validate())
	grade.Exam.PassingGrade = -1
	assert.Error(t, grade.Validate())

	prefix := validConfig()
	prefix.Exam.AnswerPrefix = ""
	assert.Error(t, prefix.Validate())
}

func TestDurations(t *testing.T) {
	assert.Equal(t, 5*time.Minute, CacheConfig{CatalogTTLSeconds: 300}.CatalogTTL())
	assert.Equal(t, 2*time.Minute, RateLimitConfig{WindowMinutes: 2}.Window())
}
