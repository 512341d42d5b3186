package service

import (
	"context"
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/repository"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackfillProfiles(t *testing.T) {
	f := newFixture(t)
	for _, email := range []string{"bob@example.com", "carol@example.com"} {
		require.NoError(t, f.db.Create(&model.User{Name: email, Email: email}).Error)
	}

	svc := NewLearnerService(f.db, repository.NewUserRepository(f.db), repository.NewLearnerRepository(f.db))

	created, err := svc.BackfillProfiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, int64(3), count(t, f.db, "learners"))

	var learners []model.Learner
	require.NoError(t, f.db.Order("id ASC").Find(&learners).Error)
	for _, l := range learners {
		assert.Equal(t, model.OccupationStudent, l.Occupation)
		assert.NotNil(t, l.DateJoined)
	}

	created, err = svc.BackfillProfiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}
