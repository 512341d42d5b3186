package service

import (
	"context"
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressPercentage(t *testing.T) {
	assert.Equal(t, 0.0, ProgressPercentage(0, 0))
	assert.Equal(t, 0.0, ProgressPercentage(3, 0))
	assert.Equal(t, 60.0, ProgressPercentage(3, 5))
	assert.Equal(t, 100.0, ProgressPercentage(5, 5))
	assert.InDelta(t, 33.333, ProgressPercentage(1, 3), 0.001)
}

func TestUpdateProgress(t *testing.T) {
	f := newFixture(t)
	enrollment := f.enroll(t)
	svc := f.progressService()
	ctx := context.Background()

	var pct float64
	var err error
	for _, lesson := range f.lessons[:3] {
		pct, err = svc.UpdateProgress(ctx, f.user.ID, f.course.ID, lesson.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 60.0, pct)

	var progress model.Progress
	require.NoError(t, f.db.Where("user_id = ? AND course_id = ?", f.user.ID, f.course.ID).First(&progress).Error)
	assert.Equal(t, 60.0, progress.ProgressPercentage)

	var stored model.Enrollment
	require.NoError(t, f.db.First(&stored, enrollment.ID).Error)
	assert.Equal(t, progress.ProgressPercentage, stored.Progress)

	t.Run("completing the same lesson twice is idempotent", func(t *testing.T) {
		again, err := svc.UpdateProgress(ctx, f.user.ID, f.course.ID, f.lessons[0].ID)
		require.NoError(t, err)
		assert.Equal(t, 60.0, again)
		assert.Equal(t, int64(3), count(t, f.db, "progress_lessons"))
	})

	t.Run("all lessons", func(t *testing.T) {
		for _, lesson := range f.lessons {
			pct, err = svc.UpdateProgress(ctx, f.user.ID, f.course.ID, lesson.ID)
			require.NoError(t, err)
		}
		assert.Equal(t, 100.0, pct)
	})
}

func TestUpdateProgressRequiresEnrollment(t *testing.T) {
	f := newFixture(t)
	svc := f.progressService()

	_, err := svc.UpdateProgress(context.Background(), f.user.ID, f.course.ID, f.lessons[0].ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)
	assert.Equal(t, int64(0), count(t, f.db, "progresses"))
	assert.Equal(t, int64(0), count(t, f.db, "progress_lessons"))
}

func TestUpdateProgressRejectsForeignLesson(t *testing.T) {
	f := newFixture(t)
	f.enroll(t)

	other := model.Course{Name: "Other", IsActive: true}
	require.NoError(t, f.db.Create(&other).Error)
	foreign := model.Lesson{CourseID: other.ID, Title: "Foreign"}
	require.NoError(t, f.db.Create(&foreign).Error)

	svc := f.progressService()
	_, err := svc.UpdateProgress(context.Background(), f.user.ID, f.course.ID, foreign.ID)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)

	_, err = svc.UpdateProgress(context.Background(), f.user.ID, 9999, f.lessons[0].ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestGetCourseProgress(t *testing.T) {
	f := newFixture(t)
	svc := f.progressService()
	ctx := context.Background()

	_, err := svc.GetCourseProgress(ctx, f.user.ID, f.course.ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	f.enroll(t)
	_, err = svc.UpdateProgress(ctx, f.user.ID, f.course.ID, f.lessons[1].ID)
	require.NoError(t, err)

	view, err := svc.GetCourseProgress(ctx, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.Len(t, view.Lessons, 5)
	assert.Equal(t, []uint{f.lessons[1].ID}, view.CompletedLessonIDs)
	assert.Equal(t, 20.0, view.Progress.ProgressPercentage)
	for i := 1; i < len(view.Lessons); i++ {
		assert.LessOrEqual(t, view.Lessons[i-1].Order, view.Lessons[i].Order)
	}
}
