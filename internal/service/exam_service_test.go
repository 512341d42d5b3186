package service

import (
	"context"
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/util"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answerForm(choices ...model.Choice) url.Values {
	form := url.Values{}
	for i, c := range choices {
		form.Set("choice_"+strconv.Itoa(i), strconv.FormatUint(uint64(c.ID), 10))
	}
	return form
}

func TestSubmitPartialScore(t *testing.T) {
	f := newFixture(t)
	f.enroll(t)
	svc := f.examService()
	ctx := context.Background()

	out, err := svc.Submit(ctx, f.user.ID, f.course.ID, answerForm(f.choice(0, 0), f.choice(1, 0)))
	require.NoError(t, err)
	assert.Equal(t, 10, out.Result.TotalScore)
	assert.Equal(t, 30, out.Result.MaxScore)
	assert.Equal(t, 33, out.Result.Grade)
	assert.False(t, out.Passed)
	assert.False(t, out.Completion.Completed)

	var stored model.Submission
	require.NoError(t, f.db.Preload("Choices").First(&stored, out.Submission.ID).Error)
	assert.Equal(t, 10.0, stored.Score)
	assert.Equal(t, 33.0, stored.Grade)
	assert.Len(t, stored.Choices, 2)

	t.Run("result view agrees with submit", func(t *testing.T) {
		view, err := svc.GetResult(ctx, f.user.ID, f.course.ID, out.Submission.ID)
		require.NoError(t, err)
		assert.Equal(t, out.Result.TotalScore, view.Result.TotalScore)
		assert.Equal(t, out.Result.MaxScore, view.Result.MaxScore)
		assert.Equal(t, out.Result.Grade, view.Result.Grade)
		require.Len(t, view.Result.Questions, 2)
		assert.True(t, view.Result.Questions[0].IsCorrect)
		assert.False(t, view.Result.Questions[1].IsCorrect)
	})
}

func TestSubmitPassingCompletesEnrollment(t *testing.T) {
	f := newFixture(t)
	f.enroll(t)
	svc := f.examService()

	form := answerForm(f.choice(0, 0), f.choice(1, 0), f.choice(1, 1))
	form.Set("choice_bogus", "not-a-number")

	out, err := svc.Submit(context.Background(), f.user.ID, f.course.ID, form)
	require.NoError(t, err)
	assert.Equal(t, 100, out.Result.Grade)
	assert.True(t, out.Passed)
	assert.True(t, out.Completion.Transitioned)

	var enrollment model.Enrollment
	require.NoError(t, f.db.First(&enrollment, f.enrollment.ID).Error)
	assert.True(t, enrollment.Completed)

	var learner model.Learner
	require.NoError(t, f.db.First(&learner, f.learner.ID).Error)
	assert.Equal(t, 1, learner.TotalCoursesCompleted)
	assert.Equal(t, 100.0, learner.CompletionRate)

	t.Run("second passing submission does not recount", func(t *testing.T) {
		again, err := svc.Submit(context.Background(), f.user.ID, f.course.ID, form)
		require.NoError(t, err)
		assert.True(t, again.Completion.Completed)
		assert.False(t, again.Completion.Transitioned)

		var learner model.Learner
		require.NoError(t, f.db.First(&learner, f.learner.ID).Error)
		assert.Equal(t, 1, learner.TotalCoursesCompleted)
		assert.Equal(t, int64(2), count(t, f.db, "submissions"))
	})
}

func TestSubmitNotEnrolledWritesNothing(t *testing.T) {
	f := newFixture(t)
	svc := f.examService()

	_, err := svc.Submit(context.Background(), f.user.ID, f.course.ID, answerForm(f.choice(0, 0)))
	assert.ErrorIs(t, err, util.ErrNotEnrolled)
	assert.Equal(t, int64(0), count(t, f.db, "submissions"))
	assert.Equal(t, int64(0), count(t, f.db, "submission_choices"))
}

func TestSubmitUnknownCourse(t *testing.T) {
	f := newFixture(t)
	_, err := f.examService().Submit(context.Background(), f.user.ID, 4242, url.Values{})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestSubmitEmptyForm(t *testing.T) {
	f := newFixture(t)
	f.enroll(t)

	out, err := f.examService().Submit(context.Background(), f.user.ID, f.course.ID, url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Result.TotalScore)
	assert.Equal(t, 0, out.Result.Grade)
	assert.Empty(t, out.Submission.Choices)
}

func TestExamSessionLifecycle(t *testing.T) {
	f := newFixture(t)
	f.enroll(t)
	svc := f.examService()
	ctx := context.Background()

	start := time.Now().Add(-90 * time.Second)
	svc.now = func() time.Time { return start }

	session, created, err := svc.StartSession(ctx, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, session.IsActive)
	require.NotNil(t, session.TotalTimeAllowed)
	assert.Equal(t, 3600, *session.TotalTimeAllowed)

	same, created, err := svc.StartSession(ctx, f.user.ID, f.course.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, session.ID, same.ID)

	svc.now = func() time.Time { return start.Add(90 * time.Second) }
	out, err := svc.Submit(ctx, f.user.ID, f.course.ID, answerForm(f.choice(0, 0)))
	require.NoError(t, err)
	require.NotNil(t, out.Submission.ExamSessionTime)
	assert.Equal(t, 90, *out.Submission.ExamSessionTime)

	var closed model.ExamSession
	require.NoError(t, f.db.First(&closed, session.ID).Error)
	assert.False(t, closed.IsActive)
	assert.True(t, closed.Completed)
	assert.NotNil(t, closed.EndTime)
}

func TestStartSessionRequiresEnrollment(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.examService().StartSession(context.Background(), f.user.ID, f.course.ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)
	assert.Equal(t, int64(0), count(t, f.db, "exam_sessions"))
}

func TestGetResultScopedToCourseAndUser(t *testing.T) {
	f := newFixture(t)
	f.enroll(t)
	svc := f.examService()
	ctx := context.Background()

	out, err := svc.Submit(ctx, f.user.ID, f.course.ID, answerForm(f.choice(0, 0)))
	require.NoError(t, err)

	other := model.Course{Name: "Other", IsActive: true}
	require.NoError(t, f.db.Create(&other).Error)

	_, err = svc.GetResult(ctx, f.user.ID, other.ID, out.Submission.ID)
	assert.ErrorIs(t, err, util.ErrSubmissionNotFound)

	_, err = svc.GetResult(ctx, f.user.ID+100, f.course.ID, out.Submission.ID)
	assert.ErrorIs(t, err, util.ErrSubmissionNotFound)

	_, err = svc.GetResult(ctx, f.user.ID, f.course.ID, 9999)
	assert.ErrorIs(t, err, util.ErrSubmissionNotFound)
}

func TestSubmitZeroPointQuestion(t *testing.T) {
	f := newFixture(t)
	f.enroll(t)

	bonus := model.Question{
		CourseID:     f.course.ID,
		Content:      "Warm-up",
		Grade:        0,
		QuestionType: model.TrueFalse,
		IsActive:     true,
		Choices:      []model.Choice{{Content: "true", IsCorrect: true}, {Content: "false"}},
	}
	require.NoError(t, f.db.Create(&bonus).Error)

	var stored model.Question
	require.NoError(t, f.db.First(&stored, bonus.ID).Error)
	assert.Equal(t, 0, stored.Grade)

	out, err := f.examService().Submit(context.Background(), f.user.ID, f.course.ID,
		answerForm(f.choice(0, 0), bonus.Choices[0]))
	require.NoError(t, err)
	assert.Equal(t, 10, out.Result.TotalScore)
	assert.Equal(t, 30, out.Result.MaxScore)
	assert.Equal(t, 33, out.Result.Grade)
}
