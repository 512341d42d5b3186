package service

import (
	"context"
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/repository"
	"course_platform_backend/internal/util"
	"course_platform_backend/pkg/logger"
	"course_platform_backend/pkg/monitoring"
	"course_platform_backend/pkg/tracing"
	"errors"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExamService struct {
	DB              *gorm.DB
	CourseRepo      *repository.CourseRepository
	EnrollmentRepo  *repository.EnrollmentRepository
	SubmissionRepo  *repository.SubmissionRepository
	ExamSessionRepo *repository.ExamSessionRepository
	Extractor       *AnswerExtractor
	Completion      *CompletionService
	SessionSeconds  int

	now func() time.Time
}

func NewExamService(db *gorm.DB, courseRepo *repository.CourseRepository, enrollmentRepo *repository.EnrollmentRepository,
	submissionRepo *repository.SubmissionRepository, examSessionRepo *repository.ExamSessionRepository,
	extractor *AnswerExtractor, completion *CompletionService, sessionSeconds int) *ExamService {
	return &ExamService{
		DB:              db,
		CourseRepo:      courseRepo,
		EnrollmentRepo:  enrollmentRepo,
		SubmissionRepo:  submissionRepo,
		ExamSessionRepo: examSessionRepo,
		Extractor:       extractor,
		Completion:      completion,
		SessionSeconds:  sessionSeconds,
		now:             time.Now,
	}
}

// SubmitResult 交卷结果
type SubmitResult struct {
	Submission *model.Submission `json:"submission"`
	Result     *ExamResult       `json:"result"`
	Passed     bool              `json:"passed"`
	Completion *CompletionResult `json:"completion"`
}

func (s *ExamService) requireEnrollment(tx *gorm.DB, userID, courseID uint, lock bool) (*model.Enrollment, error) {
	if _, err := s.CourseRepo.WithTx(tx).FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	repo := s.EnrollmentRepo.WithTx(tx)
	var (
		enrollment *model.Enrollment
		err        error
	)
	if lock {
		enrollment, err = repo.FindByUserAndCourseForUpdate(userID, courseID)
	} else {
		enrollment, err = repo.FindByUserAndCourse(userID, courseID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	return enrollment, nil
}

// StartSession 已有进行中的考试会话时直接返回，否则新建。限时只记录不校验。
func (s *ExamService) StartSession(ctx context.Context, userID, courseID uint) (*model.ExamSession, bool, error) {
	var (
		session *model.ExamSession
		created bool
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.requireEnrollment(tx, userID, courseID, true); err != nil {
			return err
		}

		sessionRepo := s.ExamSessionRepo.WithTx(tx)
		existing, err := sessionRepo.FindActive(userID, courseID)
		if err == nil {
			session = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		allowed := s.SessionSeconds
		remaining := allowed
		session = &model.ExamSession{
			UserID:           userID,
			CourseID:         courseID,
			StartTime:        s.now(),
			IsActive:         true,
			TotalTimeAllowed: &allowed,
			TimeRemaining:    &remaining,
		}
		created = true
		return sessionRepo.Create(session)
	})
	if err != nil {
		return nil, false, err
	}
	return session, created, nil
}

// Submit 解析答案、判分、保存提交并尝试完成课程，整个过程在一个事务内。
// 未报名时在任何写入之前返回 ErrNotEnrolled。
func (s *ExamService) Submit(ctx context.Context, userID, courseID uint, form url.Values) (*SubmitResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ExamService.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("course.id", int64(courseID)),
	)

	out := &SubmitResult{}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		enrollment, err := s.requireEnrollment(tx, userID, courseID, true)
		if err != nil {
			return err
		}

		choices, err := s.Extractor.WithRepo(s.Extractor.ChoiceRepo.WithTx(tx)).Extract(form)
		if err != nil {
			return err
		}

		questions, err := s.CourseRepo.WithTx(tx).ListActiveQuestions(courseID)
		if err != nil {
			return err
		}

		_, gradeSpan := tracing.Tracer.Start(ctx, "GradeExam")
		result := GradeExam(questions, choices)
		gradeSpan.SetAttributes(attribute.Int("exam.grade", result.Grade))
		gradeSpan.End()

		now := s.now()
		submission := &model.Submission{
			EnrollmentID: enrollment.ID,
			Choices:      choices,
			Timestamp:    &now,
			Score:        float64(result.TotalScore),
			Grade:        float64(result.Grade),
		}

		sessionRepo := s.ExamSessionRepo.WithTx(tx)
		session, err := sessionRepo.FindActive(userID, courseID)
		switch {
		case err == nil:
			elapsed := int(now.Sub(session.StartTime).Seconds())
			if elapsed < 0 {
				elapsed = 0
			}
			submission.ExamSessionTime = &elapsed
			session.IsActive = false
			session.Completed = true
			session.EndTime = &now
			if session.TotalTimeAllowed != nil {
				remaining := *session.TotalTimeAllowed - elapsed
				if remaining < 0 {
					remaining = 0
				}
				session.TimeRemaining = &remaining
			}
			if err := sessionRepo.Save(session); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := s.SubmissionRepo.WithTx(tx).Create(submission); err != nil {
			return err
		}

		completion, err := s.Completion.MaybeComplete(tx, enrollment, result.Grade, now)
		if err != nil {
			return err
		}

		out.Submission = submission
		out.Result = result
		out.Passed = s.Completion.IsPassing(result.Grade)
		out.Completion = completion
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	monitoring.ObserveSubmission(out.Passed)
	if out.Completion.Transitioned {
		monitoring.CourseCompletions.Inc()
	}
	span.SetAttributes(
		attribute.Int("exam.total_score", out.Result.TotalScore),
		attribute.Int("exam.max_score", out.Result.MaxScore),
		attribute.Bool("enrollment.completed", out.Completion.Completed),
	)
	logger.Log.Info("Submission graded",
		zap.Uint("submissionID", out.Submission.ID),
		zap.Uint("userID", userID),
		zap.Uint("courseID", courseID),
		zap.Int("totalScore", out.Result.TotalScore),
		zap.Int("maxScore", out.Result.MaxScore),
		zap.Int("grade", out.Result.Grade))
	return out, nil
}

// SubmissionView 查看考试结果
type SubmissionView struct {
	Submission *model.Submission `json:"submission"`
	Result     *ExamResult       `json:"result"`
	Passed     bool              `json:"passed"`
}

// GetResult 根据已保存的选项重新判分。提交不属于该课程或该用户时视为不存在。
func (s *ExamService) GetResult(ctx context.Context, userID, courseID, submissionID uint) (*SubmissionView, error) {
	_, span := tracing.Tracer.Start(ctx, "ExamService.GetResult")
	defer span.End()

	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	submission, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}
	if submission.Enrollment == nil ||
		submission.Enrollment.CourseID != courseID ||
		submission.Enrollment.UserID != userID {
		return nil, util.ErrSubmissionNotFound
	}

	questions, err := s.CourseRepo.ListActiveQuestions(courseID)
	if err != nil {
		return nil, err
	}

	result := GradeExam(questions, submission.Choices)
	span.SetAttributes(attribute.Int("exam.grade", result.Grade))
	return &SubmissionView{
		Submission: submission,
		Result:     result,
		Passed:     s.Completion.IsPassing(result.Grade),
	}, nil
}
