package service

import (
	"context"
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/repository"
	"course_platform_backend/internal/util"
	"course_platform_backend/pkg/logger"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CertificateService struct {
	DB              *gorm.DB
	CourseRepo      *repository.CourseRepository
	EnrollmentRepo  *repository.EnrollmentRepository
	CertificateRepo *repository.CertificateRepository
	Storage         *StorageService
}

func NewCertificateService(db *gorm.DB, courseRepo *repository.CourseRepository, enrollmentRepo *repository.EnrollmentRepository,
	certificateRepo *repository.CertificateRepository, storage *StorageService) *CertificateService {
	return &CertificateService{
		DB:              db,
		CourseRepo:      courseRepo,
		EnrollmentRepo:  enrollmentRepo,
		CertificateRepo: certificateRepo,
		Storage:         storage,
	}
}

// RenderCertificate 生成纯文本证书内容
func RenderCertificate(cert *model.Certificate, course *model.Course, completedAt *time.Time) string {
	var b strings.Builder
	b.WriteString("CERTIFICATE OF COMPLETION\n\n")
	fmt.Fprintf(&b, "Certificate ID: %s\n", cert.CertificateID)
	fmt.Fprintf(&b, "Course: %s\n", course.Name)
	fmt.Fprintf(&b, "Level: %s\n", course.Level)
	fmt.Fprintf(&b, "Learner: %d\n", cert.UserID)
	if completedAt != nil {
		fmt.Fprintf(&b, "Completed: %s\n", completedAt.Format(util.DateFormat))
	}
	fmt.Fprintf(&b, "Issued: %s\n", cert.IssueDate.Format(util.DateFormat))
	return b.String()
}

// Issue 为已完成的报名签发证书，已签发过时返回原证书。
// 第二个返回值表示本次是否新签发。
func (s *CertificateService) Issue(ctx context.Context, userID, courseID uint) (*model.Certificate, bool, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, util.ErrCourseNotFound
		}
		return nil, false, err
	}

	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, util.ErrNotEnrolled
		}
		return nil, false, err
	}
	if !enrollment.Completed {
		return nil, false, util.ErrNotCompleted
	}

	existing, err := s.CertificateRepo.FindByEnrollment(enrollment.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	cert := &model.Certificate{
		UserID:        userID,
		CourseID:      courseID,
		EnrollmentID:  enrollment.ID,
		IssueDate:     time.Now(),
		CertificateID: model.GenerateUUID(),
		IsValid:       true,
	}

	key := ObjectKey("certificates", cert.CertificateID+".txt")
	url, err := s.Storage.UploadBytes(ctx, key, []byte(RenderCertificate(cert, course, enrollment.CompletionDate)), util.MimeText)
	if err != nil {
		return nil, false, fmt.Errorf("upload certificate: %w", err)
	}
	cert.FilePath = url

	// 加锁后再查一次，并发签发时只有一个请求写入证书
	var issued *model.Certificate
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		enrollmentRepo := s.EnrollmentRepo.WithTx(tx)
		locked, err := enrollmentRepo.FindByUserAndCourseForUpdate(userID, courseID)
		if err != nil {
			return err
		}

		certRepo := s.CertificateRepo.WithTx(tx)
		found, err := certRepo.FindByEnrollment(locked.ID)
		if err == nil {
			issued = found
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := certRepo.Create(cert); err != nil {
			return err
		}
		locked.CertificateIssued = true
		locked.CertificateURL = url
		return enrollmentRepo.MarkCertificateIssued(locked)
	})
	if err != nil || issued != nil {
		if delErr := s.Storage.Delete(ctx, key); delErr != nil {
			logger.Log.Warn("Failed to remove orphan certificate file", zap.String("key", key), zap.Error(delErr))
		}
	}
	if err != nil {
		return nil, false, err
	}
	if issued != nil {
		return issued, false, nil
	}

	logger.Log.Info("Certificate issued",
		zap.String("certificateID", cert.CertificateID),
		zap.Uint("userID", userID),
		zap.Uint("courseID", courseID))
	return cert, true, nil
}
