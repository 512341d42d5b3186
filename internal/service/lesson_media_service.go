package service

import (
	"context"
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/repository"
	"course_platform_backend/internal/util"
	"course_platform_backend/pkg/logger"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LessonMediaService 课时视频上传，时长由 ffprobe 读取
type LessonMediaService struct {
	CourseRepo *repository.CourseRepository
	Storage    *StorageService
	Cache      CatalogCache
	TempDir    string
	Probe      func(path string) (*util.VideoInfo, error)
}

func NewLessonMediaService(courseRepo *repository.CourseRepository, storage *StorageService, cache CatalogCache, tempDir string) *LessonMediaService {
	if cache == nil {
		cache = NopCatalogCache{}
	}
	return &LessonMediaService{
		CourseRepo: courseRepo,
		Storage:    storage,
		Cache:      cache,
		TempDir:    tempDir,
		Probe:      util.GetVideoInfo,
	}
}

func videoObjectKey(courseID, lessonID uint, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.ReplaceAll(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), " ", "-")
	name := fmt.Sprintf("%s-%d-%s%s", time.Now().Format("20060102150405"), lessonID, base, ext)
	return ObjectKey("videos", fmt.Sprintf("course-%d", courseID), name)
}

// UploadLessonVideo 校验扩展名后写入临时文件、探测时长、上传并更新课时
func (s *LessonMediaService) UploadLessonVideo(ctx context.Context, lessonID uint, file *multipart.FileHeader) (*model.Lesson, error) {
	if !util.IsAllowedVideo(file.Filename) {
		return nil, util.ErrInvalidVideoExt
	}

	lesson, err := s.CourseRepo.FindLessonByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if err := os.MkdirAll(s.TempDir, 0755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(s.TempDir, "lesson-*"+strings.ToLower(filepath.Ext(file.Filename)))
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return nil, err
	}
	tmp.Close() // 探测前先关闭，避免 Windows 文件锁

	duration := lesson.Duration
	if info, err := s.Probe(tmpPath); err != nil {
		logger.Log.Warn("Failed to probe lesson video, keeping previous duration",
			zap.Uint("lessonID", lessonID), zap.Error(err))
	} else if minutes := info.DurationMinutes(); minutes > 0 {
		duration = minutes
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, util.MimeVideo) {
		contentType = util.MimeVideo + strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	}

	url, err := s.Storage.UploadFile(ctx, videoObjectKey(lesson.CourseID, lesson.ID, file.Filename), tmpPath, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload lesson video: %w", err)
	}

	if err := s.CourseRepo.UpdateLessonMedia(lesson.ID, url, duration); err != nil {
		return nil, err
	}
	lesson.VideoURL = url
	lesson.Duration = duration
	s.Cache.Invalidate(ctx, lesson.CourseID)

	logger.Log.Info("Lesson video uploaded",
		zap.Uint("lessonID", lesson.ID),
		zap.Uint("courseID", lesson.CourseID),
		zap.Int("duration", duration))
	return lesson, nil
}
