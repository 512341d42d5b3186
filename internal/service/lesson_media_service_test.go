package service

import (
	"bytes"
	"context"
	"course_platform_backend/internal/model"
	"course_platform_backend/internal/repository"
	"course_platform_backend/internal/util"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func newLessonMediaService(f *fixture, root string, cache CatalogCache) *LessonMediaService {
	svc := NewLessonMediaService(
		repository.NewCourseRepository(f.db),
		&StorageService{Provider: &LocalStorageProvider{Root: root}},
		cache,
		filepath.Join(root, "temp"),
	)
	return svc
}

func TestUploadLessonVideo(t *testing.T) {
	f := newFixture(t)
	root := t.TempDir()
	cache := &recordingCache{}
	svc := newLessonMediaService(f, root, cache)
	svc.Probe = func(path string) (*util.VideoInfo, error) {
		return &util.VideoInfo{Duration: 125}, nil
	}

	lesson, err := svc.UploadLessonVideo(context.Background(), f.lessons[0].ID, multipartFile(t, "intro clip.MP4", []byte("fake video")))
	require.NoError(t, err)
	assert.Equal(t, 3, lesson.Duration)
	assert.True(t, strings.HasPrefix(lesson.VideoURL, "/uploads/videos/course-"))
	assert.True(t, strings.HasSuffix(lesson.VideoURL, "intro-clip.mp4"))
	assert.Equal(t, []uint{f.course.ID}, cache.invalidated)

	var stored model.Lesson
	require.NoError(t, f.db.First(&stored, f.lessons[0].ID).Error)
	assert.Equal(t, lesson.VideoURL, stored.VideoURL)
	assert.Equal(t, 3, stored.Duration)

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(lesson.VideoURL, "/uploads/"))))
	require.NoError(t, err)
	assert.Equal(t, "fake video", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "temp"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadLessonVideoProbeFailureKeepsDuration(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&f.lessons[1]).Update("duration", 7).Error)

	svc := newLessonMediaService(f, t.TempDir(), nil)
	svc.Probe = func(path string) (*util.VideoInfo, error) {
		return nil, errors.New("ffprobe not installed")
	}

	lesson, err := svc.UploadLessonVideo(context.Background(), f.lessons[1].ID, multipartFile(t, "a.webm", []byte("x")))
	require.NoError(t, err)
	assert.Equal(t, 7, lesson.Duration)
}

func TestUploadLessonVideoValidation(t *testing.T) {
	f := newFixture(t)
	svc := newLessonMediaService(f, t.TempDir(), nil)

	_, err := svc.UploadLessonVideo(context.Background(), f.lessons[0].ID, multipartFile(t, "notes.pdf", []byte("x")))
	assert.ErrorIs(t, err, util.ErrInvalidVideoExt)

	_, err = svc.UploadLessonVideo(context.Background(), 999, multipartFile(t, "a.mp4", []byte("x")))
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}
