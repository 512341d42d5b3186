package util

import "errors"

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrNotEnrolled        = errors.New("user is not enrolled in this course")
	ErrNotCompleted       = errors.New("course not completed")
	ErrInvalidVideoExt    = errors.New("unsupported video file extension")
)
