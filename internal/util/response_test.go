package util

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		err  error
		want int
	}{
		{ErrCourseNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", ErrSubmissionNotFound), http.StatusNotFound},
		{ErrLessonNotFound, http.StatusNotFound},
		{ErrNotEnrolled, http.StatusForbidden},
		{ErrNotCompleted, http.StatusPreconditionFailed},
		{ErrInvalidVideoExt, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		HandleServiceError(c, tt.err)
		assert.Equal(t, tt.want, w.Code, tt.err.Error())
	}
}
