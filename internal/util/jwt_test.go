package util

import (
	"course_platform_backend/internal/model"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, model.Teacher, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, model.Teacher, claims.Role)
}

func TestParseJWTRejects(t *testing.T) {
	expired, err := GenerateJWT(1, model.Student, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)

	valid, err := GenerateJWT(1, model.Student, "secret", time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(valid, "other-secret")
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseJWT(unsigned, "secret")
	assert.Error(t, err)
}

func TestUserIDFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uint(0), UserIDFromContext(c))

	c.Set("user", &Claims{UserID: 7})
	assert.Equal(t, uint(7), UserIDFromContext(c))

	c.Set("user", "garbage")
	assert.Nil(t, GetUserFromContext(c))
}
