package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeOutput(t *testing.T) {
	out := `{
		"streams": [
			{"codec_type": "audio"},
			{"codec_type": "video", "width": 1280, "height": 720}
		],
		"format": {"duration": "61.500000", "size": "1048576", "format_name": "mov,mp4,m4a,3gp,3g2,mj2"}
	}`

	info, err := ParseProbeOutput(out)
	require.NoError(t, err)
	assert.Equal(t, 1280, info.Width)
	assert.Equal(t, 720, info.Height)
	assert.Equal(t, 61.5, info.Duration)
	assert.Equal(t, int64(1048576), info.Size)
	assert.Equal(t, "mov", info.Format)
	assert.Equal(t, 2, info.DurationMinutes())
}

func TestParseProbeOutputInvalid(t *testing.T) {
	_, err := ParseProbeOutput("not json")
	assert.Error(t, err)

	info, err := ParseProbeOutput(`{"format": {}}`)
	require.NoError(t, err)
	assert.Equal(t, "unknown", info.Format)
	assert.Equal(t, 0, info.DurationMinutes())
}

func TestDurationMinutes(t *testing.T) {
	var nilInfo *VideoInfo
	assert.Equal(t, 0, nilInfo.DurationMinutes())
	assert.Equal(t, 1, (&VideoInfo{Duration: 60}).DurationMinutes())
	assert.Equal(t, 2, (&VideoInfo{Duration: 60.1}).DurationMinutes())
}

func TestIsAllowedVideo(t *testing.T) {
	assert.True(t, IsAllowedVideo("lecture.MP4"))
	assert.True(t, IsAllowedVideo("a.webm"))
	assert.False(t, IsAllowedVideo("slides.pdf"))
	assert.False(t, IsAllowedVideo("noext"))
}
