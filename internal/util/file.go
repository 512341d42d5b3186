package util

import (
	"path/filepath"
	"strings"
)

// IsAllowedVideo 按扩展名校验视频文件
func IsAllowedVideo(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range AllowedVideoExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
