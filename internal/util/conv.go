package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || uint64(uint(id)) != id {
		return 0
	}
	return uint(id)
}

// ParseIDParam 读取路径中的正整数 ID
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	id := MustParseUint(c.Param(name))
	return id, id > 0
}
