package util

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ActingUserID 从请求头或 query 中取出当前操作用户
func ActingUserID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(UserIDHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(c.Query("userId"))
}
