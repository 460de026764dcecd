package controller

import (
	"strconv"
	"strings"

	"eduverse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// bindJSON 请求体无法解析时直接返回 400
func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		util.BadRequest(ctx, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// splitQuery 逗号分隔的 query 参数
func splitQuery(ctx *gin.Context, key string) []string {
	return splitCSV(ctx.Query(key))
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func boolQuery(ctx *gin.Context, key string) *bool {
	v, err := strconv.ParseBool(ctx.Query(key))
	if err != nil {
		return nil
	}
	return &v
}
