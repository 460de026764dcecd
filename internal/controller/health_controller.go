package controller

import (
	"context"
	"net/http"
	"time"

	"eduverse_backend/internal/repository"
	"eduverse_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type HealthController struct {
	Store   repository.Store
	Redis   *redis.Client
	started time.Time
}

// NewHealthController rdb 为 nil 时 redis 组件显示为 disabled
func NewHealthController(store repository.Store, rdb *redis.Client) *HealthController {
	return &HealthController{Store: store, Redis: rdb, started: time.Now()}
}

// @Summary 健康检查
// @Description 数据库不可用时返回 503，redis 未启用时标记为 disabled
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	components := gin.H{"database": "up", "redis": "disabled"}
	healthy := true
	if err := c.Store.Ping(pingCtx); err != nil {
		components["database"] = "down"
		healthy = false
	}
	if c.Redis != nil {
		components["redis"] = "up"
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			components["redis"] = "down"
			healthy = false
		}
	}

	data := gin.H{
		"status":     "ok",
		"uptime":     time.Since(c.started).Round(time.Second).String(),
		"components": components,
	}
	if !healthy {
		data["status"] = "degraded"
		ctx.JSON(http.StatusServiceUnavailable, util.Response{
			Code:    http.StatusServiceUnavailable,
			Message: "dependency unavailable",
			Data:    data,
		})
		return
	}
	util.Success(ctx, data)
}
