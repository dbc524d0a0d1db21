package controller

import (
	"context"
	"net/http"
	"time"

	"studytest_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SessionCounter 活动答题会话数
type SessionCounter interface {
	ActiveCount() int
}

type HealthController struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Sessions SessionCounter
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, sessions SessionCounter) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Sessions: sessions}
}

// @Summary 健康检查
// @Description 检查数据库和 Redis 连接，返回活动答题会话数
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	components := gin.H{}

	// 检查数据库连接
	if c.DB == nil {
		components["database"] = "disabled"
	} else {
		sqlDB, err := c.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		components["database"] = "up"
	}

	// Redis 只保存快照，不可用时降级
	if c.Redis == nil {
		components["redis"] = "disabled"
	} else {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), time.Second)
		defer cancel()
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			components["redis"] = "down"
		} else {
			components["redis"] = "up"
		}
	}

	data := gin.H{
		"status":     "ok",
		"components": components,
	}
	if c.Sessions != nil {
		data["activeSessions"] = c.Sessions.ActiveCount()
	}
	util.Success(ctx, data)
}
