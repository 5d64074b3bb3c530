package controller

import (
	"context"
	"net/http"
	"snaketests_backend/internal/service"
	"snaketests_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB    *gorm.DB
	Redis *redis.Client
	Mail  *service.MailQueue
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, mail *service.MailQueue) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Mail: mail}
}

// @Summary 健康检查
// @Description 检查数据库、Redis 与邮件队列状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	components := gin.H{"database": "up"}
	if c.Redis != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			components["redis"] = "down"
		} else {
			components["redis"] = "up"
		}
	}
	if c.Mail != nil {
		components["mail"] = c.Mail.Stats()
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}
