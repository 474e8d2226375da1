package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// HealthHandler 提供存活检查。无论依赖状态如何都返回 200，
// 依赖异常只体现在响应内容里。
type HealthHandler struct {
	mongoClient *mongo.Client
	redisClient *redis.Client
}

// NewHealthHandler 创建一个新的 HealthHandler 实例。
func NewHealthHandler(mongoClient *mongo.Client, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{mongoClient: mongoClient, redisClient: redisClient}
}

// Health 返回服务及其依赖的健康状态。
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	message := "service is healthy"

	if h.mongoClient != nil {
		if err := h.mongoClient.Ping(ctx, nil); err != nil {
			status = "degraded"
			message = "mongodb unreachable"
		}
	}
	if h.redisClient != nil {
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			status = "degraded"
			message = "redis unreachable"
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": status, "message": message})
}
