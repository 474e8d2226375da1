package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"gemini-chat-go/pkg/log"
)

// NewRedis 建立 Redis 连接并验证可用性。
func NewRedis(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping Redis 失败: %w", err)
	}

	log.Info("Redis client connected successfully")
	return rdb, nil
}
