// Package database 提供数据存储客户端的初始化。
// 客户端在进程启动时显式构造并向下传递，不使用包级全局句柄。
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"gemini-chat-go/pkg/log"
)

// NewMongo 建立 MongoDB 连接并通过 ping 验证可用性。
// 返回的 client 由调用方负责在进程退出时 Disconnect。
func NewMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("连接 MongoDB 失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping MongoDB 失败: %w", err)
	}

	log.Info("MongoDB connected successfully")
	return client, nil
}
