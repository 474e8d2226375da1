// Package repository 定义了与数据存储进行数据交换的接口和实现。
package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"gemini-chat-go/internal/model"
)

// UserRepository 接口定义了用户数据的持久化操作。
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (string, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// userRepository 是 UserRepository 接口的 MongoDB 实现。
type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository 创建一个新的 UserRepository 实例。
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{coll: db.Collection("users")}
}

// Create 插入一条新的用户记录并返回生成的用户 ID。
func (r *userRepository) Create(ctx context.Context, user *model.User) (string, error) {
	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return "", err
	}
	return user.ID.Hex(), nil
}

// FindByUsername 按用户名精确查找用户（区分大小写）。
// 用户不存在时返回 mongo.ErrNoDocuments。
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
