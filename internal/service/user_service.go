// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"gemini-chat-go/internal/apperr"
	"gemini-chat-go/internal/model"
	"gemini-chat-go/internal/repository"
	"gemini-chat-go/pkg/hash"
	"gemini-chat-go/pkg/token"
)

// UserService 接口定义了所有与用户账户相关的业务操作。
type UserService interface {
	Register(ctx context.Context, username, password string) (userID string, err error)
	Login(ctx context.Context, username, password string) (userID, accessToken string, err error)
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo   repository.UserRepository
	jwtManager *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// Register 处理用户注册的业务逻辑。
func (s *userService) Register(ctx context.Context, username, password string) (string, error) {
	// 长度限制按字符数（rune）计，多字节用户名不能借字节数蒙混过关
	if utf8.RuneCountInString(username) < 3 {
		return "", apperr.Validation("Username must be at least 3 characters")
	}
	if utf8.RuneCountInString(password) < 6 {
		return "", apperr.Validation("Password must be at least 6 characters")
	}

	// 用户名全局唯一，区分大小写的精确匹配
	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return "", apperr.Validation("Username already exists")
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return "", err
	}

	newUser := &model.User{
		Username: username,
		Password: hashedPassword,
	}
	return s.userRepo.Create(ctx, newUser)
}

// Login 处理用户登录的业务逻辑，成功时签发 access token。
// 用户不存在与密码错误返回完全相同的失败，避免用户名枚举。
func (s *userService) Login(ctx context.Context, username, password string) (string, string, error) {
	invalid := apperr.Unauthorized("Invalid username or password")

	if username == "" || password == "" {
		return "", "", invalid
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", "", invalid
		}
		return "", "", err
	}

	if !hash.CheckPasswordHash(password, user.Password) {
		return "", "", invalid
	}

	accessToken, err := s.jwtManager.GenerateToken(user.ID.Hex(), user.Username)
	if err != nil {
		return "", "", err
	}
	return user.ID.Hex(), accessToken, nil
}
