// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"gemini-chat-go/internal/config"
	"gemini-chat-go/internal/handler"
	"gemini-chat-go/internal/middleware"
	"gemini-chat-go/internal/repository"
	"gemini-chat-go/internal/service"
	"gemini-chat-go/pkg/database"
	"gemini-chat-go/pkg/llm"
	"gemini-chat-go/pkg/log"
	"gemini-chat-go/pkg/token"
)

func main() {
	// 1. 加载 .env（可选）和配置文件
	_ = godotenv.Load()
	cfg, err := config.Load("./configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化 MongoDB 和 Redis 客户端（显式构造，进程退出时关闭）
	mongoClient, err := database.NewMongo(cfg.Database.Mongo.URI)
	if err != nil {
		log.Fatal("MongoDB 初始化失败", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Error("关闭 MongoDB 连接失败", err)
		}
	}()
	db := mongoClient.Database(cfg.Database.Mongo.Database)

	redisClient, err := database.NewRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err != nil {
		log.Fatal("Redis 初始化失败", err)
	}
	defer redisClient.Close()

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	turnRepo := repository.NewTurnRepository(db, redisClient)

	// 5. 初始化 Service（依赖注入）
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours)
	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatal("LLM 客户端初始化失败", err)
	}
	userService := service.NewUserService(userRepo, jwtManager)
	chatService := service.NewChatService(turnRepo, llmClient)
	convService := service.NewConversationService(chatRepo, llmClient)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
	}))

	// 7. 注册路由
	chatHandler := handler.NewChatHandler(chatService)
	convHandler := handler.NewConversationHandler(convService)
	userHandler := handler.NewUserHandler(userService)
	healthHandler := handler.NewHealthHandler(mongoClient, redisClient)

	api := r.Group("/api")
	{
		api.POST("/chat", chatHandler.Chat)
		api.POST("/new_chat", convHandler.CreateChat)
		api.POST("/send_message", convHandler.SendMessage)
		api.GET("/get_chats/:user_id", convHandler.GetChats)
		api.GET("/chat/:user_id/:chat_id", convHandler.GetChatHistory)
		api.DELETE("/chat/:user_id/:chat_id", convHandler.DeleteChat)
		api.PATCH("/chat/:user_id/:chat_id/rename", convHandler.RenameChat)

		api.POST("/signup", userHandler.Signup)
		api.POST("/login", userHandler.Login)

		api.GET("/health", healthHandler.Health)
	}

	// 8. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP 服务监听失败", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP 服务器关闭失败", err)
	}

	log.Info("服务已优雅关闭")
}
