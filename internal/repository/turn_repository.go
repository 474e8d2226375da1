package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"gemini-chat-go/internal/model"
	"gemini-chat-go/pkg/log"
)

const (
	// recentTurnLimit 是简单聊天流程拼接 prompt 时使用的历史窗口大小。
	recentTurnLimit = 10
	turnCacheTTL    = 7 * 24 * time.Hour
)

// TurnRepository 接口定义了扁平聊天记录（每轮一条）的持久化操作。
type TurnRepository interface {
	Insert(ctx context.Context, turn model.ChatTurn) error
	// FindRecent 返回用户最近的 limit 轮对话，按时间从旧到新排列。
	FindRecent(ctx context.Context, userID string, limit int) ([]model.ChatTurn, error)
}

// turnRepository 以 MongoDB 为准，前置一层 Redis 写穿缓存保存最近若干轮，
// 避免每次拼 prompt 都回表。缓存失效或出错时回源查询，错误只记录不上抛。
type turnRepository struct {
	coll *mongo.Collection
	rdb  *redis.Client
}

// NewTurnRepository 创建一个新的 TurnRepository 实例。
func NewTurnRepository(db *mongo.Database, rdb *redis.Client) TurnRepository {
	return &turnRepository{coll: db.Collection("chat_turns"), rdb: rdb}
}

func turnCacheKey(userID string) string {
	return fmt.Sprintf("chat:recent:%s", userID)
}

// Insert 写入一轮对话，并同步更新该用户的最近历史缓存。
func (r *turnRepository) Insert(ctx context.Context, turn model.ChatTurn) error {
	if _, err := r.coll.InsertOne(ctx, turn); err != nil {
		return err
	}
	r.appendToCache(ctx, turn)
	return nil
}

// FindRecent 优先读缓存，未命中时按 _id 倒序查询 MongoDB 再反转为从旧到新。
func (r *turnRepository) FindRecent(ctx context.Context, userID string, limit int) ([]model.ChatTurn, error) {
	if turns, ok := r.readCache(ctx, userID); ok {
		if len(turns) > limit {
			turns = turns[len(turns)-limit:]
		}
		return turns, nil
	}

	opts := options.Find().SetSort(bson.M{"_id": -1}).SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var newestFirst []model.ChatTurn
	if err := cursor.All(ctx, &newestFirst); err != nil {
		return nil, err
	}

	turns := make([]model.ChatTurn, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		turns = append(turns, newestFirst[i])
	}

	r.writeCache(ctx, userID, turns)
	return turns, nil
}

func (r *turnRepository) readCache(ctx context.Context, userID string) ([]model.ChatTurn, bool) {
	if r.rdb == nil {
		return nil, false
	}
	data, err := r.rdb.Get(ctx, turnCacheKey(userID)).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Warnf("turnRepository: 读取最近对话缓存失败: %v", err)
		return nil, false
	}
	var turns []model.ChatTurn
	if err := json.Unmarshal([]byte(data), &turns); err != nil {
		log.Warnf("turnRepository: 解析最近对话缓存失败: %v", err)
		return nil, false
	}
	return turns, true
}

func (r *turnRepository) writeCache(ctx context.Context, userID string, turns []model.ChatTurn) {
	if r.rdb == nil {
		return
	}
	if len(turns) > recentTurnLimit {
		turns = turns[len(turns)-recentTurnLimit:]
	}
	data, err := json.Marshal(turns)
	if err != nil {
		log.Warnf("turnRepository: 序列化最近对话缓存失败: %v", err)
		return
	}
	if err := r.rdb.Set(ctx, turnCacheKey(userID), data, turnCacheTTL).Err(); err != nil {
		log.Warnf("turnRepository: 写入最近对话缓存失败: %v", err)
	}
}

func (r *turnRepository) appendToCache(ctx context.Context, turn model.ChatTurn) {
	if r.rdb == nil {
		return
	}
	turns, ok := r.readCache(ctx, turn.UserID)
	if !ok {
		// 缓存冷启动时不回源补齐，下一次 FindRecent 会重建
		return
	}
	r.writeCache(ctx, turn.UserID, append(turns, turn))
}
