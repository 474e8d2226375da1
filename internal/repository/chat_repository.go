package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"gemini-chat-go/internal/model"
)

// ChatRepository 接口定义了嵌套会话文档（每个用户一条）的持久化操作。
// 所有更新都是针对单个文档的原子操作，数组元素通过 chat_id 定位。
type ChatRepository interface {
	FindOwner(ctx context.Context, userID string) (*model.ChatOwner, error)
	InsertOwner(ctx context.Context, owner *model.ChatOwner) error
	PushChat(ctx context.Context, userID string, chat model.Chat) error
	AppendMessages(ctx context.Context, userID, chatID string, messages []model.Message) (int64, error)
	RemoveChat(ctx context.Context, userID, chatID string) (int64, error)
	RenameChat(ctx context.Context, userID, chatID, title string) (int64, error)
}

// chatRepository 是 ChatRepository 接口的 MongoDB 实现。
type chatRepository struct {
	coll *mongo.Collection
}

// NewChatRepository 创建一个新的 ChatRepository 实例。
func NewChatRepository(db *mongo.Database) ChatRepository {
	return &chatRepository{coll: db.Collection("chats")}
}

// FindOwner 按 user_id 查找用户的会话文档。
// 文档不存在时返回 mongo.ErrNoDocuments。
func (r *chatRepository) FindOwner(ctx context.Context, userID string) (*model.ChatOwner, error) {
	var owner model.ChatOwner
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&owner)
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

// InsertOwner 为用户创建会话文档（首次创建会话时调用）。
func (r *chatRepository) InsertOwner(ctx context.Context, owner *model.ChatOwner) error {
	_, err := r.coll.InsertOne(ctx, owner)
	return err
}

// PushChat 向已存在的会话文档追加一个新会话。
func (r *chatRepository) PushChat(ctx context.Context, userID string, chat model.Chat) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$push": bson.M{"chats": chat}},
	)
	return err
}

// AppendMessages 通过位置操作符把一组消息原子地追加到指定会话的 history 中。
// 返回匹配到的文档数，为 0 表示用户或会话不存在。
func (r *chatRepository) AppendMessages(ctx context.Context, userID, chatID string, messages []model.Message) (int64, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "chats.chat_id": chatID},
		bson.M{"$push": bson.M{"chats.$.history": bson.M{"$each": messages}}},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// RemoveChat 按 chat_id 从用户文档中删除一个会话，返回实际修改的文档数。
func (r *chatRepository) RemoveChat(ctx context.Context, userID, chatID string) (int64, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$pull": bson.M{"chats": bson.M{"chat_id": chatID}}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// RenameChat 更新指定会话的标题，返回实际修改的文档数。
// 标题与原值相同时修改数为 0，调用方按未找到处理。
func (r *chatRepository) RenameChat(ctx context.Context, userID, chatID, title string) (int64, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "chats.chat_id": chatID},
		bson.M{"$set": bson.M{"chats.$.title": title}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
