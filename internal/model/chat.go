package model

// Message 是某个会话历史中的一条消息，sender 取值 "user" 或 "bot"。
// 时间戳以 RFC3339 字符串存储，与线上既有文档保持一致。
type Message struct {
	Sender    string `bson:"sender" json:"sender"`
	Message   string `bson:"message" json:"message"`
	Timestamp string `bson:"timestamp" json:"timestamp"`
}

// Chat 是嵌入在用户文档中的单个会话。
// history 只追加，读取时保持插入顺序。
type Chat struct {
	ChatID    string    `bson:"chat_id" json:"chat_id"`
	CreatedAt string    `bson:"created_at" json:"created_at"`
	Title     string    `bson:"title" json:"title"`
	History   []Message `bson:"history" json:"history"`
}

// ChatOwner 是 chats 集合中的文档，每个用户一条，会话内嵌其中。
type ChatOwner struct {
	UserID string `bson:"user_id" json:"user_id"`
	Chats  []Chat `bson:"chats" json:"chats"`
}

// ChatSummary 是会话列表接口返回的摘要。
type ChatSummary struct {
	ChatID    string `json:"chat_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

// ChatTurn 是简单聊天流程（/chat）使用的扁平历史记录，每轮一条。
type ChatTurn struct {
	UserID    string `bson:"user_id" json:"user_id"`
	UserInput string `bson:"user_input" json:"user_input"`
	BotReply  string `bson:"bot_reply" json:"bot_reply"`
}
