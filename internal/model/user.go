// Package model 包含了应用的数据模型定义。
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User 代表 users 集合中的一条用户记录。
// Password 字段存储 bcrypt 哈希，永远不出现在任何响应中。
type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"-"`
	Username  string        `bson:"username" json:"username"`
	Password  string        `bson:"password" json:"-"`
	CreatedAt time.Time     `bson:"created_at" json:"-"`
}
