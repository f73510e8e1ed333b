package mongo

import (
	"Affinity/internal/model"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserActivityModel 用户行为记录，写入后不再修改，expire_at 到期由 TTL 索引删除
type UserActivityModel struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"user_id" json:"userId"`
	ProductID    string             `bson:"product_id,omitempty" json:"productId,omitempty"`
	Categories   []string           `bson:"categories,omitempty" json:"categories,omitempty"`
	SearchQuery  string             `bson:"search_query,omitempty" json:"searchQuery,omitempty"`
	ActivityType model.ActivityType `bson:"activity_type" json:"activityType"`
	Weight       float64            `bson:"weight" json:"weight"` // 入库时按类型固化，不回溯
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
	Metadata     map[string]any     `bson:"metadata,omitempty" json:"metadata,omitempty"`
	ExpireAt     time.Time          `bson:"expire_at" json:"expireAt"`
}
