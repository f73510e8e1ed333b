package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecommendedItem 推荐记录中的单个商品
type RecommendedItem struct {
	ProductID string  `bson:"product_id" json:"productId"`
	Score     float64 `bson:"score" json:"score"`
	Reason    string  `bson:"reason,omitempty" json:"reason,omitempty"`
}

// RecommendationModel 一次任务中某个用户的推荐结果，(user_id, task_id) 唯一
type RecommendationModel struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"userId"`
	TaskID      string             `bson:"task_id" json:"taskId"`
	Products    []RecommendedItem  `bson:"products" json:"products"`
	GeneratedAt time.Time          `bson:"generated_at" json:"generatedAt"`
	ExpiresAt   time.Time          `bson:"expires_at" json:"expiresAt"`
	IsNotified  bool               `bson:"is_notified" json:"isNotified"`
}
