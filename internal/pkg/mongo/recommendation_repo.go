package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RecommendationRepo interface {
	SaveRecommendation(ctx context.Context, rec *RecommendationModel) error
	MarkNotified(ctx context.Context, id primitive.ObjectID) error
	GetUserRecommendations(ctx context.Context, userID string, limit int64) ([]*RecommendationModel, error)
}

type recommendationRepoImpl struct {
	col *mongo.Collection
}

func NewRecommendationRepo(db *mongo.Database) RecommendationRepo {
	return &recommendationRepoImpl{
		col: db.Collection(RecommendationCollection),
	}
}

// SaveRecommendation 按 (user_id, task_id) upsert，同一任务重复投递只保留一份
func (s *recommendationRepoImpl) SaveRecommendation(ctx context.Context, rec *RecommendationModel) error {
	filter := bson.M{"user_id": rec.UserID, "task_id": rec.TaskID}
	update := bson.M{
		"$set": bson.M{
			"products":     rec.Products,
			"generated_at": rec.GeneratedAt,
			"expires_at":   rec.ExpiresAt,
		},
		"$setOnInsert": bson.M{"is_notified": false},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved RecommendationModel
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return err
	}
	rec.ID = saved.ID
	rec.IsNotified = saved.IsNotified
	return nil
}

// MarkNotified 标记推荐已通知
func (s *recommendationRepoImpl) MarkNotified(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"is_notified": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// GetUserRecommendations 获取用户最近的推荐记录 (按生成时间倒序)
func (s *recommendationRepoImpl) GetUserRecommendations(ctx context.Context, userID string, limit int64) ([]*RecommendationModel, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "generated_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*RecommendationModel, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
