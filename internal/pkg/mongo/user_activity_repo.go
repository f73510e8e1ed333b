package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserActivityRepo interface {
	CreateActivity(ctx context.Context, activity *UserActivityModel) error
	GetActivitiesSince(ctx context.Context, userID string, since time.Time) ([]*UserActivityModel, error)
	GetRecentActivities(ctx context.Context, userID string, limit int64) ([]*UserActivityModel, error)
}

type userActivityRepoImpl struct {
	col *mongo.Collection
}

func NewUserActivityRepo(db *mongo.Database) UserActivityRepo {
	return &userActivityRepoImpl{
		col: db.Collection(UserActivityCollection),
	}
}

// CreateActivity 插入一条行为记录
func (s *userActivityRepoImpl) CreateActivity(ctx context.Context, activity *UserActivityModel) error {
	res, err := s.col.InsertOne(ctx, activity)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		activity.ID = oid
	}
	return nil
}

// GetActivitiesSince 获取窗口内的全部行为 (按时间倒序)
func (s *userActivityRepoImpl) GetActivitiesSince(ctx context.Context, userID string, since time.Time) ([]*UserActivityModel, error) {
	filter := bson.M{
		"user_id":   userID,
		"timestamp": bson.M{"$gte": since},
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	return s.find(ctx, filter, opts)
}

// GetRecentActivities 获取最近的 limit 条行为
func (s *userActivityRepoImpl) GetRecentActivities(ctx context.Context, userID string, limit int64) ([]*UserActivityModel, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	return s.find(ctx, bson.M{"user_id": userID}, opts)
}

func (s *userActivityRepoImpl) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*UserActivityModel, error) {
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	list := make([]*UserActivityModel, 0)
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
