package repository

import (
	"Affinity/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 100

type UserInterestRepo interface {
	SaveUserInterests(ctx context.Context, interests []*model.UserInterest) error
	GetTopInterests(ctx context.Context, userID string, interestType model.InterestType, limit int) ([]*model.UserInterest, error)
	GetUserInterests(ctx context.Context, userID string, interestType model.InterestType) ([]*model.UserInterest, error)
}

type userInterestRepoImpl struct {
	db *gorm.DB
}

func NewUserInterestRepository(db *gorm.DB) UserInterestRepo {
	return &userInterestRepoImpl{db: db}
}

// SaveUserInterests 按 (user_id, interest_type, item_id) upsert，覆盖分数而不是累加
func (r *userInterestRepoImpl) SaveUserInterests(ctx context.Context, interests []*model.UserInterest) error {
	if len(interests) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "interest_type"},
			{Name: "item_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"score", "last_updated"}),
	}).CreateInBatches(interests, upsertBatchSize).Error
}

// GetTopInterests 获取用户某一维度得分最高的 limit 个条目
func (r *userInterestRepoImpl) GetTopInterests(ctx context.Context, userID string, interestType model.InterestType, limit int) ([]*model.UserInterest, error) {
	var list []*model.UserInterest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND interest_type = ?", userID, interestType).
		Order("score DESC").
		Order("item_id ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// GetUserInterests 获取用户全部兴趣，interestType 为空时不过滤维度
func (r *userInterestRepoImpl) GetUserInterests(ctx context.Context, userID string, interestType model.InterestType) ([]*model.UserInterest, error) {
	var list []*model.UserInterest
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if interestType != "" {
		tx = tx.Where("interest_type = ?", interestType)
	}
	if err := tx.Order("score DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
