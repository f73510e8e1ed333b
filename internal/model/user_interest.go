package model

import "time"

// InterestType 兴趣维度
type InterestType string

const (
	InterestProduct  InterestType = "product"
	InterestCategory InterestType = "category"
)

// UserInterest 用户对单个商品/类目的衰减兴趣分，每次重算整体覆盖
type UserInterest struct {
	ID           uint64       `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID       string       `gorm:"type:varchar(64);not null;uniqueIndex:uk_user_type_item,priority:1;index:idx_user_score,priority:1" json:"userId"`
	InterestType InterestType `gorm:"type:varchar(16);not null;uniqueIndex:uk_user_type_item,priority:2" json:"interestType"`
	ItemID       string       `gorm:"type:varchar(128);not null;uniqueIndex:uk_user_type_item,priority:3" json:"itemId"`
	Score        float64      `gorm:"not null;index:idx_user_score,priority:2" json:"score"`
	LastUpdated  time.Time    `gorm:"not null" json:"lastUpdated"`
}

func (UserInterest) TableName() string {
	return "user_interests"
}

// InterestScore 一次重算中单个条目的累计结果
type InterestScore struct {
	Score    float64
	LastSeen time.Time
}

// InterestMap 存储条目得分: map[item_id]score
type InterestMap map[string]*InterestScore

// Scores 去掉 LastSeen，只保留分数
func (m InterestMap) Scores() map[string]float64 {
	out := make(map[string]float64, len(m))
	for id, s := range m {
		out[id] = s.Score
	}
	return out
}
