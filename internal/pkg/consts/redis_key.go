package consts

import "time"

const (
	UserKeyPrefix    = "user:"
	ProductKeyPrefix = "product:"

	UserActivitySuffix      = ":activity"
	UserInterestsSuffix     = ":interests:"
	UserSentRecommendSuffix = ":sent_recommendations"
	ProductViewedBySuffix   = ":viewed_by"
	UserInterestDirtyKey    = "user:interest:dirty"
)

const (
	RecentActivityLimit = 100
	ViewedByLimit       = 100
	RecentActivityTTL   = 48 * time.Hour
	ViewedByTTL         = 48 * time.Hour
	InterestSnapshotTTL = 7 * 24 * time.Hour
	SentLedgerTTL       = 7 * 24 * time.Hour

	// 每轮最多取出 RecomputeDrainBatch * RecomputeDrainMaxBatches 个用户，其余留到下一轮
	RecomputeDrainBatch      = 500
	RecomputeDrainMaxBatches = 20
)

func UserActivityKey(userID string) string {
	return UserKeyPrefix + userID + UserActivitySuffix
}

func ProductViewedByKey(productID string) string {
	return ProductKeyPrefix + productID + ProductViewedBySuffix
}

func UserInterestsKey(userID string, interestType string) string {
	return UserKeyPrefix + userID + UserInterestsSuffix + interestType
}

func UserSentRecommendationsKey(userID string) string {
	return UserKeyPrefix + userID + UserSentRecommendSuffix
}
