package service

import (
	"Affinity/internal/model"
	"Affinity/internal/pkg/mongo"
	"math"
	"time"
)

// InterestResult 一次重算的结果
type InterestResult struct {
	Products   model.InterestMap
	Categories model.InterestMap
}

// Decay exp(-λ·days)，未来时间按 0 天处理
func Decay(daysSince, lambda float64) float64 {
	if daysSince < 0 {
		daysSince = 0
	}
	return math.Exp(-lambda * daysSince)
}

// ComputeInterests 对窗口内的行为做时间衰减累加
// 一个行为对它的每个类目都贡献完整的分数，不做均分
func ComputeInterests(activities []*mongo.UserActivityModel, now time.Time, lambda float64) *InterestResult {
	result := &InterestResult{
		Products:   make(model.InterestMap),
		Categories: make(model.InterestMap),
	}

	for _, a := range activities {
		if a == nil {
			continue
		}
		daysSince := now.Sub(a.Timestamp).Hours() / 24
		contribution := a.Weight * Decay(daysSince, lambda)

		if a.ProductID != "" {
			accumulate(result.Products, a.ProductID, contribution, a.Timestamp)
		}
		for _, category := range a.Categories {
			if category == "" {
				continue
			}
			accumulate(result.Categories, category, contribution, a.Timestamp)
		}
	}
	return result
}

func accumulate(m model.InterestMap, itemID string, contribution float64, ts time.Time) {
	entry, ok := m[itemID]
	if !ok {
		m[itemID] = &model.InterestScore{Score: contribution, LastSeen: ts}
		return
	}
	entry.Score += contribution
	if ts.After(entry.LastSeen) {
		entry.LastSeen = ts
	}
}

// toUserInterests 转成待 upsert 的行，lastUpdated 统一为 now
func toUserInterests(userID string, result *InterestResult, now time.Time) []*model.UserInterest {
	list := make([]*model.UserInterest, 0, len(result.Products)+len(result.Categories))
	appendType := func(t model.InterestType, m model.InterestMap) {
		for itemID, s := range m {
			list = append(list, &model.UserInterest{
				UserID:       userID,
				InterestType: t,
				ItemID:       itemID,
				Score:        s.Score,
				LastUpdated:  now,
			})
		}
	}
	appendType(model.InterestProduct, result.Products)
	appendType(model.InterestCategory, result.Categories)
	return list
}
