package consts

const (
	TaskDailyRecommendations   = "daily-recommendations"
	NotificationTypeRecommend  = "recommendation"
	NotificationTitleRecommend = "Recommended for you"
)

const (
	InterestTopCategoryLimit = 5
	InterestScoreFactor      = 0.8
	RecencyBaseScore         = 0.5
	ReasonRecentlyViewed     = "Recently viewed"
	ReasonCategoryInterests  = "Based on your category interests"
	ReasonInterestPrefix     = "Based on your interest in "
)
