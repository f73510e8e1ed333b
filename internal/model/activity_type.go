package model

// ActivityType 用户行为类型
type ActivityType string

const (
	ActivityViewProduct   ActivityType = "view_product"
	ActivityAddToCart     ActivityType = "add_to_cart"
	ActivityAddToWishlist ActivityType = "add_to_wishlist"
	ActivityPurchase      ActivityType = "purchase"
	ActivitySearch        ActivityType = "search"
)

// Weight 行为权重，入库时固化到活动记录上
func (t ActivityType) Weight() (float64, bool) {
	switch t {
	case ActivityViewProduct:
		return 1, true
	case ActivityAddToWishlist:
		return 3, true
	case ActivityAddToCart:
		return 5, true
	case ActivityPurchase:
		return 10, true
	case ActivitySearch:
		return 0.5, true
	default:
		return 0, false
	}
}

// IsBrowsing 是否计入"最近浏览"
func (t ActivityType) IsBrowsing() bool {
	return t == ActivityViewProduct || t == ActivityAddToCart || t == ActivityAddToWishlist
}
