package model

// Product 商品服务返回的商品
type Product struct {
	ID          string   `json:"id"`
	MongoID     string   `json:"_id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Images      []string `json:"images,omitempty"`
	Categories  []string `json:"categories"`
	CategoryID  string   `json:"categoryId,omitempty"`
}

// Normalize 商品服务部分接口只返回 _id
func (p *Product) Normalize() {
	if p.ID == "" {
		p.ID = p.MongoID
	}
}

// Image 优先 imageUrl，否则取第一张图
func (p *Product) Image() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// CategoryList 兼容只带单个 categoryId 的旧数据
func (p *Product) CategoryList() []string {
	if len(p.Categories) > 0 {
		return p.Categories
	}
	if p.CategoryID != "" {
		return []string{p.CategoryID}
	}
	return []string{}
}

// RecommendedProduct 推荐结果中的一项
type RecommendedProduct struct {
	ProductID   string   `json:"productId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	ImageURL    string   `json:"imageUrl"`
	Categories  []string `json:"categories"`
	Score       float64  `json:"score"`
	Reason      string   `json:"reason"`
}

func NewRecommendedProduct(p *Product, score float64, reason string) RecommendedProduct {
	return RecommendedProduct{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.Image(),
		Categories:  p.CategoryList(),
		Score:       score,
		Reason:      reason,
	}
}
