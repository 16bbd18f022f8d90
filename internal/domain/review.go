package domain

import (
	"context"
	"time"
)

// Review 每个 (product, user) 至多一条，靠联合唯一索引兜底
type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ProductID string    `gorm:"size:36;not null;uniqueIndex:idx_reviews_product_user" json:"productId"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_reviews_product_user" json:"userId"`
	UserName  string    `gorm:"size:100" json:"userName"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Review) TableName() string { return "reviews" }

// RatingSummary 即时聚合出的评分摘要，从不落库缓存
type RatingSummary struct {
	AverageRating float64       `json:"averageRating"`
	ReviewCount   int64         `json:"reviewCount"`
	Distribution  map[int]int64 `json:"ratingDistribution"`
}

type ReviewRepository interface {
	Create(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id string) (*Review, error)
	FindByProductAndUser(ctx context.Context, productID, userID string) (*Review, error)
	ListByProduct(ctx context.Context, productID string, pg Page) ([]Review, int64, error)
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, productID string) (*RatingSummary, error)
}
