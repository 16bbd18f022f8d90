package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-grocery-store/internal/domain"
)

type ReviewRepo struct{ db *gorm.DB }

func NewReviewRepo(db *gorm.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Create(ctx context.Context, rev *domain.Review) error {
	err := r.db.WithContext(ctx).Create(rev).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *ReviewRepo) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	var rev domain.Review
	err := r.db.WithContext(ctx).First(&rev, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rev, err
}

func (r *ReviewRepo) FindByProductAndUser(ctx context.Context, productID, userID string) (*domain.Review, error) {
	var rev domain.Review
	err := r.db.WithContext(ctx).
		First(&rev, "product_id = ? AND user_id = ?", productID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rev, err
}

func (r *ReviewRepo) ListByProduct(ctx context.Context, productID string, pg domain.Page) ([]domain.Review, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Review{}).Where("product_id = ?", productID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []domain.Review
	err := q.Order(pg.OrderClause("created_at desc")).
		Limit(pg.Size).Offset(pg.Offset()).Find(&items).Error
	return items, total, err
}

func (r *ReviewRepo) Update(ctx context.Context, rev *domain.Review) error {
	return r.db.WithContext(ctx).Save(rev).Error
}

func (r *ReviewRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Review{}).Error
}

// Summary 每次现算 AVG/COUNT 和评分分布，不做任何缓存
func (r *ReviewRepo) Summary(ctx context.Context, productID string) (*domain.RatingSummary, error) {
	var agg struct {
		Avg float64
		Cnt int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS cnt").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Rating int
		Cnt    int64
	}
	err = r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("rating, COUNT(*) AS cnt").
		Where("product_id = ?", productID).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	dist := make(map[int]int64, 5)
	for _, row := range rows {
		dist[row.Rating] = row.Cnt
	}
	return &domain.RatingSummary{AverageRating: agg.Avg, ReviewCount: agg.Cnt, Distribution: dist}, nil
}
