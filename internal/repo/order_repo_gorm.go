package repo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-grocery-store/internal/domain"
)

type OrderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) *OrderRepo { return &OrderRepo{db: db} }

// Create 连同明细一起写入（gorm 关联插入）
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string, pg domain.Page) ([]domain.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Order{}).Where("user_id = ?", userID)
	return r.list(q, pg)
}

func (r *OrderRepo) List(ctx context.Context, pg domain.Page) ([]domain.Order, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&domain.Order{}), pg)
}

func (r *OrderRepo) list(q *gorm.DB, pg domain.Page) ([]domain.Order, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []domain.Order
	err := q.Preload("Items").
		Order(pg.OrderClause("order_date desc")).
		Limit(pg.Size).Offset(pg.Offset()).
		Find(&orders).Error
	return orders, total, err
}

// Update 只更新订单本身，明细创建后不动
func (r *OrderRepo) Update(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Save(o).Error
}

func (r *OrderRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).Count(&n).Error
	return n, err
}

func (r *OrderRepo) CountByStatus(ctx context.Context, s domain.OrderStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("status = ?", s).Count(&n).Error
	return n, err
}

func (r *OrderRepo) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("status = ?", domain.OrderCompleted).
		Scan(&row).Error
	return row.Total, err
}

func (r *OrderRepo) CountItemsByProduct(ctx context.Context, productID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.OrderItem{}).
		Where("product_id = ?", productID).Count(&n).Error
	return n, err
}
