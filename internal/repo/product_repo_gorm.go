package repo

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-grocery-store/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

// LockByID 行锁读，配合下单事务做库存检查+扣减
func (r *ProductRepo) LockByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *ProductRepo) List(ctx context.Context, pg domain.Page) ([]domain.Product, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&domain.Product{}), pg, "created_at desc")
}

func (r *ProductRepo) Search(ctx context.Context, name string, pg domain.Page) ([]domain.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%")
	return r.list(q, pg, "created_at desc")
}

func (r *ProductRepo) InStock(ctx context.Context, pg domain.Page) ([]domain.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{}).Where("quantity > 0")
	return r.list(q, pg, "created_at desc")
}

func (r *ProductRepo) PriceRange(ctx context.Context, min, max decimal.Decimal, pg domain.Page) ([]domain.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("price BETWEEN ? AND ?", min, max)
	return r.list(q, pg, "price asc")
}

func (r *ProductRepo) TopRated(ctx context.Context, pg domain.Page) ([]domain.Product, int64, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	var items []domain.Product
	err = r.db.WithContext(ctx).Model(&domain.Product{}).
		Select("products.*").
		Joins("LEFT JOIN reviews ON reviews.product_id = products.id").
		Group("products.id").
		Order("COALESCE(AVG(reviews.rating), 0) DESC").
		Limit(pg.Size).Offset(pg.Offset()).
		Find(&items).Error
	return items, total, err
}

func (r *ProductRepo) MostReviewed(ctx context.Context, pg domain.Page) ([]domain.Product, int64, error) {
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	var items []domain.Product
	err = r.db.WithContext(ctx).Model(&domain.Product{}).
		Select("products.*").
		Joins("LEFT JOIN reviews ON reviews.product_id = products.id").
		Group("products.id").
		Order("COUNT(reviews.id) DESC").
		Limit(pg.Size).Offset(pg.Offset()).
		Find(&items).Error
	return items, total, err
}

func (r *ProductRepo) Recent(ctx context.Context, pg domain.Page) ([]domain.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	pg.SortBy = ""
	return r.list(q, pg, "created_at desc")
}

func (r *ProductRepo) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	var items []domain.Product
	err := r.db.WithContext(ctx).
		Where("quantity < ? AND quantity > 0", threshold).
		Order("quantity asc").
		Find(&items).Error
	return items, err
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.Product{}).Error
	})
}

func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&n).Error
	return n, err
}

func (r *ProductRepo) CountInStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("quantity > 0").Count(&n).Error
	return n, err
}

func (r *ProductRepo) list(q *gorm.DB, pg domain.Page, def string) ([]domain.Product, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []domain.Product
	err := q.Order(pg.OrderClause(def)).Limit(pg.Size).Offset(pg.Offset()).Find(&items).Error
	return items, total, err
}
