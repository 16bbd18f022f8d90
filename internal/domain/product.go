package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	Name        string          `gorm:"size:100;not null;index" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity    int             `gorm:"not null;default:0" json:"quantity"`
	ImageURL    string          `gorm:"size:500" json:"imageUrl"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

func (p *Product) InStock() bool { return p.Quantity > 0 }

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	// LockByID 行锁读（SELECT ... FOR UPDATE），只在事务内调用
	LockByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, pg Page) ([]Product, int64, error)
	Search(ctx context.Context, name string, pg Page) ([]Product, int64, error)
	InStock(ctx context.Context, pg Page) ([]Product, int64, error)
	PriceRange(ctx context.Context, min, max decimal.Decimal, pg Page) ([]Product, int64, error)
	TopRated(ctx context.Context, pg Page) ([]Product, int64, error)
	MostReviewed(ctx context.Context, pg Page) ([]Product, int64, error)
	Recent(ctx context.Context, pg Page) ([]Product, int64, error)
	LowStock(ctx context.Context, threshold int) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountInStock(ctx context.Context) (int64, error)
}
