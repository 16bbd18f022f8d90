package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-grocery-store/internal/apperr"
	"go-grocery-store/internal/core/cache"
	"go-grocery-store/internal/domain"
	"go-grocery-store/pkg/utils"
)

const productCacheTTL = 5 * time.Minute

// ProductView 商品 + 即时算出的派生字段（评分均值/评论数永不缓存）
type ProductView struct {
	domain.Product
	InStock       bool    `json:"inStock"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int64   `json:"reviewCount"`
}

type ProductInput struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl" binding:"max=500"`
}

type ProductStats struct {
	TotalProducts      int64 `json:"totalProducts"`
	InStockProducts    int64 `json:"inStockProducts"`
	OutOfStockProducts int64 `json:"outOfStockProducts"`
}

type ProductService struct {
	stores domain.Stores
	cache  cache.Store // 可为 nil（未配置 redis 时直查库）
	log    *zap.Logger
}

func NewProductService(stores domain.Stores, c cache.Store, log *zap.Logger) *ProductService {
	return &ProductService{stores: stores, cache: c, log: log}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*ProductView, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	p := &domain.Product{
		ID:          utils.NewID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		ImageURL:    in.ImageURL,
	}
	if err := s.stores.Products.Create(ctx, p); err != nil {
		return nil, apperr.Internal("create product failed", err)
	}
	s.log.Info("product created", zap.String("id", p.ID), zap.String("name", p.Name))
	return s.view(ctx, p)
}

func (s *ProductService) Get(ctx context.Context, id string) (*ProductView, error) {
	p, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

func (s *ProductService) List(ctx context.Context, pg domain.Page) ([]ProductView, int64, error) {
	return s.views(ctx, s.stores.Products.List)(pg)
}

func (s *ProductService) Search(ctx context.Context, name string, pg domain.Page) ([]ProductView, int64, error) {
	items, total, err := s.stores.Products.Search(ctx, name, pg)
	if err != nil {
		return nil, 0, apperr.Internal("search products failed", err)
	}
	return s.toViews(ctx, items, total)
}

func (s *ProductService) InStock(ctx context.Context, pg domain.Page) ([]ProductView, int64, error) {
	return s.views(ctx, s.stores.Products.InStock)(pg)
}

func (s *ProductService) PriceRange(ctx context.Context, min, max decimal.Decimal, pg domain.Page) ([]ProductView, int64, error) {
	if min.IsNegative() || max.LessThan(min) {
		return nil, 0, apperr.BadRequest("Invalid price range")
	}
	items, total, err := s.stores.Products.PriceRange(ctx, min, max, pg)
	if err != nil {
		return nil, 0, apperr.Internal("price range query failed", err)
	}
	return s.toViews(ctx, items, total)
}

func (s *ProductService) TopRated(ctx context.Context, pg domain.Page) ([]ProductView, int64, error) {
	return s.views(ctx, s.stores.Products.TopRated)(pg)
}

func (s *ProductService) MostReviewed(ctx context.Context, pg domain.Page) ([]ProductView, int64, error) {
	return s.views(ctx, s.stores.Products.MostReviewed)(pg)
}

func (s *ProductService) Recent(ctx context.Context, pg domain.Page) ([]ProductView, int64, error) {
	return s.views(ctx, s.stores.Products.Recent)(pg)
}

func (s *ProductService) LowStock(ctx context.Context, threshold int) ([]ProductView, error) {
	if threshold <= 0 {
		threshold = 10
	}
	items, err := s.stores.Products.LowStock(ctx, threshold)
	if err != nil {
		return nil, apperr.Internal("low stock query failed", err)
	}
	views, _, err := s.toViews(ctx, items, 0)
	return views, err
}

func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*ProductView, error) {
	if err := validateProductInput(in); err != nil {
		return nil, err
	}
	p, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Quantity = in.Quantity
	p.ImageURL = in.ImageURL
	if err := s.stores.Products.Update(ctx, p); err != nil {
		return nil, apperr.Internal("update product failed", err)
	}
	s.invalidate(ctx, id)
	return s.view(ctx, p)
}

func (s *ProductService) UpdateStock(ctx context.Context, id string, quantity int) (*ProductView, error) {
	if quantity < 0 {
		return nil, apperr.BadRequest("Quantity cannot be negative")
	}
	p, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Quantity = quantity
	if err := s.stores.Products.Update(ctx, p); err != nil {
		return nil, apperr.Internal("update stock failed", err)
	}
	s.invalidate(ctx, id)
	return s.view(ctx, p)
}

// Delete 有历史订单引用的商品不允许删；评论随商品级联清掉
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if _, err := s.mustFind(ctx, id); err != nil {
		return err
	}
	n, err := s.stores.Orders.CountItemsByProduct(ctx, id)
	if err != nil {
		return apperr.Internal("check order items failed", err)
	}
	if n > 0 {
		return apperr.Conflict("Product is referenced by existing orders and cannot be deleted")
	}
	if err := s.stores.Products.Delete(ctx, id); err != nil {
		return apperr.Internal("delete product failed", err)
	}
	s.invalidate(ctx, id)
	s.log.Info("product deleted", zap.String("id", id))
	return nil
}

func (s *ProductService) Statistics(ctx context.Context) (*ProductStats, error) {
	total, err := s.stores.Products.Count(ctx)
	if err != nil {
		return nil, apperr.Internal("count products failed", err)
	}
	inStock, err := s.stores.Products.CountInStock(ctx)
	if err != nil {
		return nil, apperr.Internal("count in-stock failed", err)
	}
	return &ProductStats{
		TotalProducts:      total,
		InStockProducts:    inStock,
		OutOfStockProducts: total - inStock,
	}, nil
}

/* ---------- helpers ---------- */

func validateProductInput(in ProductInput) error {
	if in.Price.IsNegative() {
		return apperr.BadRequest("Price cannot be negative")
	}
	if in.Quantity < 0 {
		return apperr.BadRequest("Quantity cannot be negative")
	}
	return nil
}

// loadProduct 商品主记录可走 redis 读缓存；派生评分永远现查
func (s *ProductService) loadProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p *domain.Product
	var err error
	if s.cache != nil {
		p, err = cache.GetOrLoadJSON[domain.Product](s.cache, ctx, productKey(id), productCacheTTL,
			func(ctx context.Context) (*domain.Product, error) {
				return s.stores.Products.FindByID(ctx, id)
			})
	} else {
		p, err = s.stores.Products.FindByID(ctx, id)
	}
	if err != nil {
		return nil, apperr.Internal("find product failed", err)
	}
	if p == nil {
		return nil, apperr.NotFound("Product not found with id: %s", id)
	}
	return p, nil
}

func (s *ProductService) mustFind(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.stores.Products.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("find product failed", err)
	}
	if p == nil {
		return nil, apperr.NotFound("Product not found with id: %s", id)
	}
	return p, nil
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, productKey(id))
	}
}

func productKey(id string) string { return "product:" + id }

func (s *ProductService) view(ctx context.Context, p *domain.Product) (*ProductView, error) {
	sum, err := s.stores.Reviews.Summary(ctx, p.ID)
	if err != nil {
		return nil, apperr.Internal("rating summary failed", err)
	}
	return &ProductView{
		Product:       *p,
		InStock:       p.InStock(),
		AverageRating: sum.AverageRating,
		ReviewCount:   sum.ReviewCount,
	}, nil
}

func (s *ProductService) toViews(ctx context.Context, items []domain.Product, total int64) ([]ProductView, int64, error) {
	views := make([]ProductView, 0, len(items))
	for i := range items {
		v, err := s.view(ctx, &items[i])
		if err != nil {
			return nil, 0, err
		}
		views = append(views, *v)
	}
	return views, total, nil
}

func (s *ProductService) views(ctx context.Context, q func(context.Context, domain.Page) ([]domain.Product, int64, error)) func(domain.Page) ([]ProductView, int64, error) {
	return func(pg domain.Page) ([]ProductView, int64, error) {
		items, total, err := q(ctx, pg)
		if err != nil {
			return nil, 0, apperr.Internal("list products failed", err)
		}
		return s.toViews(ctx, items, total)
	}
}
