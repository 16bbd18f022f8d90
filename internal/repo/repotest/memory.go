// Package repotest 提供纯内存的仓储实现，服务层/路由层测试不用起数据库。
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"go-grocery-store/internal/domain"
)

type Mem struct {
	mu       sync.Mutex
	users    map[string]domain.User
	products map[string]domain.Product
	orders   map[string]domain.Order
	reviews  map[string]domain.Review
}

func New() *Mem {
	return &Mem{
		users:    map[string]domain.User{},
		products: map[string]domain.Product{},
		orders:   map[string]domain.Order{},
		reviews:  map[string]domain.Review{},
	}
}

func (m *Mem) Stores() domain.Stores {
	return domain.Stores{
		Users:    &userStore{m},
		Products: &productStore{m},
		Orders:   &orderStore{m},
		Reviews:  &reviewStore{m},
	}
}

// WithinTx 快照所有表，fn 报错即恢复快照，模拟整体回滚
func (m *Mem) WithinTx(_ context.Context, fn func(s domain.Stores) error) error {
	m.mu.Lock()
	users := cloneMap(m.users)
	products := cloneMap(m.products)
	orders := cloneOrders(m.orders)
	reviews := cloneMap(m.reviews)
	m.mu.Unlock()

	if err := fn(m.Stores()); err != nil {
		m.mu.Lock()
		m.users, m.products, m.orders, m.reviews = users, products, orders, reviews
		m.mu.Unlock()
		return err
	}
	return nil
}

// SeedProduct 测试便捷入口
func (m *Mem) SeedProduct(p domain.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *Mem) SeedUser(u domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func cloneMap[T any](src map[string]T) map[string]T {
	dst := make(map[string]T, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneOrders(src map[string]domain.Order) map[string]domain.Order {
	dst := make(map[string]domain.Order, len(src))
	for k, v := range src {
		items := make([]domain.OrderItem, len(v.Items))
		copy(items, v.Items)
		v.Items = items
		dst[k] = v
	}
	return dst
}

func paginate[T any](items []T, pg domain.Page) []T {
	if pg.Size <= 0 {
		return items
	}
	start := pg.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + pg.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

/* ---------- users ---------- */

type userStore struct{ m *Mem }

func (s *userStore) Create(_ context.Context, u *domain.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, ex := range s.m.users {
		if ex.Email == u.Email && ex.ID != u.ID {
			return domain.ErrDuplicate
		}
	}
	s.m.users[u.ID] = *u
	return nil
}

func (s *userStore) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if u, ok := s.m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *userStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *userStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := s.FindByEmail(ctx, email)
	return u != nil, err
}

func (s *userStore) List(_ context.Context, pg domain.Page) ([]domain.User, int64, error) {
	return s.listWhere(pg, func(domain.User) bool { return true })
}

func (s *userStore) ListByRole(_ context.Context, role string, pg domain.Page) ([]domain.User, int64, error) {
	return s.listWhere(pg, func(u domain.User) bool { return u.Role == role })
}

func (s *userStore) listWhere(pg domain.Page, keep func(domain.User) bool) ([]domain.User, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var all []domain.User
	for _, u := range s.m.users {
		if keep(u) {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, pg), int64(len(all)), nil
}

func (s *userStore) Update(_ context.Context, u *domain.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.users[u.ID] = *u
	return nil
}

func (s *userStore) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.users, id)
	for oid, o := range s.m.orders {
		if o.UserID == id {
			delete(s.m.orders, oid)
		}
	}
	for rid, r := range s.m.reviews {
		if r.UserID == id {
			delete(s.m.reviews, rid)
		}
	}
	return nil
}

func (s *userStore) Count(_ context.Context) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return int64(len(s.m.users)), nil
}

func (s *userStore) CountByRole(_ context.Context, role string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var n int64
	for _, u := range s.m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

/* ---------- products ---------- */

type productStore struct{ m *Mem }

func (s *productStore) Create(_ context.Context, p *domain.Product) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.products[p.ID] = *p
	return nil
}

func (s *productStore) FindByID(_ context.Context, id string) (*domain.Product, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if p, ok := s.m.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (s *productStore) LockByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.FindByID(ctx, id)
}

func (s *productStore) List(_ context.Context, pg domain.Page) ([]domain.Product, int64, error) {
	return s.listWhere(pg, func(domain.Product) bool { return true })
}

func (s *productStore) Search(_ context.Context, name string, pg domain.Page) ([]domain.Product, int64, error) {
	needle := strings.ToLower(name)
	return s.listWhere(pg, func(p domain.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	})
}

func (s *productStore) InStock(_ context.Context, pg domain.Page) ([]domain.Product, int64, error) {
	return s.listWhere(pg, func(p domain.Product) bool { return p.Quantity > 0 })
}

func (s *productStore) PriceRange(_ context.Context, min, max decimal.Decimal, pg domain.Page) ([]domain.Product, int64, error) {
	return s.listWhere(pg, func(p domain.Product) bool {
		return p.Price.GreaterThanOrEqual(min) && p.Price.LessThanOrEqual(max)
	})
}

func (s *productStore) TopRated(_ context.Context, pg domain.Page) ([]domain.Product, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	all := s.allLocked()
	avg := func(pid string) float64 {
		var sum, n float64
		for _, r := range s.m.reviews {
			if r.ProductID == pid {
				sum += float64(r.Rating)
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return sum / n
	}
	sort.Slice(all, func(i, j int) bool { return avg(all[i].ID) > avg(all[j].ID) })
	return paginate(all, pg), int64(len(all)), nil
}

func (s *productStore) MostReviewed(_ context.Context, pg domain.Page) ([]domain.Product, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	all := s.allLocked()
	cnt := func(pid string) int {
		n := 0
		for _, r := range s.m.reviews {
			if r.ProductID == pid {
				n++
			}
		}
		return n
	}
	sort.Slice(all, func(i, j int) bool { return cnt(all[i].ID) > cnt(all[j].ID) })
	return paginate(all, pg), int64(len(all)), nil
}

func (s *productStore) Recent(ctx context.Context, pg domain.Page) ([]domain.Product, int64, error) {
	pg.SortBy = ""
	return s.List(ctx, pg)
}

func (s *productStore) LowStock(_ context.Context, threshold int) ([]domain.Product, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []domain.Product
	for _, p := range s.m.products {
		if p.Quantity > 0 && p.Quantity < threshold {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

func (s *productStore) Update(_ context.Context, p *domain.Product) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.products[p.ID] = *p
	return nil
}

func (s *productStore) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.products, id)
	for rid, r := range s.m.reviews {
		if r.ProductID == id {
			delete(s.m.reviews, rid)
		}
	}
	return nil
}

func (s *productStore) Count(_ context.Context) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return int64(len(s.m.products)), nil
}

func (s *productStore) CountInStock(_ context.Context) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var n int64
	for _, p := range s.m.products {
		if p.Quantity > 0 {
			n++
		}
	}
	return n, nil
}

func (s *productStore) allLocked() []domain.Product {
	all := make([]domain.Product, 0, len(s.m.products))
	for _, p := range s.m.products {
		all = append(all, p)
	}
	return all
}

func (s *productStore) listWhere(pg domain.Page, keep func(domain.Product) bool) ([]domain.Product, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var all []domain.Product
	for _, p := range s.m.products {
		if keep(p) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, pg), int64(len(all)), nil
}

/* ---------- orders ---------- */

type orderStore struct{ m *Mem }

func (s *orderStore) Create(_ context.Context, o *domain.Order) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	s.m.orders[o.ID] = cp
	return nil
}

func (s *orderStore) FindByID(_ context.Context, id string) (*domain.Order, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if o, ok := s.m.orders[id]; ok {
		o.Items = append([]domain.OrderItem(nil), o.Items...)
		return &o, nil
	}
	return nil, nil
}

func (s *orderStore) ListByUser(_ context.Context, userID string, pg domain.Page) ([]domain.Order, int64, error) {
	return s.listWhere(pg, func(o domain.Order) bool { return o.UserID == userID })
}

func (s *orderStore) List(_ context.Context, pg domain.Page) ([]domain.Order, int64, error) {
	return s.listWhere(pg, func(domain.Order) bool { return true })
}

func (s *orderStore) listWhere(pg domain.Page, keep func(domain.Order) bool) ([]domain.Order, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var all []domain.Order
	for _, o := range s.m.orders {
		if keep(o) {
			all = append(all, o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OrderDate.After(all[j].OrderDate) })
	return paginate(all, pg), int64(len(all)), nil
}

func (s *orderStore) Update(_ context.Context, o *domain.Order) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if prev, ok := s.m.orders[o.ID]; ok {
		cp := *o
		cp.Items = prev.Items
		s.m.orders[o.ID] = cp
	}
	return nil
}

func (s *orderStore) Count(_ context.Context) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return int64(len(s.m.orders)), nil
}

func (s *orderStore) CountByStatus(_ context.Context, st domain.OrderStatus) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var n int64
	for _, o := range s.m.orders {
		if o.Status == st {
			n++
		}
	}
	return n, nil
}

func (s *orderStore) TotalRevenue(_ context.Context) (decimal.Decimal, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	total := decimal.Zero
	for _, o := range s.m.orders {
		if o.Status == domain.OrderCompleted {
			total = total.Add(o.TotalAmount)
		}
	}
	return total, nil
}

func (s *orderStore) CountItemsByProduct(_ context.Context, productID string) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var n int64
	for _, o := range s.m.orders {
		for _, it := range o.Items {
			if it.ProductID == productID {
				n++
			}
		}
	}
	return n, nil
}

/* ---------- reviews ---------- */

type reviewStore struct{ m *Mem }

func (s *reviewStore) Create(_ context.Context, r *domain.Review) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, ex := range s.m.reviews {
		if ex.ProductID == r.ProductID && ex.UserID == r.UserID && ex.ID != r.ID {
			return domain.ErrDuplicate
		}
	}
	s.m.reviews[r.ID] = *r
	return nil
}

func (s *reviewStore) FindByID(_ context.Context, id string) (*domain.Review, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if r, ok := s.m.reviews[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (s *reviewStore) FindByProductAndUser(_ context.Context, productID, userID string) (*domain.Review, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, r := range s.m.reviews {
		if r.ProductID == productID && r.UserID == userID {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (s *reviewStore) ListByProduct(_ context.Context, productID string, pg domain.Page) ([]domain.Review, int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var all []domain.Review
	for _, r := range s.m.reviews {
		if r.ProductID == productID {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return paginate(all, pg), int64(len(all)), nil
}

func (s *reviewStore) Update(_ context.Context, r *domain.Review) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.reviews[r.ID] = *r
	return nil
}

func (s *reviewStore) Delete(_ context.Context, id string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.reviews, id)
	return nil
}

func (s *reviewStore) Summary(_ context.Context, productID string) (*domain.RatingSummary, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	dist := map[int]int64{}
	var sum float64
	var n int64
	for _, r := range s.m.reviews {
		if r.ProductID == productID {
			dist[r.Rating]++
			sum += float64(r.Rating)
			n++
		}
	}
	avg := 0.0
	if n > 0 {
		avg = sum / float64(n)
	}
	return &domain.RatingSummary{AverageRating: avg, ReviewCount: n, Distribution: dist}, nil
}
