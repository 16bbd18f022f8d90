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

// 预计送达时间：下单后 +3 天
const deliveryOffset = 72 * time.Hour

type OrderItemInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderInput struct {
	OrderItems      []OrderItemInput `json:"orderItems" binding:"required"`
	DeliveryAddress string           `json:"deliveryAddress" binding:"required"`
	ContactNumber   string           `json:"contactNumber" binding:"required,max=20"`
	OrderNotes      string           `json:"orderNotes" binding:"max=500"`
}

type OrderService struct {
	stores domain.Stores
	tx     domain.TxManager
	cache  cache.Store // 可为 nil
	log    *zap.Logger
}

func NewOrderService(stores domain.Stores, tx domain.TxManager, c cache.Store, log *zap.Logger) *OrderService {
	return &OrderService{stores: stores, tx: tx, cache: c, log: log}
}

// Place 下单：库存检查、单价快照、扣减、落单在同一事务里，
// 任何一项失败整单回滚，库存不留半截扣减。
// 商品行加 FOR UPDATE 锁，并发下不会超卖。
func (s *OrderService) Place(ctx context.Context, customerID string, in PlaceOrderInput) (*domain.Order, error) {
	customer, err := s.stores.Users.FindByID(ctx, customerID)
	if err != nil {
		return nil, apperr.Internal("find customer failed", err)
	}
	if customer == nil {
		return nil, apperr.NotFound("Customer not found with id: %s", customerID)
	}
	if len(in.OrderItems) == 0 {
		return nil, apperr.BadRequest("Order must contain at least one item")
	}
	for _, it := range in.OrderItems {
		if it.Quantity < 1 {
			return nil, apperr.BadRequest("Item quantity must be at least 1")
		}
	}

	var order *domain.Order
	err = s.tx.WithinTx(ctx, func(st domain.Stores) error {
		now := time.Now()
		total := decimal.Zero
		items := make([]domain.OrderItem, 0, len(in.OrderItems))
		orderID := utils.NewID()

		for _, it := range in.OrderItems {
			p, err := st.Products.LockByID(ctx, it.ProductID)
			if err != nil {
				return apperr.Internal("lock product failed", err)
			}
			if p == nil {
				return apperr.NotFound("Product not found with id: %s", it.ProductID)
			}
			if p.Quantity < it.Quantity {
				return apperr.BadRequest(
					"Insufficient stock for product: %s. Available: %d, Requested: %d",
					p.Name, p.Quantity, it.Quantity)
			}

			items = append(items, domain.OrderItem{
				ID:          utils.NewID(),
				OrderID:     orderID,
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				Price:       p.Price, // 单价快照，后续改价不影响已下订单
			})
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))

			p.Quantity -= it.Quantity
			if err := st.Products.Update(ctx, p); err != nil {
				return apperr.Internal("decrement stock failed", err)
			}
		}

		order = &domain.Order{
			ID:                    orderID,
			UserID:                customerID,
			Status:                domain.OrderPending,
			PaymentMethod:         domain.PaymentCashOnDelivery, // 目前只收货到付款
			TotalAmount:           total,
			DeliveryAddress:       in.DeliveryAddress,
			ContactNumber:         in.ContactNumber,
			OrderNotes:            in.OrderNotes,
			OrderDate:             now,
			EstimatedDeliveryDate: now.Add(deliveryOffset),
			Items:                 items,
		}
		return st.Orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	// 库存扣掉了，商品缓存一并失效，公开读路径立刻看到新数量
	if s.cache != nil {
		keys := make([]string, 0, len(order.Items))
		for _, it := range order.Items {
			keys = append(keys, productKey(it.ProductID))
		}
		s.cache.Invalidate(ctx, keys...)
	}
	s.log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("customer_id", customerID),
		zap.String("total", order.TotalAmount.String()),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

func (s *OrderService) MyOrders(ctx context.Context, userID string, pg domain.Page) ([]domain.Order, int64, error) {
	return s.stores.Orders.ListByUser(ctx, userID, pg)
}

// Get 本人或管理员可见
func (s *OrderService) Get(ctx context.Context, orderID, requesterID, requesterRole string) (*domain.Order, error) {
	o, err := s.stores.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Internal("find order failed", err)
	}
	if o == nil {
		return nil, apperr.NotFound("Order not found with id: %s", orderID)
	}
	if requesterRole != domain.RoleAdmin && o.UserID != requesterID {
		return nil, apperr.Forbidden("You can only view your own orders")
	}
	return o, nil
}

func (s *OrderService) All(ctx context.Context, pg domain.Page) ([]domain.Order, int64, error) {
	return s.stores.Orders.List(ctx, pg)
}

// UpdateStatus 状态机收口：终态不再流转，COMPLETED 记实际送达时间。
// 取消不回补库存，与来源系统行为保持一致。
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, statusStr string) (*domain.Order, error) {
	next, ok := domain.ParseOrderStatus(statusStr)
	if !ok {
		return nil, apperr.BadRequest("Invalid order status: %s", statusStr)
	}
	o, err := s.stores.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Internal("find order failed", err)
	}
	if o == nil {
		return nil, apperr.NotFound("Order not found with id: %s", orderID)
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, apperr.Conflict("Cannot transition order from %s to %s", o.Status, next)
	}
	o.Status = next
	if next == domain.OrderCompleted {
		now := time.Now()
		o.ActualDeliveryDate = &now
	}
	if err := s.stores.Orders.Update(ctx, o); err != nil {
		return nil, apperr.Internal("update order failed", err)
	}
	s.log.Info("order status updated",
		zap.String("order_id", o.ID),
		zap.String("status", string(next)),
	)
	return o, nil
}

func (s *OrderService) Statistics(ctx context.Context) (*domain.OrderStats, error) {
	stats := &domain.OrderStats{}
	var err error
	if stats.TotalOrders, err = s.stores.Orders.Count(ctx); err != nil {
		return nil, apperr.Internal("count orders failed", err)
	}
	counts := []struct {
		status domain.OrderStatus
		dst    *int64
	}{
		{domain.OrderPending, &stats.PendingOrders},
		{domain.OrderProcessing, &stats.ProcessingOrders},
		{domain.OrderCompleted, &stats.CompletedOrders},
		{domain.OrderCancelled, &stats.CancelledOrders},
	}
	for _, c := range counts {
		if *c.dst, err = s.stores.Orders.CountByStatus(ctx, c.status); err != nil {
			return nil, apperr.Internal("count orders failed", err)
		}
	}
	// 空结果按 0 计
	if stats.TotalRevenue, err = s.stores.Orders.TotalRevenue(ctx); err != nil {
		return nil, apperr.Internal("total revenue failed", err)
	}
	return stats, nil
}
