package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderPending, OrderProcessing, OrderCompleted, OrderCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// 支付方式；下单固定货到付款，其余值留给前端展示
const (
	PaymentCashOnDelivery = "CASH_ON_DELIVERY"
	PaymentOnline         = "ONLINE_PAYMENT"
	PaymentCard           = "CARD_PAYMENT"
)

func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransitionTo 订单状态机：PENDING → PROCESSING → COMPLETED，
// CANCELLED 只能从 PENDING/PROCESSING 进入，终态不再流转
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderProcessing || next == OrderCancelled
	case OrderProcessing:
		return next == OrderCompleted || next == OrderCancelled
	}
	return false
}

type Order struct {
	ID                    string          `gorm:"primaryKey;size:36" json:"id"`
	UserID                string          `gorm:"size:36;not null;index" json:"customerId"`
	Status                OrderStatus     `gorm:"size:16;not null" json:"status"`
	PaymentMethod         string          `gorm:"size:32;not null;default:CASH_ON_DELIVERY" json:"paymentMethod"`
	TotalAmount           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	DeliveryAddress       string          `gorm:"type:text;not null" json:"deliveryAddress"`
	ContactNumber         string          `gorm:"size:20" json:"contactNumber"`
	OrderNotes            string          `gorm:"size:500" json:"orderNotes"`
	OrderDate             time.Time       `gorm:"not null" json:"orderDate"`
	EstimatedDeliveryDate time.Time       `json:"estimatedDeliveryDate"`
	ActualDeliveryDate    *time.Time      `json:"actualDeliveryDate"`
	Items                 []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"orderItems"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

func (Order) TableName() string { return "orders" }

// OrderItem 下单时落库，单价为当时快照，之后不可变
type OrderItem struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	OrderID     string          `gorm:"size:36;not null;index" json:"orderId"`
	ProductID   string          `gorm:"size:36;not null;index" json:"productId"`
	ProductName string          `gorm:"size:100;not null" json:"productName"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type OrderStats struct {
	TotalOrders      int64           `json:"totalOrders"`
	PendingOrders    int64           `json:"pendingOrders"`
	ProcessingOrders int64           `json:"processingOrders"`
	CompletedOrders  int64           `json:"completedOrders"`
	CancelledOrders  int64           `json:"cancelledOrders"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
}

type OrderRepository interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string, pg Page) ([]Order, int64, error)
	List(ctx context.Context, pg Page) ([]Order, int64, error)
	Update(ctx context.Context, o *Order) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, s OrderStatus) (int64, error)
	// TotalRevenue 已完成订单金额合计，空结果按 0 计
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	CountItemsByProduct(ctx context.Context, productID string) (int64, error)
}
