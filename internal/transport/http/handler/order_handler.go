package handler

import (
	"github.com/gin-gonic/gin"

	"go-grocery-store/internal/apperr"
	"go-grocery-store/internal/service"
	resp "go-grocery-store/internal/transport/http/response"
)

var orderSortable = map[string]bool{
	"order_date":   true,
	"total_amount": true,
	"status":       true,
}

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) Place(c *gin.Context) {
	var in service.PlaceOrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fail(c, apperr.BadRequest("invalid request body: %v", err))
		return
	}
	o, err := h.svc.Place(c.Request.Context(), c.GetString("userId"), in)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Created(c, "Order placed successfully", o)
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	pg := parsePage(c, orderSortable, "order_date")
	orders, total, err := h.svc.MyOrders(c.Request.Context(), c.GetString("userId"), pg)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Orders retrieved successfully", resp.NewPage(orders, pg.Page, pg.Size, total))
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.svc.Get(c.Request.Context(), c.Param("id"), c.GetString("userId"), c.GetString("role"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Order retrieved successfully", o)
}

func (h *OrderHandler) All(c *gin.Context) {
	pg := parsePage(c, orderSortable, "order_date")
	orders, total, err := h.svc.All(c.Request.Context(), pg)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Orders retrieved successfully", resp.NewPage(orders, pg.Page, pg.Size, total))
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		resp.Fail(c, apperr.BadRequest("status query parameter is required"))
		return
	}
	o, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Order status updated successfully", o)
}

func (h *OrderHandler) Statistics(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context())
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Order statistics retrieved successfully", stats)
}
