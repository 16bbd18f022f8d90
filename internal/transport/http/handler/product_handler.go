package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"go-grocery-store/internal/apperr"
	"go-grocery-store/internal/domain"
	"go-grocery-store/internal/service"
	resp "go-grocery-store/internal/transport/http/response"
)

var productSortable = map[string]bool{
	"created_at": true,
	"name":       true,
	"price":      true,
	"quantity":   true,
}

type ProductHandler struct {
	svc *service.ProductService
}

func NewProductHandler(svc *service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fail(c, apperr.BadRequest("invalid request body: %v", err))
		return
	}
	v, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Created(c, "Product created successfully", v)
}

func (h *ProductHandler) Get(c *gin.Context) {
	v, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Product retrieved successfully", v)
}

func (h *ProductHandler) List(c *gin.Context) {
	h.paged(c, h.svc.List)
}

func (h *ProductHandler) Search(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		resp.Fail(c, apperr.BadRequest("name query parameter is required"))
		return
	}
	pg := parsePage(c, productSortable, "created_at")
	items, total, err := h.svc.Search(c.Request.Context(), name, pg)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Products retrieved successfully", resp.NewPage(items, pg.Page, pg.Size, total))
}

func (h *ProductHandler) InStock(c *gin.Context) {
	h.paged(c, h.svc.InStock)
}

func (h *ProductHandler) PriceRange(c *gin.Context) {
	min, err1 := decimal.NewFromString(c.DefaultQuery("minPrice", "0"))
	max, err2 := decimal.NewFromString(c.Query("maxPrice"))
	if err1 != nil || err2 != nil {
		resp.Fail(c, apperr.BadRequest("minPrice and maxPrice must be valid numbers"))
		return
	}
	pg := parsePage(c, productSortable, "price")
	items, total, err := h.svc.PriceRange(c.Request.Context(), min, max, pg)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Products retrieved successfully", resp.NewPage(items, pg.Page, pg.Size, total))
}

func (h *ProductHandler) TopRated(c *gin.Context) {
	h.paged(c, h.svc.TopRated)
}

func (h *ProductHandler) MostReviewed(c *gin.Context) {
	h.paged(c, h.svc.MostReviewed)
}

func (h *ProductHandler) Recent(c *gin.Context) {
	h.paged(c, h.svc.Recent)
}

func (h *ProductHandler) LowStock(c *gin.Context) {
	threshold, _ := strconv.Atoi(c.DefaultQuery("threshold", "10"))
	items, err := h.svc.LowStock(c.Request.Context(), threshold)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Low stock products retrieved successfully", items)
}

func (h *ProductHandler) Update(c *gin.Context) {
	var in service.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fail(c, apperr.BadRequest("invalid request body: %v", err))
		return
	}
	v, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Product updated successfully", v)
}

func (h *ProductHandler) UpdateStock(c *gin.Context) {
	quantity, err := strconv.Atoi(c.Query("quantity"))
	if err != nil {
		resp.Fail(c, apperr.BadRequest("quantity query parameter must be an integer"))
		return
	}
	v, err := h.svc.UpdateStock(c.Request.Context(), c.Param("id"), quantity)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Product stock updated successfully", v)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Product deleted successfully", nil)
}

func (h *ProductHandler) Statistics(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context())
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Product statistics retrieved successfully", stats)
}

func (h *ProductHandler) paged(c *gin.Context, q func(ctx context.Context, pg domain.Page) ([]service.ProductView, int64, error)) {
	pg := parsePage(c, productSortable, "created_at")
	items, total, err := q(c.Request.Context(), pg)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Products retrieved successfully", resp.NewPage(items, pg.Page, pg.Size, total))
}
