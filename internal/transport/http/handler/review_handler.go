package handler

import (
	"github.com/gin-gonic/gin"

	"go-grocery-store/internal/apperr"
	"go-grocery-store/internal/service"
	resp "go-grocery-store/internal/transport/http/response"
)

var reviewSortable = map[string]bool{
	"created_at": true,
	"rating":     true,
}

type ReviewHandler struct {
	svc *service.ReviewService
}

func NewReviewHandler(svc *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var in service.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fail(c, apperr.BadRequest("invalid request body: %v", err))
		return
	}
	rev, err := h.svc.Create(c.Request.Context(), c.Param("id"), c.GetString("userId"), in)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Created(c, "Review created successfully", rev)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	var in service.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fail(c, apperr.BadRequest("invalid request body: %v", err))
		return
	}
	rev, err := h.svc.Update(c.Request.Context(), c.Param("id"), c.GetString("userId"), in)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Review updated successfully", rev)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), c.GetString("userId"), c.GetString("role")); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Review deleted successfully", nil)
}

func (h *ReviewHandler) ListByProduct(c *gin.Context) {
	pg := parsePage(c, reviewSortable, "created_at")
	reviews, total, err := h.svc.ListByProduct(c.Request.Context(), c.Param("id"), pg)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Reviews retrieved successfully", resp.NewPage(reviews, pg.Page, pg.Size, total))
}

func (h *ReviewHandler) Summary(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Rating summary retrieved successfully", sum)
}
