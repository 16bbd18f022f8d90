package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"go-grocery-store/internal/apperr"
	"go-grocery-store/internal/service"
	resp "go-grocery-store/internal/transport/http/response"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fail(c, apperr.BadRequest("invalid request body: %v", err))
		return
	}
	payload, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Created(c, "User registered successfully", payload)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fail(c, apperr.BadRequest("invalid request body: %v", err))
		return
	}
	payload, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Login successful", payload)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	payload, err := h.svc.Refresh(c.Request.Context(), bearerToken(c))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Token refreshed successfully", payload)
}

func (h *AuthHandler) Validate(c *gin.Context) {
	resp.OK(c, "Token validation result", h.svc.Validate(bearerToken(c)))
}

// Logout 无状态 JWT，服务端不存会话，由客户端丢弃 token
func (h *AuthHandler) Logout(c *gin.Context) {
	resp.OK(c, "Logged out successfully", nil)
}

func bearerToken(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}
