package handler

import (
	"github.com/gin-gonic/gin"

	"go-grocery-store/internal/apperr"
	"go-grocery-store/internal/domain"
	"go-grocery-store/internal/service"
	resp "go-grocery-store/internal/transport/http/response"
)

var userSortable = map[string]bool{
	"created_at": true,
	"full_name":  true,
	"email":      true,
}

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// userView 对外不暴露密码哈希
type userView struct {
	ID            string `json:"id"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Address       string `json:"address"`
	ContactNumber string `json:"contactNumber"`
}

func toUserView(u *domain.User) userView {
	return userView{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Role:          u.Role,
		Address:       u.Address,
		ContactNumber: u.ContactNumber,
	}
}

func toUserViews(users []domain.User) []userView {
	out := make([]userView, 0, len(users))
	for i := range users {
		out = append(out, toUserView(&users[i]))
	}
	return out
}

func (h *UserHandler) Profile(c *gin.Context) {
	u, err := h.svc.Profile(c.Request.Context(), c.GetString("userId"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Profile retrieved successfully", toUserView(u))
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var in service.UpdateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fail(c, apperr.BadRequest("invalid request body: %v", err))
		return
	}
	u, err := h.svc.UpdateProfile(c.Request.Context(), c.GetString("userId"), in)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Profile updated successfully", toUserView(u))
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var in service.ChangePasswordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Fail(c, apperr.BadRequest("invalid request body: %v", err))
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), c.GetString("userId"), in); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Password changed successfully", nil)
}

func (h *UserHandler) List(c *gin.Context) {
	pg := parsePage(c, userSortable, "created_at")
	users, total, err := h.svc.List(c.Request.Context(), pg)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Users retrieved successfully", resp.NewPage(toUserViews(users), pg.Page, pg.Size, total))
}

func (h *UserHandler) GetByID(c *gin.Context) {
	u, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "User retrieved successfully", toUserView(u))
}

func (h *UserHandler) GetByEmail(c *gin.Context) {
	u, err := h.svc.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "User retrieved successfully", toUserView(u))
}

func (h *UserHandler) ListByRole(c *gin.Context) {
	pg := parsePage(c, userSortable, "created_at")
	users, total, err := h.svc.ListByRole(c.Request.Context(), c.Param("role"), pg)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "Users retrieved successfully", resp.NewPage(toUserViews(users), pg.Page, pg.Size, total))
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	role := c.Query("role")
	if role == "" {
		resp.Fail(c, apperr.BadRequest("role query parameter is required"))
		return
	}
	u, err := h.svc.UpdateRole(c.Request.Context(), c.Param("id"), role)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "User role updated successfully", toUserView(u))
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "User deleted successfully", nil)
}

func (h *UserHandler) Statistics(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context())
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, "User statistics retrieved successfully", stats)
}
