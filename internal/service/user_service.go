package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"go-grocery-store/internal/apperr"
	"go-grocery-store/internal/domain"
	"go-grocery-store/pkg/utils"
)

type UpdateProfileInput struct {
	FullName      string `json:"fullName" binding:"required,max=100"`
	Address       string `json:"address" binding:"max=500"`
	ContactNumber string `json:"contactNumber" binding:"max=20"`
}

type ChangePasswordInput struct {
	CurrentPassword    string `json:"currentPassword" binding:"required"`
	NewPassword        string `json:"newPassword" binding:"required,min=6"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required"`
}

type UserStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalCustomers int64 `json:"totalCustomers"`
	TotalAdmins    int64 `json:"totalAdmins"`
}

type UserService struct {
	stores domain.Stores
	log    *zap.Logger
}

func NewUserService(stores domain.Stores, log *zap.Logger) *UserService {
	return &UserService{stores: stores, log: log}
}

func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.mustFind(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error) {
	u, err := s.mustFind(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.FullName = strings.TrimSpace(in.FullName)
	u.Address = in.Address
	u.ContactNumber = in.ContactNumber
	if err := s.stores.Users.Update(ctx, u); err != nil {
		return nil, apperr.Internal("update profile failed", err)
	}
	s.log.Info("profile updated", zap.String("email", u.Email))
	return u, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, in ChangePasswordInput) error {
	u, err := s.mustFind(ctx, userID)
	if err != nil {
		return err
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return apperr.BadRequest("New passwords do not match")
	}
	if !utils.CheckPassword(in.CurrentPassword, u.PasswordHash) {
		return apperr.BadRequest("Current password is incorrect")
	}
	u.PasswordHash = utils.HashPassword(in.NewPassword)
	if err := s.stores.Users.Update(ctx, u); err != nil {
		return apperr.Internal("change password failed", err)
	}
	s.log.Info("password changed", zap.String("email", u.Email))
	return nil
}

func (s *UserService) List(ctx context.Context, pg domain.Page) ([]domain.User, int64, error) {
	return s.stores.Users.List(ctx, pg)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.mustFind(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := s.stores.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("find user failed", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found with email: %s", email)
	}
	return u, nil
}

func (s *UserService) ListByRole(ctx context.Context, role string, pg domain.Page) ([]domain.User, int64, error) {
	role = strings.ToUpper(role)
	if !domain.ValidRole(role) {
		return nil, 0, apperr.BadRequest("Invalid role: %s", role)
	}
	return s.stores.Users.ListByRole(ctx, role, pg)
}

func (s *UserService) UpdateRole(ctx context.Context, id, role string) (*domain.User, error) {
	role = strings.ToUpper(role)
	if !domain.ValidRole(role) {
		return nil, apperr.BadRequest("Invalid role: %s", role)
	}
	u, err := s.mustFind(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("role updated",
		zap.String("email", u.Email),
		zap.String("from", u.Role),
		zap.String("to", role),
	)
	u.Role = role
	if err := s.stores.Users.Update(ctx, u); err != nil {
		return nil, apperr.Internal("update role failed", err)
	}
	return u, nil
}

// Delete 管理员硬删用户，连带其订单与评论
func (s *UserService) Delete(ctx context.Context, id string) error {
	u, err := s.mustFind(ctx, id)
	if err != nil {
		return err
	}
	if err := s.stores.Users.Delete(ctx, id); err != nil {
		return apperr.Internal("delete user failed", err)
	}
	s.log.Info("user deleted", zap.String("email", u.Email))
	return nil
}

func (s *UserService) Statistics(ctx context.Context) (*UserStats, error) {
	total, err := s.stores.Users.Count(ctx)
	if err != nil {
		return nil, apperr.Internal("count users failed", err)
	}
	customers, err := s.stores.Users.CountByRole(ctx, domain.RoleCustomer)
	if err != nil {
		return nil, apperr.Internal("count customers failed", err)
	}
	admins, err := s.stores.Users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, apperr.Internal("count admins failed", err)
	}
	return &UserStats{TotalUsers: total, TotalCustomers: customers, TotalAdmins: admins}, nil
}

func (s *UserService) mustFind(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.stores.Users.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("find user failed", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found with id: %s", id)
	}
	return u, nil
}
