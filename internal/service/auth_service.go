package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"go-grocery-store/internal/apperr"
	"go-grocery-store/internal/core/auth"
	"go-grocery-store/internal/domain"
	"go-grocery-store/pkg/utils"
)

// TokenPayload 登录/注册/刷新统一返回的凭证体
type TokenPayload struct {
	Token     string `json:"token"`
	Type      string `json:"type"`
	ID        string `json:"id"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ExpiresIn int64  `json:"expiresIn"`
}

type RegisterInput struct {
	FullName        string `json:"fullName" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Address         string `json:"address" binding:"max=500"`
	ContactNumber   string `json:"contactNumber" binding:"max=20"`
}

type AuthService struct {
	stores domain.Stores
	jwt    *auth.JWTer
	log    *zap.Logger
}

func NewAuthService(stores domain.Stores, jwt *auth.JWTer, log *zap.Logger) *AuthService {
	return &AuthService{stores: stores, jwt: jwt, log: log}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*TokenPayload, error) {
	if in.Password != in.ConfirmPassword {
		return nil, apperr.BadRequest("Passwords do not match")
	}
	email := strings.TrimSpace(in.Email)
	exists, err := s.stores.Users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("check email failed", err)
	}
	if exists {
		return nil, apperr.BadRequest("Email is already in use")
	}

	u := &domain.User{
		ID:            utils.NewID(),
		FullName:      strings.TrimSpace(in.FullName),
		Email:         email,
		PasswordHash:  utils.HashPassword(in.Password),
		Role:          domain.RoleCustomer,
		Address:       in.Address,
		ContactNumber: in.ContactNumber,
	}
	if err := s.stores.Users.Create(ctx, u); err != nil {
		// 预检和插入之间被并发注册抢先，唯一索引兜底
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperr.BadRequest("Email is already in use")
		}
		return nil, apperr.Internal("create user failed", err)
	}
	s.log.Info("user registered", zap.String("email", u.Email))
	return s.payload(u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPayload, error) {
	u, err := s.stores.Users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, apperr.Internal("find user failed", err)
	}
	if u == nil || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid email or password")
	}
	s.log.Info("user authenticated", zap.String("email", u.Email))
	return s.payload(u)
}

// Refresh 60s leeway 内的 token 也接受，换发新 token
func (s *AuthService) Refresh(ctx context.Context, token string) (*TokenPayload, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	u, err := s.stores.Users.FindByID(ctx, claims.UID)
	if err != nil {
		return nil, apperr.Internal("find user failed", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	return s.payload(u)
}

func (s *AuthService) Validate(token string) bool {
	_, err := s.jwt.Parse(token)
	return err == nil
}

func (s *AuthService) payload(u *domain.User) (*TokenPayload, error) {
	tok, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return nil, apperr.Internal("issue token failed", err)
	}
	return &TokenPayload{
		Token:     tok,
		Type:      "Bearer",
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      u.Role,
		ExpiresIn: s.jwt.ExpiresInMillis(),
	}, nil
}
