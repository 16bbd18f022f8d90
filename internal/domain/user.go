package domain

import (
	"context"
	"time"
)

const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

func ValidRole(r string) bool { return r == RoleCustomer || r == RoleAdmin }

type User struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	FullName      string    `gorm:"size:100;not null" json:"fullName"`
	Email         string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash  string    `gorm:"size:100;not null" json:"-"`
	Role          string    `gorm:"size:16;not null;default:CUSTOMER" json:"role"`
	Address       string    `gorm:"size:500" json:"address"`
	ContactNumber string    `gorm:"size:20" json:"contactNumber"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, p Page) ([]User, int64, error)
	ListByRole(ctx context.Context, role string, p Page) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	// Delete 硬删，连带该用户的订单（含明细）与评论
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}
