package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-grocery-store/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrDuplicate
	}
	return err
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *UserRepo) List(ctx context.Context, p domain.Page) ([]domain.User, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&domain.User{}), p)
}

func (r *UserRepo) ListByRole(ctx context.Context, role string, p domain.Page) ([]domain.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", role)
	return r.list(ctx, q, p)
}

func (r *UserRepo) list(_ context.Context, q *gorm.DB, p domain.Page) ([]domain.User, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	err := q.Order(p.OrderClause("created_at desc")).
		Limit(p.Size).Offset(p.Offset()).Find(&users).Error
	return users, total, err
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

// Delete 显式事务里连带清掉订单明细、订单、评论，最后删用户
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderIDs := tx.Model(&domain.Order{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("order_id IN (?)", orderIDs).Delete(&domain.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Order{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.User{}).Error
	})
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}

func (r *UserRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", role).Count(&n).Error
	return n, err
}
