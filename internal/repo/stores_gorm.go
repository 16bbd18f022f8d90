package repo

import (
	"context"

	"gorm.io/gorm"

	"go-grocery-store/internal/domain"
)

func NewStores(db *gorm.DB) domain.Stores {
	return domain.Stores{
		Users:    NewUserRepo(db),
		Products: NewProductRepo(db),
		Orders:   NewOrderRepo(db),
		Reviews:  NewReviewRepo(db),
	}
}

type TxManager struct{ db *gorm.DB }

func NewTxManager(db *gorm.DB) *TxManager { return &TxManager{db: db} }

// WithinTx fn 里的仓储全部绑定同一个 gorm 事务，出错整体回滚
func (m *TxManager) WithinTx(ctx context.Context, fn func(s domain.Stores) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStores(tx))
	})
}
