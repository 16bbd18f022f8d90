package domain

import (
	"context"
	"errors"
)

// ErrDuplicate 唯一约束冲突，各仓储实现负责把驱动错误翻译成它
var ErrDuplicate = errors.New("duplicate record")

// Stores 各仓储的汇总入口，事务内外同一套接口
type Stores struct {
	Users    UserRepository
	Products ProductRepository
	Orders   OrderRepository
	Reviews  ReviewRepository
}

// TxManager fn 内的仓储操作在同一事务里执行，返回 error 即整体回滚
type TxManager interface {
	WithinTx(ctx context.Context, fn func(s Stores) error) error
}

// Page 分页 + 排序参数，页码从 0 起，SortBy 由 handler 按白名单收敛后传入
type Page struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

func (p Page) Offset() int {
	if p.Page < 0 {
		return 0
	}
	return p.Page * p.Size
}

// OrderClause 组合成 "col dir" 形式的排序子句
func (p Page) OrderClause(def string) string {
	col := p.SortBy
	if col == "" {
		return def
	}
	dir := "asc"
	if p.SortDir == "desc" {
		dir = "desc"
	}
	return col + " " + dir
}
