package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"go-grocery-store/internal/domain"
)

const maxPageSize = 100

// parsePage 统一解析 page/size/sortBy/sortDir 查询参数，
// 排序字段走白名单，防止拼进任意列名
func parsePage(c *gin.Context, sortable map[string]bool, defaultSort string) domain.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = 10
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	sortBy := c.DefaultQuery("sortBy", defaultSort)
	if !sortable[sortBy] {
		sortBy = defaultSort
	}
	sortDir := c.DefaultQuery("sortDir", "desc")
	if sortDir != "asc" && sortDir != "desc" {
		sortDir = "desc"
	}
	return domain.Page{Page: page, Size: size, SortBy: sortBy, SortDir: sortDir}
}
