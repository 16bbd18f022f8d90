package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-grocery-store/internal/apperr"
)

// Envelope 所有接口统一的响应外壳
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func OK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Fail 业务错误统一出口：按 apperr.Code 映射 HTTP 状态
func Fail(c *gin.Context, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		c.JSON(statusOf(ae.Code), Envelope{Success: false, Message: ae.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, Envelope{Success: false, Message: "Internal server error"})
}

// Abort 中间件用，直接带状态截断
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
}

func statusOf(code int) int {
	switch code {
	case apperr.CodeBadRequest:
		return http.StatusBadRequest
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// PageData 分页响应体
type PageData struct {
	Content       any   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int64 `json:"totalPages"`
}

func NewPage(content any, page, size int, total int64) PageData {
	pages := total / int64(size)
	if total%int64(size) != 0 {
		pages++
	}
	return PageData{Content: content, Page: page, Size: size, TotalElements: total, TotalPages: pages}
}
