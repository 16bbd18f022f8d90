package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-grocery-store/internal/core/auth"
	"go-grocery-store/internal/domain"
	"go-grocery-store/internal/repo/repotest"
	"go-grocery-store/internal/service"
	"go-grocery-store/internal/transport/http/handler"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *repotest.Mem, *auth.JWTer) {
	t.Helper()
	mem := repotest.New()
	log := zap.NewNop()
	j := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "grocery-test", TTL: time.Hour}

	r := NewEngine(Deps{
		Log:      log,
		JWT:      j,
		Auth:     handler.NewAuthHandler(service.NewAuthService(mem.Stores(), j, log)),
		Users:    handler.NewUserHandler(service.NewUserService(mem.Stores(), log)),
		Products: handler.NewProductHandler(service.NewProductService(mem.Stores(), nil, log)),
		Orders:   handler.NewOrderHandler(service.NewOrderService(mem.Stores(), mem, nil, log)),
		Reviews:  handler.NewReviewHandler(service.NewReviewService(mem.Stores(), log)),
	})
	return r, mem, j
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestRegisterLoginOrderFlow(t *testing.T) {
	r, mem, _ := newTestRouter(t)
	mem.SeedProduct(domain.Product{ID: "p-1", Name: "Milk", Price: price(t, "3.50"), Quantity: 10})

	w, env := do(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"fullName":        "Alice Smith",
		"email":           "alice@example.com",
		"password":        "Passw0rd!",
		"confirmPassword": "Passw0rd!",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.True(t, env.Success)

	w, env = do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "Passw0rd!",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var payload struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	require.NotEmpty(t, payload.Token)
	assert.Equal(t, "CUSTOMER", payload.Role)

	w, env = do(t, r, http.MethodPost, "/api/orders", payload.Token, gin.H{
		"orderItems":      []gin.H{{"productId": "p-1", "quantity": 2}},
		"deliveryAddress": "1 Main St",
		"contactNumber":   "555-0100",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order struct {
		TotalAmount string `json:"totalAmount"`
		Status      string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "7", order.TotalAmount)
	assert.Equal(t, "PENDING", order.Status)

	// 库存扣到 8
	w, env = do(t, r, http.MethodGet, "/api/products/p-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var product struct {
		Quantity int  `json:"quantity"`
		InStock  bool `json:"inStock"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &product))
	assert.Equal(t, 8, product.Quantity)
	assert.True(t, product.InStock)
}

func TestPlaceOrderRequiresAuth(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w, env := do(t, r, http.MethodPost, "/api/orders", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
}

func TestCustomerCannotReachAdminRoutes(t *testing.T) {
	r, _, j := newTestRouter(t)
	tok, err := j.Issue("u-1", domain.RoleCustomer)
	require.NoError(t, err)

	for _, path := range []string{
		"/api/users",
		"/api/orders/admin/all",
		"/api/orders/admin/statistics",
	} {
		w, _ := do(t, r, http.MethodGet, path, tok, nil)
		assert.Equalf(t, http.StatusForbidden, w.Code, "GET %s", path)
	}
}

func TestAdminCanManageProducts(t *testing.T) {
	r, mem, j := newTestRouter(t)
	mem.SeedUser(domain.User{ID: "a-1", FullName: "Root", Email: "root@example.com", Role: domain.RoleAdmin})
	tok, err := j.Issue("a-1", domain.RoleAdmin)
	require.NoError(t, err)

	w, env := do(t, r, http.MethodPost, "/api/products", tok, gin.H{
		"name":     "Eggs",
		"price":    "2.99",
		"quantity": 24,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	w, _ = do(t, r, http.MethodPut, "/api/products/"+created.ID+"/stock?quantity=5", tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = do(t, r, http.MethodGet, "/api/products/statistics", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSecondReviewReturnsConflict(t *testing.T) {
	r, mem, j := newTestRouter(t)
	mem.SeedUser(domain.User{ID: "u-1", FullName: "Alice Smith", Email: "alice@example.com", Role: domain.RoleCustomer})
	mem.SeedProduct(domain.Product{ID: "p-1", Name: "Milk", Price: price(t, "3.50"), Quantity: 10})
	tok, err := j.Issue("u-1", domain.RoleCustomer)
	require.NoError(t, err)

	w, _ := do(t, r, http.MethodPost, "/api/products/p-1/reviews", tok, gin.H{"rating": 5, "comment": "great"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env := do(t, r, http.MethodPost, "/api/products/p-1/reviews", tok, gin.H{"rating": 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "You have already reviewed this product", env.Message)
}

func TestHealthEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w, _ := do(t, r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func price(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
