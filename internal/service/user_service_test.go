package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-grocery-store/internal/apperr"
	"go-grocery-store/internal/domain"
	"go-grocery-store/internal/repo/repotest"
	"go-grocery-store/pkg/utils"
)

func newUserFixture(t *testing.T) (*UserService, *repotest.Mem) {
	t.Helper()
	mem := repotest.New()
	mem.SeedUser(domain.User{
		ID:           "u-1",
		FullName:     "Alice Smith",
		Email:        "alice@example.com",
		PasswordHash: utils.HashPassword("Passw0rd!"),
		Role:         domain.RoleCustomer,
	})
	return NewUserService(mem.Stores(), zap.NewNop()), mem
}

func TestChangePassword(t *testing.T) {
	svc, mem := newUserFixture(t)

	err := svc.ChangePassword(context.Background(), "u-1", ChangePasswordInput{
		CurrentPassword:    "wrong",
		NewPassword:        "NewPass1",
		ConfirmNewPassword: "NewPass1",
	})
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.CodeBadRequest, ae.Code)
	assert.Equal(t, "Current password is incorrect", ae.Error())

	err = svc.ChangePassword(context.Background(), "u-1", ChangePasswordInput{
		CurrentPassword:    "Passw0rd!",
		NewPassword:        "NewPass1",
		ConfirmNewPassword: "other",
	})
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.CodeBadRequest, ae.Code)

	require.NoError(t, svc.ChangePassword(context.Background(), "u-1", ChangePasswordInput{
		CurrentPassword:    "Passw0rd!",
		NewPassword:        "NewPass1",
		ConfirmNewPassword: "NewPass1",
	}))
	u, _ := mem.Stores().Users.FindByID(context.Background(), "u-1")
	assert.True(t, utils.CheckPassword("NewPass1", u.PasswordHash))
}

func TestUpdateRole(t *testing.T) {
	svc, _ := newUserFixture(t)

	u, err := svc.UpdateRole(context.Background(), "u-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)

	_, err = svc.UpdateRole(context.Background(), "u-1", "SUPERUSER")
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.CodeBadRequest, ae.Code)
}

func TestListByRoleValidation(t *testing.T) {
	svc, _ := newUserFixture(t)
	users, total, err := svc.ListByRole(context.Background(), "customer", domain.Page{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)

	_, _, err = svc.ListByRole(context.Background(), "nope", domain.Page{Size: 10})
	assert.Error(t, err)
}

// 删用户要连带清掉订单和评论
func TestDeleteUserCascades(t *testing.T) {
	svc, mem := newUserFixture(t)
	mem.SeedProduct(domain.Product{ID: "p-1", Name: "Milk", Price: price("3.50"), Quantity: 10})

	orders := NewOrderService(mem.Stores(), mem, nil, zap.NewNop())
	_, err := orders.Place(context.Background(), "u-1", PlaceOrderInput{
		OrderItems:      []OrderItemInput{{ProductID: "p-1", Quantity: 1}},
		DeliveryAddress: "1 Main St",
		ContactNumber:   "555-0100",
	})
	require.NoError(t, err)

	reviews := NewReviewService(mem.Stores(), zap.NewNop())
	_, err = reviews.Create(context.Background(), "p-1", "u-1", ReviewInput{Rating: 5})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "u-1"))

	_, total, _ := mem.Stores().Orders.List(context.Background(), domain.Page{Size: 10})
	assert.Zero(t, total)
	sum, _ := mem.Stores().Reviews.Summary(context.Background(), "p-1")
	assert.Zero(t, sum.ReviewCount)
}

func TestUserStatistics(t *testing.T) {
	svc, mem := newUserFixture(t)
	mem.SeedUser(domain.User{ID: "a-1", FullName: "Root", Email: "root@example.com", Role: domain.RoleAdmin})

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalCustomers)
	assert.Equal(t, int64(1), stats.TotalAdmins)
}
