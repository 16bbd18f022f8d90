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
)

func newReviewFixture(t *testing.T) (*ReviewService, *repotest.Mem) {
	t.Helper()
	mem := repotest.New()
	mem.SeedUser(domain.User{ID: "u-1", FullName: "Alice Smith", Email: "alice@example.com", Role: domain.RoleCustomer})
	mem.SeedUser(domain.User{ID: "u-2", FullName: "Bob Jones", Email: "bob@example.com", Role: domain.RoleCustomer})
	mem.SeedProduct(domain.Product{ID: "p-1", Name: "Milk", Price: price("3.50"), Quantity: 10})
	return NewReviewService(mem.Stores(), zap.NewNop()), mem
}

func TestCreateReviewSnapshotsUserName(t *testing.T) {
	svc, _ := newReviewFixture(t)
	rev, err := svc.Create(context.Background(), "p-1", "u-1", ReviewInput{Rating: 5, Comment: "great"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", rev.UserName)
	assert.Equal(t, 5, rev.Rating)
}

func TestSecondReviewSameProductConflicts(t *testing.T) {
	svc, _ := newReviewFixture(t)
	_, err := svc.Create(context.Background(), "p-1", "u-1", ReviewInput{Rating: 5})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "p-1", "u-1", ReviewInput{Rating: 3})
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.CodeConflict, ae.Code)
	assert.Equal(t, "You have already reviewed this product", ae.Error())
}

// 并发下预检查不到已有评论时，联合唯一索引兜底也要回 409
type racingReviewStore struct{ domain.ReviewRepository }

func (racingReviewStore) FindByProductAndUser(context.Context, string, string) (*domain.Review, error) {
	return nil, nil
}

func TestSecondReviewUnderRaceStillConflicts(t *testing.T) {
	mem := repotest.New()
	mem.SeedUser(domain.User{ID: "u-1", FullName: "Alice Smith", Email: "alice@example.com", Role: domain.RoleCustomer})
	mem.SeedProduct(domain.Product{ID: "p-1", Name: "Milk", Price: price("3.50"), Quantity: 10})
	stores := mem.Stores()
	stores.Reviews = racingReviewStore{stores.Reviews}
	svc := NewReviewService(stores, zap.NewNop())

	_, err := svc.Create(context.Background(), "p-1", "u-1", ReviewInput{Rating: 5})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "p-1", "u-1", ReviewInput{Rating: 3})
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.CodeConflict, ae.Code)
	assert.Equal(t, "You have already reviewed this product", ae.Error())
}

func TestCreateReviewUnknownProduct(t *testing.T) {
	svc, _ := newReviewFixture(t)
	_, err := svc.Create(context.Background(), "missing", "u-1", ReviewInput{Rating: 4})
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
}

func TestCreateReviewRatingBounds(t *testing.T) {
	svc, _ := newReviewFixture(t)
	for _, bad := range []int{0, 6, -1} {
		_, err := svc.Create(context.Background(), "p-1", "u-1", ReviewInput{Rating: bad})
		var ae *apperr.Error
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, apperr.CodeBadRequest, ae.Code)
	}
}

func TestUpdateReviewAuthorOnly(t *testing.T) {
	svc, _ := newReviewFixture(t)
	rev, err := svc.Create(context.Background(), "p-1", "u-1", ReviewInput{Rating: 5})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), rev.ID, "u-2", ReviewInput{Rating: 1})
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.CodeForbidden, ae.Code)

	upd, err := svc.Update(context.Background(), rev.ID, "u-1", ReviewInput{Rating: 2, Comment: "changed my mind"})
	require.NoError(t, err)
	assert.Equal(t, 2, upd.Rating)
}

func TestDeleteReviewAuthorOrAdmin(t *testing.T) {
	svc, _ := newReviewFixture(t)
	rev, err := svc.Create(context.Background(), "p-1", "u-1", ReviewInput{Rating: 5})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), rev.ID, "u-2", domain.RoleCustomer)
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.CodeForbidden, ae.Code)

	require.NoError(t, svc.Delete(context.Background(), rev.ID, "u-2", domain.RoleAdmin))
}

func TestSummaryAggregates(t *testing.T) {
	svc, _ := newReviewFixture(t)
	_, err := svc.Create(context.Background(), "p-1", "u-1", ReviewInput{Rating: 5})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "p-1", "u-2", ReviewInput{Rating: 3})
	require.NoError(t, err)

	sum, err := svc.Summary(context.Background(), "p-1")
	require.NoError(t, err)
	assert.InDelta(t, 4.0, sum.AverageRating, 0.001)
	assert.Equal(t, int64(2), sum.ReviewCount)
	assert.Equal(t, int64(1), sum.Distribution[5])
	assert.Equal(t, int64(1), sum.Distribution[3])
}

// 删评后聚合值立刻反映，不存在缓存滞后
func TestSummaryRecomputedAfterDelete(t *testing.T) {
	svc, _ := newReviewFixture(t)
	rev, err := svc.Create(context.Background(), "p-1", "u-1", ReviewInput{Rating: 5})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "p-1", "u-2", ReviewInput{Rating: 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), rev.ID, "u-1", domain.RoleCustomer))

	sum, err := svc.Summary(context.Background(), "p-1")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sum.AverageRating, 0.001)
	assert.Equal(t, int64(1), sum.ReviewCount)
}
