package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"go-grocery-store/internal/apperr"
	"go-grocery-store/internal/domain"
	"go-grocery-store/pkg/utils"
)

type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=1000"`
}

type ReviewService struct {
	stores domain.Stores
	log    *zap.Logger
}

func NewReviewService(stores domain.Stores, log *zap.Logger) *ReviewService {
	return &ReviewService{stores: stores, log: log}
}

// Create 每个用户对同一商品只能评一次，重复提交报冲突，改评走 Update
func (s *ReviewService) Create(ctx context.Context, productID, userID string, in ReviewInput) (*domain.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.BadRequest("Rating must be between 1 and 5")
	}
	p, err := s.stores.Products.FindByID(ctx, productID)
	if err != nil {
		return nil, apperr.Internal("find product failed", err)
	}
	if p == nil {
		return nil, apperr.NotFound("Product not found with id: %s", productID)
	}
	u, err := s.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("find user failed", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found with id: %s", userID)
	}
	existing, err := s.stores.Reviews.FindByProductAndUser(ctx, productID, userID)
	if err != nil {
		return nil, apperr.Internal("find review failed", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("You have already reviewed this product")
	}

	rev := &domain.Review{
		ID:        utils.NewID(),
		ProductID: productID,
		UserID:    userID,
		UserName:  u.FullName,
		Rating:    in.Rating,
		Comment:   in.Comment,
	}
	if err := s.stores.Reviews.Create(ctx, rev); err != nil {
		// 并发重复评论靠联合唯一索引兜底
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperr.Conflict("You have already reviewed this product")
		}
		return nil, apperr.Internal("create review failed", err)
	}
	s.log.Info("review created",
		zap.String("product_id", productID),
		zap.String("user_id", userID),
		zap.Int("rating", in.Rating),
	)
	return rev, nil
}

// Update 只有作者本人可改
func (s *ReviewService) Update(ctx context.Context, reviewID, userID string, in ReviewInput) (*domain.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.BadRequest("Rating must be between 1 and 5")
	}
	rev, err := s.mustFind(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if rev.UserID != userID {
		return nil, apperr.Forbidden("You can only update your own reviews")
	}
	rev.Rating = in.Rating
	rev.Comment = in.Comment
	if err := s.stores.Reviews.Update(ctx, rev); err != nil {
		return nil, apperr.Internal("update review failed", err)
	}
	return rev, nil
}

// Delete 作者或管理员
func (s *ReviewService) Delete(ctx context.Context, reviewID, userID, role string) error {
	rev, err := s.mustFind(ctx, reviewID)
	if err != nil {
		return err
	}
	if rev.UserID != userID && role != domain.RoleAdmin {
		return apperr.Forbidden("You can only delete your own reviews")
	}
	if err := s.stores.Reviews.Delete(ctx, reviewID); err != nil {
		return apperr.Internal("delete review failed", err)
	}
	return nil
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID string, pg domain.Page) ([]domain.Review, int64, error) {
	return s.stores.Reviews.ListByProduct(ctx, productID, pg)
}

// Summary 每次调用现算，保证聚合值永不过期
func (s *ReviewService) Summary(ctx context.Context, productID string) (*domain.RatingSummary, error) {
	p, err := s.stores.Products.FindByID(ctx, productID)
	if err != nil {
		return nil, apperr.Internal("find product failed", err)
	}
	if p == nil {
		return nil, apperr.NotFound("Product not found with id: %s", productID)
	}
	sum, err := s.stores.Reviews.Summary(ctx, productID)
	if err != nil {
		return nil, apperr.Internal("rating summary failed", err)
	}
	return sum, nil
}

func (s *ReviewService) mustFind(ctx context.Context, id string) (*domain.Review, error) {
	rev, err := s.stores.Reviews.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("find review failed", err)
	}
	if rev == nil {
		return nil, apperr.NotFound("Review not found with id: %s", id)
	}
	return rev, nil
}
