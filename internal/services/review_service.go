package services

import (
	"context"
	"math"
	"strings"

	"market-service/internal/apperr"
	"market-service/internal/domain"
	"market-service/internal/repository"

	"github.com/sirupsen/logrus"
)

type ReviewInput struct {
	UserName  string
	ProductID uint64
	Rating    int
	Comment   string
}

type ProductReviews struct {
	ProductID     uint64          `json:"productId"`
	Count         int             `json:"count"`
	AverageRating float64         `json:"averageRating"`
	Reviews       []domain.Review `json:"reviews"`
}

type UserReviews struct {
	UserName           string          `json:"userName"`
	ProductID          *uint64         `json:"productId,omitempty"`
	TotalReviews       int             `json:"totalReviews"`
	AverageRatingGiven float64         `json:"averageRatingGiven"`
	Reviews            []domain.Review `json:"reviews"`
}

type ReviewService struct {
	reviews repository.ReviewRepository
	log     *logrus.Entry
}

func NewReviewService(reviews repository.ReviewRepository, log *logrus.Entry) *ReviewService {
	return &ReviewService{reviews: reviews, log: log}
}

func (s *ReviewService) Create(ctx context.Context, in ReviewInput) (*domain.Review, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	in.Comment = strings.TrimSpace(in.Comment)
	if in.UserName == "" || in.Comment == "" || in.ProductID == 0 || in.Rating == 0 {
		return nil, apperr.Validation("All fields are required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.Validation("Rating must be between 1 and 5")
	}
	r := &domain.Review{UserName: in.UserName, ProductID: in.ProductID, Rating: in.Rating, Comment: in.Comment}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, apperr.Unexpected("failed to submit review", err)
	}
	return r, nil
}

// averageRating rounds to one decimal place; no reviews averages to zero.
func averageRating(reviews []domain.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(reviews))*10) / 10
}

func (s *ReviewService) ListByProduct(ctx context.Context, productID uint64) (*ProductReviews, error) {
	if productID == 0 {
		return nil, apperr.Validation("Invalid productId")
	}
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch reviews", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return &ProductReviews{
		ProductID:     productID,
		Count:         len(reviews),
		AverageRating: averageRating(reviews),
		Reviews:       reviews,
	}, nil
}

func (s *ReviewService) ListByUserName(ctx context.Context, userName string, productID *uint64) (*UserReviews, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, apperr.Validation("userName is required")
	}
	reviews, err := s.reviews.ListByUserName(ctx, userName, productID)
	if err != nil {
		return nil, apperr.Unexpected("failed to fetch reviews", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return &UserReviews{
		UserName:           userName,
		ProductID:          productID,
		TotalReviews:       len(reviews),
		AverageRatingGiven: averageRating(reviews),
		Reviews:            reviews,
	}, nil
}
