package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/DanielPodolsky/YelpCamp/internal/domain"
	"github.com/DanielPodolsky/YelpCamp/internal/repository/ports"
)

var (
	ErrReviewValidation = errors.New("review validation failed")
	ErrReviewNotFound   = errors.New("review not found")
	ErrNotReviewAuthor  = errors.New("not allowed to manage this review")
)

type ReviewInput struct {
	Body   string
	Rating int
}

type ReviewService struct {
	reviews     ports.ReviewRepository
	campgrounds ports.CampgroundRepository
}

func NewReviewService(reviews ports.ReviewRepository, campgrounds ports.CampgroundRepository) *ReviewService {
	return &ReviewService{reviews: reviews, campgrounds: campgrounds}
}

// Create appends a review to an existing campground. The foreign key on the
// review row is what ties it to its parent, so this is a single insert.
func (s *ReviewService) Create(ctx context.Context, campgroundID, authorID uuid.UUID, input ReviewInput) (*domain.Review, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: body is required", ErrReviewValidation)
	}
	if input.Rating < domain.MinRating || input.Rating > domain.MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", ErrReviewValidation, domain.MinRating, domain.MaxRating)
	}

	if err := s.ensureCampgroundExists(ctx, campgroundID); err != nil {
		return nil, err
	}

	stored, err := s.reviews.Create(ctx, &domain.Review{
		CampgroundID: campgroundID,
		AuthorID:     authorID,
		Body:         body,
		Rating:       input.Rating,
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *ReviewService) Get(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

// Delete removes a review. Only the review's author may delete it; the
// review must also belong to the campground named in the URL so a crafted
// request cannot detach someone else's review through a different parent.
func (s *ReviewService) Delete(ctx context.Context, campgroundID, reviewID, actorID uuid.UUID) error {
	review, err := s.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.CampgroundID != campgroundID {
		return ErrReviewNotFound
	}
	if review.AuthorID != actorID {
		return ErrNotReviewAuthor
	}
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		if isNotFound(err) {
			return ErrReviewNotFound
		}
		return err
	}
	return nil
}

func (s *ReviewService) ensureCampgroundExists(ctx context.Context, campgroundID uuid.UUID) error {
	if campgroundID == uuid.Nil {
		return ErrCampgroundNotFound
	}
	if _, err := s.campgrounds.GetByID(ctx, campgroundID); err != nil {
		if isNotFound(err) {
			return ErrCampgroundNotFound
		}
		return err
	}
	return nil
}
