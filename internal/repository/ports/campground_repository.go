package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/DanielPodolsky/YelpCamp/internal/domain"
)

type CampgroundRepository interface {
	// Create stores the campground together with its initial images in one
	// transaction and returns the stored record.
	Create(ctx context.Context, campground *domain.Campground, images []domain.CampgroundImage) (*domain.Campground, error)

	// GetByID resolves the campground with its author, its ordered images and
	// its reviews (each review with its author resolved).
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Campground, error)

	List(ctx context.Context, limit, offset int) ([]domain.Campground, error)
	Count(ctx context.Context) (int, error)
	ListSummaries(ctx context.Context) ([]domain.CampgroundSummary, error)

	Update(ctx context.Context, campground *domain.Campground) error
	AddImages(ctx context.Context, campgroundID uuid.UUID, images []domain.CampgroundImage) error

	// RemoveImagesByKey removes the image rows matching the given object keys
	// and returns the removed records so the caller can clean up the backing
	// assets afterwards.
	RemoveImagesByKey(ctx context.Context, campgroundID uuid.UUID, objectKeys []string) ([]domain.CampgroundImage, error)

	// Delete removes the campground, its reviews and its image rows in one
	// transaction. Dependent reviews are deleted first so the sequence stays
	// visible in SQL rather than hiding behind a trigger. The object keys of
	// the removed images are returned for best-effort asset cleanup.
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
}
