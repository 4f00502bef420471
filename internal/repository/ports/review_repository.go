package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/DanielPodolsky/YelpCamp/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	ListByCampground(ctx context.Context, campgroundID uuid.UUID) ([]domain.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
