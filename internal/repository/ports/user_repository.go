package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/DanielPodolsky/YelpCamp/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, username, email string, passwordHash, passwordSalt []byte) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
