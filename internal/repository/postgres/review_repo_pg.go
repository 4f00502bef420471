package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/DanielPodolsky/YelpCamp/internal/domain"
	"github.com/DanielPodolsky/YelpCamp/internal/repository/ports"
)

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepo(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	const query = `
		INSERT INTO review (campground_id, author_id, body, rating)
		VALUES ($1, $2, $3, $4)
		RETURNING id, campground_id, author_id, body, rating, created_at
	`
	var stored domain.Review
	row := r.db.QueryRowxContext(ctx, query, review.CampgroundID, review.AuthorID, review.Body, review.Rating)
	if err := row.StructScan(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	const query = `
		SELECT r.id, r.campground_id, r.author_id, r.body, r.rating, r.created_at,
		       u.username AS author_username
		FROM review r
		JOIN user_account u ON u.id = r.author_id
		WHERE r.id = $1
	`
	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ListByCampground(ctx context.Context, campgroundID uuid.UUID) ([]domain.Review, error) {
	const query = `
		SELECT r.id, r.campground_id, r.author_id, r.body, r.rating, r.created_at,
		       u.username AS author_username
		FROM review r
		JOIN user_account u ON u.id = r.author_id
		WHERE r.campground_id = $1
		ORDER BY r.created_at ASC, r.id ASC
	`
	var reviews []domain.Review
	if err := r.db.SelectContext(ctx, &reviews, query, campgroundID); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM review WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)
