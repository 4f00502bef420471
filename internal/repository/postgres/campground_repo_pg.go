package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/DanielPodolsky/YelpCamp/internal/domain"
	"github.com/DanielPodolsky/YelpCamp/internal/repository/ports"
)

type CampgroundRepository struct {
	db *sqlx.DB
}

func NewCampgroundRepo(db *sqlx.DB) *CampgroundRepository {
	return &CampgroundRepository{db: db}
}

func (r *CampgroundRepository) Create(ctx context.Context, campground *domain.Campground, images []domain.CampgroundImage) (*domain.Campground, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	// The caller's id is persisted as-is: the service bakes it into the
	// image object keys before the insert, so the row must match.
	if campground.ID == uuid.Nil {
		campground.ID = uuid.New()
	}

	const query = `
		INSERT INTO campground (id, title, price, description, location, longitude, latitude, author_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, title, price, description, location, longitude, latitude, author_id, created_at, updated_at
	`
	var stored domain.Campground
	row := tx.QueryRowxContext(ctx, query,
		campground.ID, campground.Title, campground.Price, campground.Description,
		campground.Location, campground.Longitude, campground.Latitude, campground.AuthorID)
	if err := row.StructScan(&stored); err != nil {
		return nil, err
	}

	if err := insertImages(ctx, tx, stored.ID, images); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	stored.Images = make([]domain.CampgroundImage, len(images))
	copy(stored.Images, images)
	for i := range stored.Images {
		stored.Images[i].CampgroundID = stored.ID
	}
	return &stored, nil
}

func (r *CampgroundRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Campground, error) {
	const query = `
		SELECT
			c.id, c.title, c.price, c.description, c.location,
			c.longitude, c.latitude, c.author_id, c.created_at, c.updated_at,
			u.username AS author_username
		FROM campground c
		JOIN user_account u ON u.id = c.author_id
		WHERE c.id = $1
	`
	var campground domain.Campground
	if err := r.db.GetContext(ctx, &campground, query, id); err != nil {
		return nil, err
	}

	images, err := r.listImages(ctx, id)
	if err != nil {
		return nil, err
	}
	campground.Images = images

	const reviewQuery = `
		SELECT r.id, r.campground_id, r.author_id, r.body, r.rating, r.created_at,
		       u.username AS author_username
		FROM review r
		JOIN user_account u ON u.id = r.author_id
		WHERE r.campground_id = $1
		ORDER BY r.created_at ASC, r.id ASC
	`
	var reviews []domain.Review
	if err := r.db.SelectContext(ctx, &reviews, reviewQuery, id); err != nil {
		return nil, err
	}
	campground.Reviews = reviews

	return &campground, nil
}

func (r *CampgroundRepository) List(ctx context.Context, limit, offset int) ([]domain.Campground, error) {
	const query = `
		SELECT
			c.id, c.title, c.price, c.description, c.location,
			c.longitude, c.latitude, c.author_id, c.created_at, c.updated_at,
			u.username AS author_username
		FROM campground c
		JOIN user_account u ON u.id = c.author_id
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $1 OFFSET $2
	`
	var campgrounds []domain.Campground
	if err := r.db.SelectContext(ctx, &campgrounds, query, limit, offset); err != nil {
		return nil, err
	}
	if len(campgrounds) == 0 {
		return campgrounds, nil
	}

	ids := make([]uuid.UUID, 0, len(campgrounds))
	for _, c := range campgrounds {
		ids = append(ids, c.ID)
	}
	imageQuery, args, err := sqlx.In(`
		SELECT id, campground_id, url, object_key, position
		FROM campground_image
		WHERE campground_id IN (?)
		ORDER BY campground_id, position ASC, id ASC
	`, ids)
	if err != nil {
		return nil, err
	}
	var images []domain.CampgroundImage
	if err := r.db.SelectContext(ctx, &images, r.db.Rebind(imageQuery), args...); err != nil {
		return nil, err
	}
	byCampground := make(map[uuid.UUID][]domain.CampgroundImage, len(campgrounds))
	for _, img := range images {
		byCampground[img.CampgroundID] = append(byCampground[img.CampgroundID], img)
	}
	for i := range campgrounds {
		campgrounds[i].Images = byCampground[campgrounds[i].ID]
	}
	return campgrounds, nil
}

func (r *CampgroundRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM campground`); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CampgroundRepository) ListSummaries(ctx context.Context) ([]domain.CampgroundSummary, error) {
	const query = `
		SELECT id, title, location, longitude, latitude, description
		FROM campground
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.CampgroundSummary
	for rows.Next() {
		var row struct {
			ID          uuid.UUID `db:"id"`
			Title       string    `db:"title"`
			Location    string    `db:"location"`
			Longitude   float64   `db:"longitude"`
			Latitude    float64   `db:"latitude"`
			Description string    `db:"description"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		c := domain.Campground{Description: row.Description}
		summaries = append(summaries, domain.CampgroundSummary{
			ID:       row.ID,
			Title:    row.Title,
			Location: row.Location,
			Geometry: domain.GeoPoint{Longitude: row.Longitude, Latitude: row.Latitude},
			Snippet:  c.Snippet(),
		})
	}
	return summaries, rows.Err()
}

func (r *CampgroundRepository) Update(ctx context.Context, campground *domain.Campground) error {
	const query = `
		UPDATE campground
		SET title = $2, price = $3, description = $4, location = $5,
		    longitude = $6, latitude = $7, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		campground.ID, campground.Title, campground.Price, campground.Description,
		campground.Location, campground.Longitude, campground.Latitude)
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

func (r *CampgroundRepository) AddImages(ctx context.Context, campgroundID uuid.UUID, images []domain.CampgroundImage) error {
	if len(images) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := insertImages(ctx, tx, campgroundID, images); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *CampgroundRepository) RemoveImagesByKey(ctx context.Context, campgroundID uuid.UUID, objectKeys []string) ([]domain.CampgroundImage, error) {
	if len(objectKeys) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		DELETE FROM campground_image
		WHERE campground_id = ? AND object_key IN (?)
		RETURNING id, campground_id, url, object_key, position
	`, campgroundID, objectKeys)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var removed []domain.CampgroundImage
	for rows.Next() {
		var img domain.CampgroundImage
		if err := rows.StructScan(&img); err != nil {
			return nil, err
		}
		removed = append(removed, img)
	}
	return removed, rows.Err()
}

// Delete removes dependent reviews before the campground itself so the
// cascade stays an explicit, ordered sequence inside one transaction.
func (r *CampgroundRepository) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var objectKeys []string
	if err := tx.SelectContext(ctx, &objectKeys,
		`SELECT object_key FROM campground_image WHERE campground_id = $1`, id); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM review WHERE campground_id = $1`, id); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM campground_image WHERE campground_id = $1`, id); err != nil {
		return nil, err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM campground WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, sql.ErrNoRows
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return objectKeys, nil
}

func (r *CampgroundRepository) listImages(ctx context.Context, campgroundID uuid.UUID) ([]domain.CampgroundImage, error) {
	const query = `
		SELECT id, campground_id, url, object_key, position
		FROM campground_image
		WHERE campground_id = $1
		ORDER BY position ASC, id ASC
	`
	var images []domain.CampgroundImage
	if err := r.db.SelectContext(ctx, &images, query, campgroundID); err != nil {
		return nil, err
	}
	return images, nil
}

func insertImages(ctx context.Context, tx *sqlx.Tx, campgroundID uuid.UUID, images []domain.CampgroundImage) error {
	if len(images) == 0 {
		return nil
	}
	values := make([]string, 0, len(images))
	args := make([]any, 0, len(images)*5)
	idx := 1
	for _, img := range images {
		id := img.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", idx, idx+1, idx+2, idx+3, idx+4))
		args = append(args, id, campgroundID, img.URL, img.ObjectKey, img.Position)
		idx += 5
	}
	query := `INSERT INTO campground_image (id, campground_id, url, object_key, position) VALUES ` +
		strings.Join(values, ", ")
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

var _ ports.CampgroundRepository = (*CampgroundRepository)(nil)
