package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/DanielPodolsky/YelpCamp/internal/domain"
	"github.com/DanielPodolsky/YelpCamp/internal/geocode"
)

// In-memory stand-ins for the repository ports, mirroring the Postgres
// behavior the services depend on: sql.ErrNoRows for misses, a pgconn unique
// violation for duplicate users.

type memoryCampgroundRepo struct {
	mu          sync.Mutex
	campgrounds map[uuid.UUID]*domain.Campground
	images      map[uuid.UUID][]domain.CampgroundImage
	reviews     map[uuid.UUID][]domain.Review
	createErr   error
}

func newMemoryCampgroundRepo() *memoryCampgroundRepo {
	return &memoryCampgroundRepo{
		campgrounds: make(map[uuid.UUID]*domain.Campground),
		images:      make(map[uuid.UUID][]domain.CampgroundImage),
		reviews:     make(map[uuid.UUID][]domain.Review),
	}
}

func (r *memoryCampgroundRepo) Create(ctx context.Context, campground *domain.Campground, images []domain.CampgroundImage) (*domain.Campground, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	stored := *campground
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.campgrounds[stored.ID] = &stored
	r.images[stored.ID] = append([]domain.CampgroundImage(nil), images...)
	return r.resolveLocked(stored.ID), nil
}

func (r *memoryCampgroundRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Campground, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campgrounds[id]; !ok {
		return nil, sql.ErrNoRows
	}
	return r.resolveLocked(id), nil
}

func (r *memoryCampgroundRepo) resolveLocked(id uuid.UUID) *domain.Campground {
	stored := *r.campgrounds[id]
	stored.Images = append([]domain.CampgroundImage(nil), r.images[id]...)
	sort.Slice(stored.Images, func(i, j int) bool { return stored.Images[i].Position < stored.Images[j].Position })
	stored.Reviews = append([]domain.Review(nil), r.reviews[id]...)
	return &stored
}

func (r *memoryCampgroundRepo) List(ctx context.Context, limit, offset int) ([]domain.Campground, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.campgrounds))
	for id := range r.campgrounds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.campgrounds[ids[i]].CreatedAt.After(r.campgrounds[ids[j]].CreatedAt)
	})
	out := make([]domain.Campground, 0, limit)
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, *r.resolveLocked(ids[i]))
	}
	return out, nil
}

func (r *memoryCampgroundRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.campgrounds), nil
}

func (r *memoryCampgroundRepo) ListSummaries(ctx context.Context) ([]domain.CampgroundSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.CampgroundSummary, 0, len(r.campgrounds))
	for _, c := range r.campgrounds {
		out = append(out, domain.CampgroundSummary{
			ID:       c.ID,
			Title:    c.Title,
			Location: c.Location,
			Geometry: c.Geometry(),
			Snippet:  c.Snippet(),
		})
	}
	return out, nil
}

func (r *memoryCampgroundRepo) Update(ctx context.Context, campground *domain.Campground) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.campgrounds[campground.ID]
	if !ok {
		return sql.ErrNoRows
	}
	updated := *campground
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.campgrounds[campground.ID] = &updated
	return nil
}

func (r *memoryCampgroundRepo) AddImages(ctx context.Context, campgroundID uuid.UUID, images []domain.CampgroundImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campgrounds[campgroundID]; !ok {
		return sql.ErrNoRows
	}
	r.images[campgroundID] = append(r.images[campgroundID], images...)
	return nil
}

func (r *memoryCampgroundRepo) RemoveImagesByKey(ctx context.Context, campgroundID uuid.UUID, objectKeys []string) ([]domain.CampgroundImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keySet := make(map[string]struct{}, len(objectKeys))
	for _, k := range objectKeys {
		keySet[k] = struct{}{}
	}
	var kept, removed []domain.CampgroundImage
	for _, img := range r.images[campgroundID] {
		if _, hit := keySet[img.ObjectKey]; hit {
			removed = append(removed, img)
		} else {
			kept = append(kept, img)
		}
	}
	r.images[campgroundID] = kept
	return removed, nil
}

func (r *memoryCampgroundRepo) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campgrounds[id]; !ok {
		return nil, sql.ErrNoRows
	}
	keys := make([]string, 0, len(r.images[id]))
	for _, img := range r.images[id] {
		keys = append(keys, img.ObjectKey)
	}
	delete(r.reviews, id)
	delete(r.images, id)
	delete(r.campgrounds, id)
	return keys, nil
}

type memoryReviewRepo struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]*domain.Review
}

func newMemoryReviewRepo() *memoryReviewRepo {
	return &memoryReviewRepo{reviews: make(map[uuid.UUID]*domain.Review)}
}

func (r *memoryReviewRepo) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *review
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = time.Now()
	r.reviews[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *memoryReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reviews[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *stored
	return &out, nil
}

func (r *memoryReviewRepo) ListByCampground(ctx context.Context, campgroundID uuid.UUID) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Review
	for _, rev := range r.reviews {
		if rev.CampgroundID == campgroundID {
			out = append(out, *rev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.reviews, id)
	return nil
}

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *memoryUserRepo) Create(ctx context.Context, username, email string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return nil, &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "user_account_username_key"}
		}
	}
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		PasswordSalt: passwordSalt,
		CreatedAt:    time.Now(),
	}
	r.users[user.ID] = user
	out := *user
	return &out, nil
}

func (r *memoryUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *u
	return &out, nil
}

func (r *memoryUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type memorySessionRepo struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[string]*domain.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *memorySessionRepo) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	session := &domain.Session{
		ID:        r.nextID,
		UserID:    userID,
		Token:     token,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	r.sessions[token] = session
	out := *session
	return &out, nil
}

func (r *memorySessionRepo) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok || !session.IsActive || time.Now().After(session.ExpiresAt) {
		return nil, sql.ErrNoRows
	}
	out := *session
	return &out, nil
}

func (r *memorySessionRepo) DeactivateSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok {
		return sql.ErrNoRows
	}
	session.IsActive = false
	return nil
}

func (r *memorySessionRepo) activeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sessions {
		if s.IsActive {
			n++
		}
	}
	return n
}

// memoryStorage records uploads and removals so tests can assert on the
// asset lifecycle. failUploadAt triggers a failure on the nth upload.
type memoryStorage struct {
	mu           sync.Mutex
	objects      map[string][]byte
	removed      []string
	uploads      int
	failUploadAt int
	removeErr    error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (s *memoryStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if s.failUploadAt > 0 && s.uploads >= s.failUploadAt {
		return "", fmt.Errorf("upload rejected")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.objects[objectName] = data
	return "https://cdn.test/" + bucket + "/" + objectName, nil
}

func (s *memoryStorage) Remove(ctx context.Context, bucket, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	delete(s.objects, objectName)
	s.removed = append(s.removed, objectName)
	return nil
}

func (s *memoryStorage) objectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// staticGeocoder resolves every known location to a fixed point and returns
// geocode.ErrNoResult for everything else.
type staticGeocoder struct {
	points map[string]geocode.Result
	calls  int
}

func (g *staticGeocoder) Forward(ctx context.Context, query string) (*geocode.Result, error) {
	g.calls++
	result, ok := g.points[query]
	if !ok {
		return nil, geocode.ErrNoResult
	}
	out := result
	return &out, nil
}
