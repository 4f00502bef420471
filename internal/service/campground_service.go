package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DanielPodolsky/YelpCamp/internal/domain"
	"github.com/DanielPodolsky/YelpCamp/internal/geocode"
	"github.com/DanielPodolsky/YelpCamp/internal/media"
	"github.com/DanielPodolsky/YelpCamp/internal/repository/ports"
)

var (
	ErrCampgroundValidation = errors.New("campground validation failed")
	ErrCampgroundNotFound   = errors.New("campground not found")
	ErrNotCampgroundAuthor  = errors.New("not allowed to manage this campground")

	// ErrLocationNotFound means the geocoder matched nothing for the
	// submitted location text. Nothing is persisted when this happens.
	ErrLocationNotFound = errors.New("location could not be geocoded")
)

type CampgroundServiceConfig struct {
	Bucket            string
	PageSize          int
	MaxImages         int
	MaxImageBytes     int64
	AllowedMIMETypes  []string
	ImageProcessor    media.Processor
	ImageMaxDimension int
}

type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type CampgroundInput struct {
	Title       string
	Price       float64
	Description string
	Location    string
}

const (
	defaultPageSize      = 12
	defaultMaxImages     = 10
	defaultMaxImageBytes = int64(5 * 1024 * 1024)
)

var defaultAllowedMIMEs = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
}

type CampgroundService struct {
	campgrounds ports.CampgroundRepository
	storage     ports.ObjectStorage
	geocoder    geocode.Geocoder
	log         zerolog.Logger

	bucket            string
	pageSize          int
	maxImages         int
	maxImageBytes     int64
	allowedMIMEs      map[string]struct{}
	imageProcessor    media.Processor
	imageMaxDimension int
	now               func() time.Time
}

func NewCampgroundService(
	campgrounds ports.CampgroundRepository,
	storage ports.ObjectStorage,
	geocoder geocode.Geocoder,
	log zerolog.Logger,
	cfg CampgroundServiceConfig,
) *CampgroundService {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxImages := cfg.MaxImages
	if maxImages <= 0 {
		maxImages = defaultMaxImages
	}
	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	allowed := cfg.AllowedMIMETypes
	if len(allowed) == 0 {
		allowed = defaultAllowedMIMEs
	}
	mimeSet := make(map[string]struct{}, len(allowed))
	for _, mt := range allowed {
		mimeSet[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}
	maxDimension := cfg.ImageMaxDimension
	if maxDimension <= 0 {
		maxDimension = media.DefaultMaxDimension
	}

	return &CampgroundService{
		campgrounds:       campgrounds,
		storage:           storage,
		geocoder:          geocoder,
		log:               log,
		bucket:            strings.TrimSpace(cfg.Bucket),
		pageSize:          pageSize,
		maxImages:         maxImages,
		maxImageBytes:     maxBytes,
		allowedMIMEs:      mimeSet,
		imageProcessor:    cfg.ImageProcessor,
		imageMaxDimension: maxDimension,
		now:               time.Now,
	}
}

// List returns one page of campgrounds. The page index is clamped to
// [1, totalPages] so stale links never error.
func (s *CampgroundService) List(ctx context.Context, page int) (*domain.CampgroundPage, error) {
	total, err := s.campgrounds.Count(ctx)
	if err != nil {
		return nil, err
	}

	totalPages := (total + s.pageSize - 1) / s.pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	campgrounds, err := s.campgrounds.List(ctx, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}

	return &domain.CampgroundPage{
		Campgrounds: campgrounds,
		Page:        page,
		PageSize:    s.pageSize,
		TotalCount:  total,
		TotalPages:  totalPages,
	}, nil
}

// MapSummaries feeds the index map, which always shows every campground
// regardless of the pagination window.
func (s *CampgroundService) MapSummaries(ctx context.Context) ([]domain.CampgroundSummary, error) {
	return s.campgrounds.ListSummaries(ctx)
}

func (s *CampgroundService) Get(ctx context.Context, id uuid.UUID) (*domain.Campground, error) {
	campground, err := s.campgrounds.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCampgroundNotFound
		}
		return nil, err
	}
	return campground, nil
}

// Create validates, geocodes, uploads images and only then persists. A failed
// geocode aborts before any side effect; a failed insert rolls the uploaded
// assets back best-effort.
func (s *CampgroundService) Create(ctx context.Context, authorID uuid.UUID, input CampgroundInput, uploads []ImageUpload) (*domain.Campground, error) {
	input = normalizeCampgroundInput(input)
	if err := validateCampgroundInput(input); err != nil {
		return nil, err
	}
	if err := s.validateImages(uploads); err != nil {
		return nil, err
	}

	point, err := s.resolveLocation(ctx, input.Location)
	if err != nil {
		return nil, err
	}

	campgroundID := uuid.New()
	images, err := s.uploadImages(ctx, campgroundID, 0, uploads)
	if err != nil {
		return nil, err
	}

	stored, err := s.campgrounds.Create(ctx, &domain.Campground{
		ID:          campgroundID,
		Title:       input.Title,
		Price:       input.Price,
		Description: input.Description,
		Location:    input.Location,
		Longitude:   point.Longitude,
		Latitude:    point.Latitude,
		AuthorID:    authorID,
	}, images)
	if err != nil {
		s.removeAssets(ctx, objectKeys(images))
		return nil, err
	}
	return stored, nil
}

// Update re-geocodes only when the location text changed, appends new images
// after the existing ones and removes flagged images from the record before
// touching the backing assets, so a storage failure cannot leave the database
// pointing at deleted objects.
func (s *CampgroundService) Update(ctx context.Context, id, actorID uuid.UUID, input CampgroundInput, uploads []ImageUpload, deleteKeys []string) (*domain.Campground, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != actorID {
		return nil, ErrNotCampgroundAuthor
	}

	input = normalizeCampgroundInput(input)
	if err := validateCampgroundInput(input); err != nil {
		return nil, err
	}
	if len(uploads) > 0 {
		remaining := len(existing.Images) - len(deleteKeys) + len(uploads)
		if remaining > s.maxImages {
			return nil, fmt.Errorf("%w: maximum %d images allowed", ErrCampgroundValidation, s.maxImages)
		}
		if err := s.validateImages(uploads); err != nil {
			return nil, err
		}
	}

	point := existing.Geometry()
	if input.Location != existing.Location {
		point, err = s.resolveLocation(ctx, input.Location)
		if err != nil {
			return nil, err
		}
	}

	existing.Title = input.Title
	existing.Price = input.Price
	existing.Description = input.Description
	existing.Location = input.Location
	existing.Longitude = point.Longitude
	existing.Latitude = point.Latitude

	if err := s.campgrounds.Update(ctx, existing); err != nil {
		if isNotFound(err) {
			return nil, ErrCampgroundNotFound
		}
		return nil, err
	}

	if len(uploads) > 0 {
		nextPosition := 0
		for _, img := range existing.Images {
			if img.Position >= nextPosition {
				nextPosition = img.Position + 1
			}
		}
		images, err := s.uploadImages(ctx, id, nextPosition, uploads)
		if err != nil {
			return nil, err
		}
		if err := s.campgrounds.AddImages(ctx, id, images); err != nil {
			s.removeAssets(ctx, objectKeys(images))
			return nil, err
		}
	}

	if len(deleteKeys) > 0 {
		removed, err := s.campgrounds.RemoveImagesByKey(ctx, id, deleteKeys)
		if err != nil {
			return nil, err
		}
		// Database rows are gone; asset removal is best-effort from here.
		s.removeAssets(ctx, objectKeys(removed))
	}

	return s.Get(ctx, id)
}

// Delete removes reviews, image rows and the campground in one transaction,
// then cleans up the hosted assets best-effort.
func (s *CampgroundService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.AuthorID != actorID {
		return ErrNotCampgroundAuthor
	}

	keys, err := s.campgrounds.Delete(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return ErrCampgroundNotFound
		}
		return err
	}
	s.removeAssets(ctx, keys)
	return nil
}

func (s *CampgroundService) resolveLocation(ctx context.Context, location string) (domain.GeoPoint, error) {
	result, err := s.geocoder.Forward(ctx, location)
	if err != nil {
		if errors.Is(err, geocode.ErrNoResult) {
			return domain.GeoPoint{}, ErrLocationNotFound
		}
		return domain.GeoPoint{}, fmt.Errorf("geocode %q: %w", location, err)
	}
	return domain.GeoPoint{Longitude: result.Longitude, Latitude: result.Latitude}, nil
}

func (s *CampgroundService) validateImages(uploads []ImageUpload) error {
	if len(uploads) > s.maxImages {
		return fmt.Errorf("%w: maximum %d images allowed", ErrCampgroundValidation, s.maxImages)
	}
	for idx, upload := range uploads {
		if upload.Size <= 0 {
			return fmt.Errorf("%w: image %d is empty", ErrCampgroundValidation, idx+1)
		}
		if s.maxImageBytes > 0 && upload.Size > s.maxImageBytes {
			return fmt.Errorf("%w: image %d exceeds size limit (%d bytes)", ErrCampgroundValidation, idx+1, s.maxImageBytes)
		}
		contentType := media.NormalizeContentType(upload.ContentType, upload.FileName)
		if _, ok := s.allowedMIMEs[contentType]; !ok {
			return fmt.Errorf("%w: image %d has unsupported content type %s", ErrCampgroundValidation, idx+1, upload.ContentType)
		}
	}
	return nil
}

func (s *CampgroundService) uploadImages(ctx context.Context, campgroundID uuid.UUID, startPosition int, uploads []ImageUpload) ([]domain.CampgroundImage, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	now := s.now()
	images := make([]domain.CampgroundImage, 0, len(uploads))
	for idx, upload := range uploads {
		reader, size, contentType, err := s.prepareUpload(ctx, upload)
		if err != nil {
			s.removeAssets(ctx, objectKeys(images))
			return nil, err
		}

		ext := imageExtension(contentType, upload.FileName)
		objectKey := fmt.Sprintf("campgrounds/%s/%s_%d%s",
			campgroundID.String(), now.UTC().Format("20060102T150405Z0700"), startPosition+idx, ext)

		url, err := s.storage.Upload(ctx, s.bucket, objectKey, contentType, reader, size)
		if err != nil {
			s.removeAssets(ctx, objectKeys(images))
			return nil, fmt.Errorf("upload image %d: %w", idx+1, err)
		}

		images = append(images, domain.CampgroundImage{
			ID:           uuid.New(),
			CampgroundID: campgroundID,
			URL:          url,
			ObjectKey:    objectKey,
			Position:     startPosition + idx,
		})
	}
	return images, nil
}

func (s *CampgroundService) prepareUpload(ctx context.Context, upload ImageUpload) (io.Reader, int64, string, error) {
	contentType := media.NormalizeContentType(upload.ContentType, upload.FileName)
	if s.imageProcessor == nil {
		return upload.Reader, upload.Size, contentType, nil
	}
	result, err := s.imageProcessor.Process(ctx, media.Upload{
		Reader:      upload.Reader,
		Size:        upload.Size,
		FileName:    upload.FileName,
		ContentType: upload.ContentType,
	}, s.imageMaxDimension)
	if err != nil {
		return nil, 0, "", fmt.Errorf("process image: %w", err)
	}
	return bytes.NewReader(result.Bytes), int64(len(result.Bytes)), result.ContentType, nil
}

func (s *CampgroundService) removeAssets(ctx context.Context, keys []string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.storage.Remove(ctx, s.bucket, key); err != nil {
			s.log.Warn().Err(err).Str("object_key", key).Msg("asset removal failed")
		}
	}
}

func normalizeCampgroundInput(input CampgroundInput) CampgroundInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	return input
}

func validateCampgroundInput(input CampgroundInput) error {
	if input.Title == "" {
		return fmt.Errorf("%w: title is required", ErrCampgroundValidation)
	}
	if input.Location == "" {
		return fmt.Errorf("%w: location is required", ErrCampgroundValidation)
	}
	if input.Price < 0 {
		return fmt.Errorf("%w: price must be 0 or greater", ErrCampgroundValidation)
	}
	return nil
}

func objectKeys(images []domain.CampgroundImage) []string {
	keys := make([]string, 0, len(images))
	for _, img := range images {
		keys = append(keys, img.ObjectKey)
	}
	return keys
}

func imageExtension(contentType, fileName string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	if name := strings.TrimSpace(fileName); name != "" {
		if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
			return ext
		}
	}
	return ".bin"
}
