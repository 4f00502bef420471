package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DanielPodolsky/YelpCamp/internal/domain"
	"github.com/DanielPodolsky/YelpCamp/internal/geocode"
)

func newCampgroundFixture() (*CampgroundService, *memoryCampgroundRepo, *memoryStorage, *staticGeocoder) {
	repo := newMemoryCampgroundRepo()
	storage := newMemoryStorage()
	geocoder := &staticGeocoder{points: map[string]geocode.Result{
		"Bend, Oregon": {Longitude: -121.3153, Latitude: 44.0582},
		"Moab, Utah":   {Longitude: -109.5498, Latitude: 38.5733},
	}}
	svc := NewCampgroundService(repo, storage, geocoder, zerolog.Nop(), CampgroundServiceConfig{
		Bucket:   "yelpcamp-images",
		PageSize: 2,
	})
	return svc, repo, storage, geocoder
}

func jpegUpload(name string) ImageUpload {
	data := []byte("fake jpeg bytes")
	return ImageUpload{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		FileName:    name,
		ContentType: "image/jpeg",
	}
}

func validInput() CampgroundInput {
	return CampgroundInput{
		Title:       "Misty Hollow",
		Price:       25,
		Description: "Pines, a creek, and no cell signal.",
		Location:    "Bend, Oregon",
	}
}

func TestCampgroundService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _, storage, _ := newCampgroundFixture()
	authorID := uuid.New()

	campground, err := svc.Create(ctx, authorID, validInput(), []ImageUpload{jpegUpload("a.jpg"), jpegUpload("b.jpg")})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if campground.AuthorID != authorID {
		t.Fatalf("expected author %s, got %s", authorID, campground.AuthorID)
	}
	if campground.Longitude == 0 || campground.Latitude == 0 {
		t.Fatalf("expected geocoded coordinates, got %f/%f", campground.Longitude, campground.Latitude)
	}
	if len(campground.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(campground.Images))
	}
	for i, img := range campground.Images {
		if img.Position != i {
			t.Fatalf("expected image %d at position %d, got %d", i, i, img.Position)
		}
		// Object keys are derived from the persisted campground id.
		wantPrefix := "campgrounds/" + campground.ID.String() + "/"
		if !strings.HasPrefix(img.ObjectKey, wantPrefix) {
			t.Fatalf("object key %q does not match record id %s", img.ObjectKey, campground.ID)
		}
	}
	if storage.objectCount() != 2 {
		t.Fatalf("expected 2 stored objects, got %d", storage.objectCount())
	}
}

func TestCampgroundService_CreateUnknownLocation(t *testing.T) {
	ctx := context.Background()
	svc, repo, storage, _ := newCampgroundFixture()

	input := validInput()
	input.Location = "Nowhere In Particular"
	_, err := svc.Create(ctx, uuid.New(), input, []ImageUpload{jpegUpload("a.jpg")})
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Fatalf("expected no campgrounds persisted, got %d", n)
	}
	if storage.objectCount() != 0 {
		t.Fatalf("expected no objects uploaded, got %d", storage.objectCount())
	}
}

func TestCampgroundService_CreateRollsBackAssetsOnInsertFailure(t *testing.T) {
	ctx := context.Background()
	svc, repo, storage, _ := newCampgroundFixture()
	repo.createErr = fmt.Errorf("connection reset")

	_, err := svc.Create(ctx, uuid.New(), validInput(), []ImageUpload{jpegUpload("a.jpg")})
	if err == nil {
		t.Fatalf("expected error from failed insert")
	}
	if storage.objectCount() != 0 {
		t.Fatalf("expected uploaded assets removed after insert failure, got %d objects", storage.objectCount())
	}
}

func TestCampgroundService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newCampgroundFixture()

	cases := []struct {
		name    string
		mutate  func(*CampgroundInput)
		uploads []ImageUpload
	}{
		{"missing title", func(in *CampgroundInput) { in.Title = "  " }, nil},
		{"missing location", func(in *CampgroundInput) { in.Location = "" }, nil},
		{"negative price", func(in *CampgroundInput) { in.Price = -1 }, nil},
		{"unsupported image type", func(in *CampgroundInput) {}, []ImageUpload{{
			Reader: bytes.NewReader([]byte("gif")), Size: 3, FileName: "x.gif", ContentType: "image/gif",
		}}},
	}
	for _, tc := range cases {
		input := validInput()
		tc.mutate(&input)
		_, err := svc.Create(ctx, uuid.New(), input, tc.uploads)
		if !errors.Is(err, ErrCampgroundValidation) {
			t.Fatalf("%s: expected ErrCampgroundValidation, got %v", tc.name, err)
		}
	}
}

func TestCampgroundService_GetMissing(t *testing.T) {
	svc, _, _, _ := newCampgroundFixture()
	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrCampgroundNotFound) {
		t.Fatalf("expected ErrCampgroundNotFound, got %v", err)
	}
}

func TestCampgroundService_UpdateRequiresAuthor(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newCampgroundFixture()

	campground, err := svc.Create(ctx, uuid.New(), validInput(), nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err = svc.Update(ctx, campground.ID, uuid.New(), validInput(), nil, nil)
	if !errors.Is(err, ErrNotCampgroundAuthor) {
		t.Fatalf("expected ErrNotCampgroundAuthor, got %v", err)
	}
}

func TestCampgroundService_UpdateGeocodesOnlyOnLocationChange(t *testing.T) {
	ctx := context.Background()
	svc, _, _, geocoder := newCampgroundFixture()
	authorID := uuid.New()

	campground, err := svc.Create(ctx, authorID, validInput(), nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	callsAfterCreate := geocoder.calls

	// Same location: no extra geocode call.
	if _, err := svc.Update(ctx, campground.ID, authorID, validInput(), nil, nil); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if geocoder.calls != callsAfterCreate {
		t.Fatalf("expected no geocode call for unchanged location, got %d extra", geocoder.calls-callsAfterCreate)
	}

	// New location: one extra call, coordinates move.
	input := validInput()
	input.Location = "Moab, Utah"
	updated, err := svc.Update(ctx, campground.ID, authorID, input, nil, nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if geocoder.calls != callsAfterCreate+1 {
		t.Fatalf("expected one geocode call for changed location, got %d", geocoder.calls-callsAfterCreate)
	}
	if updated.Latitude == campground.Latitude && updated.Longitude == campground.Longitude {
		t.Fatalf("expected coordinates to change with the location")
	}
}

func TestCampgroundService_UpdateRemovesImageRecordsBeforeAssets(t *testing.T) {
	ctx := context.Background()
	svc, _, storage, _ := newCampgroundFixture()
	authorID := uuid.New()

	campground, err := svc.Create(ctx, authorID, validInput(), []ImageUpload{jpegUpload("a.jpg"), jpegUpload("b.jpg")})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Storage refuses removals; the database record must still shrink.
	storage.removeErr = fmt.Errorf("storage unavailable")

	updated, err := svc.Update(ctx, campground.ID, authorID, validInput(), nil, []string{campground.Images[0].ObjectKey})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(updated.Images) != 1 {
		t.Fatalf("expected 1 image after removal, got %d", len(updated.Images))
	}
	if updated.Images[0].ObjectKey != campground.Images[1].ObjectKey {
		t.Fatalf("wrong image kept: %s", updated.Images[0].ObjectKey)
	}
}

func TestCampgroundService_UpdateAppendsImagesAfterExisting(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newCampgroundFixture()
	authorID := uuid.New()

	campground, err := svc.Create(ctx, authorID, validInput(), []ImageUpload{jpegUpload("a.jpg")})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updated, err := svc.Update(ctx, campground.ID, authorID, validInput(), []ImageUpload{jpegUpload("b.jpg")}, nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(updated.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(updated.Images))
	}
	if updated.Images[1].Position != 1 {
		t.Fatalf("expected appended image at position 1, got %d", updated.Images[1].Position)
	}
}

func TestCampgroundService_UpdateEnforcesImageLimit(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCampgroundRepo()
	storage := newMemoryStorage()
	geocoder := &staticGeocoder{points: map[string]geocode.Result{
		"Bend, Oregon": {Longitude: -121.3153, Latitude: 44.0582},
	}}
	svc := NewCampgroundService(repo, storage, geocoder, zerolog.Nop(), CampgroundServiceConfig{
		Bucket:    "yelpcamp-images",
		MaxImages: 2,
	})
	authorID := uuid.New()

	campground, err := svc.Create(ctx, authorID, validInput(), []ImageUpload{jpegUpload("a.jpg"), jpegUpload("b.jpg")})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	_, err = svc.Update(ctx, campground.ID, authorID, validInput(), []ImageUpload{jpegUpload("c.jpg")}, nil)
	if !errors.Is(err, ErrCampgroundValidation) {
		t.Fatalf("expected ErrCampgroundValidation over the image limit, got %v", err)
	}

	// Deleting one at the same time makes room.
	_, err = svc.Update(ctx, campground.ID, authorID, validInput(), []ImageUpload{jpegUpload("c.jpg")}, []string{campground.Images[0].ObjectKey})
	if err != nil {
		t.Fatalf("Update with simultaneous delete returned error: %v", err)
	}
}

func TestCampgroundService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	svc, repo, storage, _ := newCampgroundFixture()
	authorID := uuid.New()

	campground, err := svc.Create(ctx, authorID, validInput(), []ImageUpload{jpegUpload("a.jpg")})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	repo.mu.Lock()
	repo.reviews[campground.ID] = []domain.Review{{ID: uuid.New(), CampgroundID: campground.ID, Rating: 5, Body: "great"}}
	repo.mu.Unlock()

	if err := svc.Delete(ctx, campground.ID, uuid.New()); !errors.Is(err, ErrNotCampgroundAuthor) {
		t.Fatalf("expected ErrNotCampgroundAuthor for stranger, got %v", err)
	}

	if err := svc.Delete(ctx, campground.ID, authorID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(ctx, campground.ID); !errors.Is(err, ErrCampgroundNotFound) {
		t.Fatalf("expected campground gone, got %v", err)
	}
	if storage.objectCount() != 0 {
		t.Fatalf("expected assets removed, got %d objects", storage.objectCount())
	}
}

func TestCampgroundService_ListClampsPage(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newCampgroundFixture()
	authorID := uuid.New()

	for i := 0; i < 3; i++ {
		input := validInput()
		input.Title = fmt.Sprintf("Camp %d", i)
		if _, err := svc.Create(ctx, authorID, input, nil); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	// Page size 2, 3 campgrounds: 2 pages.
	page, err := svc.List(ctx, 99)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Page != 2 || page.TotalPages != 2 {
		t.Fatalf("expected clamp to page 2 of 2, got page %d of %d", page.Page, page.TotalPages)
	}
	if len(page.Campgrounds) != 1 {
		t.Fatalf("expected 1 campground on the last page, got %d", len(page.Campgrounds))
	}

	page, err = svc.List(ctx, -5)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Page != 1 {
		t.Fatalf("expected clamp to page 1, got %d", page.Page)
	}
}
