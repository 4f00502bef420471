package domain

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const snippetMaxRunes = 100

type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

type Campground struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Price       float64   `db:"price" json:"price"`
	Description string    `db:"description" json:"description"`
	Location    string    `db:"location" json:"location"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	AuthorID    uuid.UUID `db:"author_id" json:"author_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	AuthorUsername *string `db:"author_username" json:"-"`

	Images  []CampgroundImage `json:"images,omitempty"`
	Reviews []Review          `json:"reviews,omitempty"`
}

func (c *Campground) Geometry() GeoPoint {
	return GeoPoint{Longitude: c.Longitude, Latitude: c.Latitude}
}

// Snippet returns a truncated description for map popups and index cards.
func (c *Campground) Snippet() string {
	return truncateRunes(c.Description, snippetMaxRunes)
}

type CampgroundImage struct {
	ID           uuid.UUID `db:"id" json:"id"`
	CampgroundID uuid.UUID `db:"campground_id" json:"campground_id"`
	URL          string    `db:"url" json:"url"`
	ObjectKey    string    `db:"object_key" json:"-"`
	Position     int       `db:"position" json:"position"`
}

// Thumbnail derives a width-constrained variant of the image URL for edit
// views. The resize hint is a query parameter understood by the image proxy
// fronting the object store.
func (i CampgroundImage) Thumbnail() string {
	u, err := url.Parse(i.URL)
	if err != nil {
		return i.URL
	}
	q := u.Query()
	q.Set("width", "200")
	u.RawQuery = q.Encode()
	return u.String()
}

// CampgroundSummary is the map-friendly projection of a campground. The index
// map always shows the full set, independent of the pagination window.
type CampgroundSummary struct {
	ID       uuid.UUID `db:"id" json:"id"`
	Title    string    `db:"title" json:"title"`
	Location string    `db:"location" json:"location"`
	Geometry GeoPoint  `json:"geometry"`
	Snippet  string    `json:"snippet"`
}

type CampgroundPage struct {
	Campgrounds []Campground
	Page        int
	PageSize    int
	TotalCount  int
	TotalPages  int
}

const pageWindowSize = 5

// Window returns up to five page numbers centered on the current page and
// clamped at both ends of the range.
func (p CampgroundPage) Window() []int {
	if p.TotalPages < 1 {
		return []int{1}
	}
	start := p.Page - pageWindowSize/2
	if start < 1 {
		start = 1
	}
	end := start + pageWindowSize - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - pageWindowSize + 1
		if start < 1 {
			start = 1
		}
	}
	window := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		window = append(window, n)
	}
	return window
}

func (p CampgroundPage) HasPrev() bool { return p.Page > 1 }
func (p CampgroundPage) HasNext() bool { return p.Page < p.TotalPages }
func (p CampgroundPage) PrevPage() int { return p.Page - 1 }
func (p CampgroundPage) NextPage() int { return p.Page + 1 }

func truncateRunes(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "..."
}
