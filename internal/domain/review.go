package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID           uuid.UUID `db:"id" json:"id"`
	CampgroundID uuid.UUID `db:"campground_id" json:"campground_id"`
	AuthorID     uuid.UUID `db:"author_id" json:"author_id"`
	Body         string    `db:"body" json:"body"`
	Rating       int       `db:"rating" json:"rating"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	AuthorUsername *string `db:"author_username" json:"-"`
}

func (r *Review) AuthorName() string {
	if r.AuthorUsername != nil {
		return *r.AuthorUsername
	}
	return "anonymous"
}
