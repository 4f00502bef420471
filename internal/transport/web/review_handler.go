package web

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/DanielPodolsky/YelpCamp/internal/service"
)

type ReviewHandler struct {
	reviews *service.ReviewService
	log     zerolog.Logger
}

func NewReviewHandler(reviews *service.ReviewService, log zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, log: log}
}

func (h *ReviewHandler) Create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.Redirect(http.StatusFound, "/login")
	}

	campgroundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		AddFlash(c, FlashError, "Cannot find that campground!")
		return c.Redirect(http.StatusFound, "/campgrounds")
	}
	showPath := "/campgrounds/" + campgroundID.String()

	var form ReviewForm
	if err := c.Bind(&form); err != nil {
		AddFlash(c, FlashError, "Invalid form submission")
		return c.Redirect(http.StatusFound, showPath)
	}
	if err := ValidateForm(form); err != nil {
		AddFlash(c, FlashError, err.Error())
		return c.Redirect(http.StatusFound, showPath)
	}

	_, err = h.reviews.Create(c.Request().Context(), campgroundID, user.ID, service.ReviewInput{
		Body:   form.Body,
		Rating: form.Rating,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReviewValidation):
			AddFlash(c, FlashError, err.Error())
			return c.Redirect(http.StatusFound, showPath)
		case errors.Is(err, service.ErrCampgroundNotFound):
			AddFlash(c, FlashError, "Cannot find that campground!")
			return c.Redirect(http.StatusFound, "/campgrounds")
		default:
			h.log.Error().Err(err).Str("campground_id", campgroundID.String()).Msg("create review failed")
			return err
		}
	}

	AddFlash(c, FlashSuccess, "Created new review!")
	return c.Redirect(http.StatusFound, showPath)
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.Redirect(http.StatusFound, "/login")
	}

	campgroundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		AddFlash(c, FlashError, "Cannot find that campground!")
		return c.Redirect(http.StatusFound, "/campgrounds")
	}
	showPath := "/campgrounds/" + campgroundID.String()

	reviewID, err := uuid.Parse(c.Param("reviewId"))
	if err != nil {
		AddFlash(c, FlashError, "Cannot find that review!")
		return c.Redirect(http.StatusFound, showPath)
	}

	if err := h.reviews.Delete(c.Request().Context(), campgroundID, reviewID, user.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrReviewNotFound):
			AddFlash(c, FlashError, "Cannot find that review!")
		case errors.Is(err, service.ErrNotReviewAuthor):
			AddFlash(c, FlashError, "You do not have permission to do that!")
		case errors.Is(err, service.ErrCampgroundNotFound):
			AddFlash(c, FlashError, "Cannot find that campground!")
			return c.Redirect(http.StatusFound, "/campgrounds")
		default:
			h.log.Error().Err(err).Str("review_id", reviewID.String()).Msg("delete review failed")
			return err
		}
		return c.Redirect(http.StatusFound, showPath)
	}

	AddFlash(c, FlashSuccess, "Successfully deleted review")
	return c.Redirect(http.StatusFound, showPath)
}
