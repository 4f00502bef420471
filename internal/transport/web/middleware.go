package web

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/DanielPodolsky/YelpCamp/internal/domain"
	"github.com/DanielPodolsky/YelpCamp/internal/service"
)

const sessionCookieName = "yc_session"

const (
	contextUserKey       = "currentUser"
	contextCampgroundKey = "campground"
)

// CurrentUser returns the authenticated user attached by LoadUser, if any.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok && user != nil
}

func campgroundFromContext(c echo.Context) (*domain.Campground, bool) {
	campground, ok := c.Get(contextCampgroundKey).(*domain.Campground)
	return campground, ok && campground != nil
}

// LoadUser resolves the session cookie into a user and attaches it to the
// request context. Anonymous and stale-cookie requests pass through.
func LoadUser(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(sessionCookieName)
			if err == nil && cookie.Value != "" {
				user, err := auth.Authenticate(c.Request().Context(), cookie.Value)
				if err == nil {
					c.Set(contextUserKey, user)
				}
			}
			return next(c)
		}
	}
}

// RequireLogin redirects anonymous visitors to the login page, remembering
// where they were headed.
func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := CurrentUser(c)
		if !ok || user == nil {
			RememberReturnTo(c, c.Request().RequestURI)
			AddFlash(c, FlashError, "You must be signed in first!")
			return c.Redirect(http.StatusFound, "/login")
		}
		return next(c)
	}
}

// RequireCampgroundAuthor loads the campground named by the :id param and
// rejects users other than its author before the handler runs. The loaded
// campground is attached to the context so handlers do not fetch it twice.
func RequireCampgroundAuthor(campgrounds *service.CampgroundService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				RememberReturnTo(c, c.Request().RequestURI)
				AddFlash(c, FlashError, "You must be signed in first!")
				return c.Redirect(http.StatusFound, "/login")
			}
			id, err := uuid.Parse(c.Param("id"))
			if err != nil {
				AddFlash(c, FlashError, "Cannot find that campground!")
				return c.Redirect(http.StatusFound, "/campgrounds")
			}
			campground, err := campgrounds.Get(c.Request().Context(), id)
			if err != nil {
				AddFlash(c, FlashError, "Cannot find that campground!")
				return c.Redirect(http.StatusFound, "/campgrounds")
			}
			if campground.AuthorID != user.ID {
				AddFlash(c, FlashError, "You do not have permission to do that!")
				return c.Redirect(http.StatusFound, "/campgrounds/"+campground.ID.String())
			}
			c.Set(contextCampgroundKey, campground)
			return next(c)
		}
	}
}

// RequireReviewAuthor rejects users other than the review's author. Routes
// using it carry both :id (campground) and :reviewId params. The service
// layer re-checks ownership on delete; this keeps unauthorized requests from
// reaching it at all.
func RequireReviewAuthor(reviews *service.ReviewService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				RememberReturnTo(c, c.Request().RequestURI)
				AddFlash(c, FlashError, "You must be signed in first!")
				return c.Redirect(http.StatusFound, "/login")
			}
			campgroundPath := "/campgrounds/" + c.Param("id")
			reviewID, err := uuid.Parse(c.Param("reviewId"))
			if err != nil {
				AddFlash(c, FlashError, "Cannot find that review!")
				return c.Redirect(http.StatusFound, campgroundPath)
			}
			review, err := reviews.Get(c.Request().Context(), reviewID)
			if err != nil {
				AddFlash(c, FlashError, "Cannot find that review!")
				return c.Redirect(http.StatusFound, campgroundPath)
			}
			if review.AuthorID != user.ID {
				AddFlash(c, FlashError, "You do not have permission to do that!")
				return c.Redirect(http.StatusFound, campgroundPath)
			}
			return next(c)
		}
	}
}

// MethodOverride lets HTML forms issue PUT and DELETE through a hidden
// _method field on a POST. Registered as pre-routing middleware so the
// rewritten method is what the router matches on.
func MethodOverride(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if req.Method == http.MethodPost {
			switch c.FormValue("_method") {
			case http.MethodPut:
				req.Method = http.MethodPut
			case http.MethodDelete:
				req.Method = http.MethodDelete
			}
		}
		return next(c)
	}
}
