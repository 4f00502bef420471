package web

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// NewHTTPErrorHandler renders the shared error page instead of echo's JSON
// default. Unexpected errors are logged with the request path; the visitor
// only ever sees the generic message.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Oh no, something went wrong!"
		if httpErr, ok := err.(*echo.HTTPError); ok {
			status = httpErr.Code
			if status == http.StatusNotFound {
				message = "Page Not Found"
			}
		}

		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("request failed")
		}

		renderErr := c.Render(status, "error", echo.Map{
			"Title":   "Error",
			"Message": message,
		})
		if renderErr != nil {
			log.Error().Err(renderErr).Msg("error page render failed")
			_ = c.String(status, message)
		}
	}
}
