package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/DanielPodolsky/YelpCamp/internal/service"
)

type AuthHandler struct {
	auth          *service.AuthService
	log           zerolog.Logger
	secureCookies bool
}

func NewAuthHandler(auth *service.AuthService, log zerolog.Logger, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, log: log, secureCookies: secureCookies}
}

func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return c.Render(http.StatusOK, "users/register", echo.Map{
		"Title": "Register",
	})
}

func (h *AuthHandler) Register(c echo.Context) error {
	var form RegisterForm
	if err := c.Bind(&form); err != nil {
		AddFlash(c, FlashError, "Invalid form submission")
		return c.Redirect(http.StatusFound, "/register")
	}
	if err := ValidateForm(form); err != nil {
		AddFlash(c, FlashError, err.Error())
		return c.Redirect(http.StatusFound, "/register")
	}

	user, creds, err := h.auth.Register(c.Request().Context(), form.Username, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			AddFlash(c, FlashError, err.Error())
			return c.Redirect(http.StatusFound, "/register")
		}
		h.log.Error().Err(err).Msg("register failed")
		return err
	}

	h.setSessionCookie(c, creds)
	h.log.Info().Str("username", user.Username).Msg("registered and signed in")
	AddFlash(c, FlashSuccess, "Welcome to Yelp Camp!")
	return c.Redirect(http.StatusFound, "/campgrounds")
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "users/login", echo.Map{
		"Title": "Login",
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var form LoginForm
	if err := c.Bind(&form); err != nil {
		AddFlash(c, FlashError, "Invalid form submission")
		return c.Redirect(http.StatusFound, "/login")
	}
	if err := ValidateForm(form); err != nil {
		AddFlash(c, FlashError, err.Error())
		return c.Redirect(http.StatusFound, "/login")
	}

	_, creds, err := h.auth.Login(c.Request().Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			AddFlash(c, FlashError, err.Error())
			return c.Redirect(http.StatusFound, "/login")
		}
		h.log.Error().Err(err).Msg("login failed")
		return err
	}

	h.setSessionCookie(c, creds)
	AddFlash(c, FlashSuccess, "Welcome back!")

	target := PopReturnTo(c)
	if target == "" {
		target = "/campgrounds"
	}
	return c.Redirect(http.StatusFound, target)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.auth.Logout(c.Request().Context(), cookie.Value); err != nil {
			h.log.Warn().Err(err).Msg("session deactivation failed")
		}
	}
	h.clearSessionCookie(c)
	AddFlash(c, FlashSuccess, "Goodbye!")
	return c.Redirect(http.StatusFound, "/campgrounds")
}

func (h *AuthHandler) setSessionCookie(c echo.Context, creds *service.Credentials) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    creds.CookieToken,
		Path:     "/",
		Expires:  creds.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
