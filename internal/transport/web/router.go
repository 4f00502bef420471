package web

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/DanielPodolsky/YelpCamp/internal/observability"
	"github.com/DanielPodolsky/YelpCamp/internal/service"
)

type RouterConfig struct {
	Auth        *service.AuthService
	Campgrounds *service.CampgroundService
	Reviews     *service.ReviewService
	Log         zerolog.Logger
	Metrics     *prometheus.Registry

	// SecureCookies marks session cookies Secure. Off in local dev where
	// the app is served over plain HTTP.
	SecureCookies bool
}

func NewRouter(cfg RouterConfig) (*echo.Echo, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	e.Pre(MethodOverride)
	e.Use(middleware.Recover())
	e.Use(RequestLogger(cfg.Log))
	e.Use(LoadUser(cfg.Auth))

	campgroundHandler := NewCampgroundHandler(cfg.Campgrounds, cfg.Log)
	reviewHandler := NewReviewHandler(cfg.Reviews, cfg.Log)
	authHandler := NewAuthHandler(cfg.Auth, cfg.Log, cfg.SecureCookies)

	e.GET("/", campgroundHandler.Home)
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(observability.MetricsHandler(cfg.Metrics)))
	}

	e.GET("/register", authHandler.RegisterForm)
	e.POST("/register", authHandler.Register)
	e.GET("/login", authHandler.LoginForm)
	e.POST("/login", authHandler.Login)
	e.GET("/logout", authHandler.Logout)

	requireCampgroundAuthor := RequireCampgroundAuthor(cfg.Campgrounds)
	requireReviewAuthor := RequireReviewAuthor(cfg.Reviews)

	e.GET("/campgrounds", campgroundHandler.Index)
	e.POST("/campgrounds", campgroundHandler.Create, RequireLogin)
	e.GET("/campgrounds/new", campgroundHandler.NewForm, RequireLogin)
	e.GET("/campgrounds/:id", campgroundHandler.Show)
	e.GET("/campgrounds/:id/edit", campgroundHandler.EditForm, RequireLogin, requireCampgroundAuthor)
	e.PUT("/campgrounds/:id", campgroundHandler.Update, RequireLogin, requireCampgroundAuthor)
	e.DELETE("/campgrounds/:id", campgroundHandler.Delete, RequireLogin, requireCampgroundAuthor)

	e.POST("/campgrounds/:id/reviews", reviewHandler.Create, RequireLogin)
	e.DELETE("/campgrounds/:id/reviews/:reviewId", reviewHandler.Delete, RequireLogin, requireReviewAuthor)

	return e, nil
}
