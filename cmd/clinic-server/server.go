package main

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/identity"
	"github.com/clinic/clinic/internal/domain/inbox"
	"github.com/clinic/clinic/internal/domain/medication"
	"github.com/clinic/clinic/internal/domain/scheduling"
	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/middleware"
	"github.com/clinic/clinic/internal/platform/static"
	"github.com/clinic/clinic/internal/platform/validation"
)

// buildServer wires middleware, domain routes and the frontend onto a new
// echo instance. The caller owns database.
func buildServer(cfg *config.Config, database *db.DB, logger zerolog.Logger) (*echo.Echo, error) {
	hasher, err := identity.NewHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(logger)
	e.Validator = validation.New()

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	e.Use(middleware.RateLimit(rateLimitCfg))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// The request connection is taken on the first transaction and held
	// until the handler returns. Health checks and assets skip the slot entirely.
	e.Use(apiOnly(middleware.SecurityHeaders()))
	e.Use(apiOnly(db.ConnMiddleware(database)))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(database))

	// Domain services. Other domains check user references through the
	// identity service so the lookup joins their transaction.
	userSvc := identity.NewService(database, identity.NewUserRepoSQL(database), hasher)
	apptSvc := scheduling.NewService(database, scheduling.NewAppointmentRepoSQL(database), userSvc)
	rxSvc := medication.NewService(database, medication.NewPrescriptionRepoSQL(database), userSvc)
	msgSvc := inbox.NewService(database, inbox.NewMessageRepoSQL(database), userSvc)

	api := e.Group("")
	identity.NewHandler(userSvc).RegisterRoutes(api)
	scheduling.NewHandler(apptSvc).RegisterRoutes(api)
	medication.NewHandler(rxSvc).RegisterRoutes(api)
	inbox.NewHandler(msgSvc).RegisterRoutes(api)

	if static.Register(e, cfg.StaticDir) {
		logger.Info().Str("dir", cfg.StaticDir).Msg("serving frontend")
	}

	return e, nil
}

// apiOnly applies mw to matched API routes and skips health checks, static
// assets and unmatched paths.
func apiOnly(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		wrapped := mw(next)
		return func(c echo.Context) error {
			if isAPIRoute(c.Path()) {
				return wrapped(c)
			}
			return next(c)
		}
	}
}

func isAPIRoute(route string) bool {
	switch {
	case route == "", route == "/*":
		return false
	case route == "/health" || strings.HasPrefix(route, "/health/"):
		return false
	case route == "/static" || strings.HasPrefix(route, "/static/"):
		return false
	default:
		return true
	}
}
