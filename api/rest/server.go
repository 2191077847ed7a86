package rest

import (
	"strings"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"imgchop/config"
)

// NewApp builds the fiber app with middleware, operational routes and the
// image controller.
func NewApp(cfg *config.Config, service imageService, gatherer prometheus.Gatherer, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		BodyLimit:    cfg.BodyLimit(),
		ErrorHandler: ErrorHandler(logger),
	})

	app.Use(
		recover.New(),
		requestid.New(requestid.Config{Generator: uuid.NewString}),
		otelfiber.Middleware(),
		fiberzap.New(fiberzap.Config{Logger: logger}),
		// encoded images don't shrink further
		compress.New(compress.Config{
			Next:  isImageRoute,
			Level: compress.LevelBestSpeed,
		}),
		etag.New(etag.Config{
			Next: func(c *fiber.Ctx) bool {
				return c.Method() != fiber.MethodGet || isImageRoute(c)
			},
		}),
	)

	if cfg.RateLimitEnabled() {
		app.Use(limiter.New(limiter.Config{
			Next: func(c *fiber.Ctx) bool {
				return c.IP() == "127.0.0.1"
			},
			Max:        cfg.RateLimitMaxRequests,
			Expiration: cfg.RateLimitDuration(),
			LimitReached: func(c *fiber.Ctx) error {
				return fiber.ErrTooManyRequests
			},
		}))
	}

	if cfg.SwaggerFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.SwaggerFile,
			Path:     "docs",
			Title:    cfg.AppName,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	NewImageController(app, cfg, service, logger)

	return app
}

func isImageRoute(c *fiber.Ctx) bool {
	return c.Method() == fiber.MethodPost || strings.HasPrefix(c.Path(), "/images/")
}
