// Package server contains the HTTP handlers and routing for the API.
package server

import (
	"context"
	"fmt"
	"time"

	"placehold/internal/auth"
	"placehold/internal/cache"
	"placehold/internal/config"
	"placehold/internal/database"
	"placehold/internal/middleware"
	"placehold/internal/repository"
	"placehold/internal/seed"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	userRepo       repository.UserRepository
	tokens         *auth.Codec
	validate       *validator.Validate
	promMiddleware *fiberprometheus.FiberPrometheus
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          cache.GetClient(),
		userRepo:       repository.NewUserRepository(db),
		tokens:         auth.NewCodec(cfg.JWTSecret, cfg.TokenTTL()),
		validate:       validator.New(),
		promMiddleware: fiberprometheus.New("placehold"),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Request ID for tracing
	app.Use(requestid.New())

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware
	app.Use(middleware.StructuredLogger())

	// OpenTelemetry request spans
	app.Use(middleware.Tracing())

	// HTTP metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: s.config.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

// SetupRoutes configures all routes for the application.
// Tokens are issued at /token but no route requires one; the CRUD surface
// is public.
func (s *Server) SetupRoutes(app *fiber.App) {
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/healthz", s.HealthCheck)

	app.Post("/token", middleware.RateLimit(s.redis, 10, 1*time.Minute, "token"), s.Login)

	app.Post("/users/", s.CreateUser)
	app.Get("/users/", s.ListUsers)
	app.Get("/users/:id", s.GetUser)
	app.Put("/users/:id", s.UpdateUser)
	app.Delete("/users/:id", s.DeleteUser)
}

// HealthCheck handles GET /healthz
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": "1.0.0",
	})
}

// RunSeeder populates an empty store before the server starts accepting
// traffic. Failures are logged by the caller and never abort startup.
func (s *Server) RunSeeder(ctx context.Context) error {
	return seed.NewSeeder(s.db, s.config.SeedURL, s.config.SeedPassword).Run(ctx)
}

// Shutdown releases server-held resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
