package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"github.com/itfreelance/api/internal/config"
	"github.com/itfreelance/api/internal/handlers"
	"github.com/itfreelance/api/internal/middleware"
)

// New builds the app with the full route table. main and the tests share
// this so both run the exact same stack.
func New(gdb *gorm.DB, cfg config.Config) *fiber.App {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))
	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	authH := handlers.NewAuthHandler(gdb, cfg.JWTSecret, cfg.JWTExpiresMin)
	categoryH := handlers.NewCategoryHandler(gdb)
	projectH := handlers.NewProjectHandler(gdb)
	offerH := handlers.NewOfferHandler(gdb)
	reviewH := handlers.NewReviewHandler(gdb)
	metricsH := handlers.NewMetricsHandler(gdb)

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Get("/categories", categoryH.List)
	api.Get("/projects", projectH.List)
	api.Get("/projects/:id", projectH.Get)
	api.Get("/projects/:id/offers", offerH.ListByProject)
	api.Get("/projects/:id/reviews", reviewH.ListByProject)

	// protected (bearer credential)
	protected := api.Group("/", middleware.RequireAuth(gdb, cfg.JWTSecret))

	protected.Post("/auth/logout", authH.Logout)
	protected.Get("/auth/me", authH.Me)

	// categories: admin-only writes, policy decides
	protected.Post("/categories", categoryH.Create)
	protected.Put("/categories/:id", categoryH.Update)
	protected.Delete("/categories/:id", categoryH.Delete)

	// projects: client-owned
	protected.Post("/projects", projectH.Create)
	protected.Put("/projects/:id", projectH.Update)
	protected.Delete("/projects/:id", projectH.Delete)

	// offers: freelancer-owned
	protected.Post("/projects/:id/offers", offerH.Create)
	protected.Put("/offers/:id", offerH.Update)
	protected.Delete("/offers/:id", offerH.Delete)

	// reviews
	protected.Post("/projects/:id/reviews", reviewH.Create)

	// metrics: admin-only
	protected.Get("/metrics/dashboard", metricsH.Dashboard)

	return app
}
