package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/carewell/health-portal/availability"
	"github.com/carewell/health-portal/cron"
	"github.com/carewell/health-portal/db"
	"github.com/carewell/health-portal/redis"
	"github.com/carewell/health-portal/routes"
)

func main() {
	app := fiber.New()
	db.Init()
	db.Migrate()
	redis.InitRedis()

	availability.Init(
		availability.NewGormStore(db.DB),
		availability.NewSnapshotStore(redis.Client),
	)
	monitor := availability.NewMonitor(availability.Doctors, availability.DefaultInterval)
	monitor.Start(context.Background())

	cron.StartCronJobs()

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello, World!")
	})
	routes.SetupAuthRoutes(app)
	routes.SetupRBACRoutes(app)
	routes.SetupDoctorRoutes(app)
	routes.SetupPatientRoutes(app)
	routes.SetupAdminRoutes(app)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down...")
		monitor.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":8000"); err != nil {
		log.Fatal(err)
	}
}
