package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carewell/health-portal/controllers/admin"
	"github.com/carewell/health-portal/middleware"
)

// SetupAdminRoutes configures the admin portal routes
func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.Protected(), middleware.RequireRole("admin"))

	// User management
	adminGroup.Post("/users", admin.CreateUser)
	adminGroup.Get("/users", admin.GetUsers)
	adminGroup.Get("/users/:id", admin.GetUser)
	adminGroup.Patch("/users/:id", admin.UpdateUser)
	adminGroup.Delete("/users/:id", admin.DeleteUser)

	// Doctor verification
	adminGroup.Get("/doctors/pending", admin.GetPendingDoctors)
	adminGroup.Post("/doctors/:id/:decision", admin.VerifyDoctor)

	// Fee approvals
	adminGroup.Get("/fees/pending", admin.GetPendingFeeRequests)
	adminGroup.Post("/fees/:id/:decision", admin.DecideFeeRequest)

	// Dashboard
	adminGroup.Get("/dashboard", admin.GetPlatformStats)
}
