package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carewell/health-portal/controllers/doctor"
	"github.com/carewell/health-portal/middleware"
)

// SetupDoctorRoutes configures the doctor portal routes
func SetupDoctorRoutes(app *fiber.App) {
	doctorGroup := app.Group("/doctor", middleware.Protected(), middleware.RequireRole("doctor"))

	// Schedule and availability
	doctorGroup.Get("/schedule", doctor.GetScheduleStatus)
	doctorGroup.Post("/schedule", doctor.SetSchedule)
	doctorGroup.Post("/schedule/online", doctor.GoOnline)
	doctorGroup.Post("/schedule/offline", doctor.GoOffline)
	doctorGroup.Post("/schedule/extend", doctor.ExtendSchedule)
	doctorGroup.Patch("/schedule/break", doctor.UpdateBreak)
	doctorGroup.Post("/schedule/ack", doctor.AcknowledgePrompt)

	// Appointments
	doctorGroup.Get("/appointments/upcoming", doctor.GetUpcomingAppointments)
	doctorGroup.Get("/appointments/history", doctor.GetAppointmentHistory)
	doctorGroup.Patch("/appointments/:id/status", doctor.UpdateAppointmentStatus)

	// Dashboard
	doctorGroup.Get("/dashboard", doctor.GetDashboardOverview)
	doctorGroup.Get("/dashboard/recent", doctor.GetRecentAppointments)

	// Profile and fees
	doctorGroup.Get("/profile", doctor.GetProfile)
	doctorGroup.Patch("/profile", doctor.UpdateProfile)
	doctorGroup.Post("/profile/credential", doctor.UploadCredentialDocument)
	doctorGroup.Post("/fees/request", doctor.RequestFeeChange)
	doctorGroup.Get("/fees/requests", doctor.GetFeeRequests)
}
