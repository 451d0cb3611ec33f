package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/carewell/health-portal/controllers/patient"
	"github.com/carewell/health-portal/middleware"
)

// SetupPatientRoutes configures the patient portal routes
func SetupPatientRoutes(app *fiber.App) {
	patientGroup := app.Group("/patient", middleware.Protected())

	// Doctor discovery is read-only and open to any signed-in user
	patientGroup.Get("/doctors", patient.GetDoctors)
	patientGroup.Get("/doctors/:id", patient.GetDoctorByID)

	// Appointments
	patientGroup.Post("/appointments", patient.BookAppointment)
	patientGroup.Get("/appointments", patient.GetMyAppointments)
	patientGroup.Get("/appointments/:ref", patient.GetAppointment)
	patientGroup.Post("/appointments/:ref/cancel", patient.CancelAppointment)

	// Profile
	patientGroup.Get("/profile", patient.GetProfile)
	patientGroup.Patch("/profile", patient.UpdateProfile)
	patientGroup.Post("/profile/picture", patient.UpdateProfilePicture)
}
