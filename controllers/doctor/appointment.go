package doctor

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/carewell/health-portal/db"
	"github.com/carewell/health-portal/models"
	"github.com/carewell/health-portal/utils"
)

// GetUpcomingAppointments lists the doctor's pending and confirmed
// appointments from now onwards
func GetUpcomingAppointments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var appointments []models.Appointment
	if err := db.DB.Preload("Patient").
		Where("doctor_id = ? AND status IN (?) AND start_time >= ?",
			userID, []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed}, time.Now()).
		Order("start_time asc").
		Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch appointments",
			Error:   err.Error(),
		})
	}

	return c.JSON(appointments)
}

// GetAppointmentHistory lists completed and canceled appointments
func GetAppointmentHistory(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var appointments []models.Appointment
	if err := db.DB.Preload("Patient").
		Where("doctor_id = ? AND status IN (?)",
			userID, []models.AppointmentStatus{models.StatusCompleted, models.StatusCanceled}).
		Order("start_time desc").
		Limit(c.QueryInt("limit", 50)).
		Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch appointment history",
			Error:   err.Error(),
		})
	}

	return c.JSON(appointments)
}

// UpdateAppointmentStatus moves an appointment through its lifecycle
// (confirm, complete, cancel). Invalid transitions are rejected.
func UpdateAppointmentStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	id := c.Params("id")
	var appointment models.Appointment
	if err := db.DB.Preload("Patient").First(&appointment, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Appointment not found",
		})
	}
	if appointment.DoctorID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "This appointment belongs to another doctor",
		})
	}

	type StatusInput struct {
		Status models.AppointmentStatus `json:"status"`
	}
	input := new(StatusInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	if err := appointment.UpdateStatus(db.DB, input.Status); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(appointment)
}
