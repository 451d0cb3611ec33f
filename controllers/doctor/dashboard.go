package doctor

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/carewell/health-portal/db"
	"github.com/carewell/health-portal/models"
)

// GetDashboardOverview returns the doctor's consultation statistics
func GetDashboardOverview(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var statistics struct {
		TotalAppointments int64     `json:"total_appointments"`
		PendingCount      int64     `json:"pending_count"`
		ConfirmedCount    int64     `json:"confirmed_count"`
		CompletedCount    int64     `json:"completed_count"`
		CanceledCount     int64     `json:"canceled_count"`
		TotalRevenue      float64   `json:"total_revenue"`
		TodayCount        int64     `json:"today_count"`
		LastUpdated       time.Time `json:"last_updated"`
	}

	countByStatus := func(status models.AppointmentStatus, dest *int64) {
		db.DB.Model(&models.Appointment{}).
			Where("doctor_id = ? AND status = ?", userID, status).
			Count(dest)
	}

	db.DB.Model(&models.Appointment{}).Where("doctor_id = ?", userID).Count(&statistics.TotalAppointments)
	countByStatus(models.StatusPending, &statistics.PendingCount)
	countByStatus(models.StatusConfirmed, &statistics.ConfirmedCount)
	countByStatus(models.StatusCompleted, &statistics.CompletedCount)
	countByStatus(models.StatusCanceled, &statistics.CanceledCount)

	// Today's consultations
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	db.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND start_time BETWEEN ? AND ?", userID, dayStart, dayStart.AddDate(0, 0, 1)).
		Count(&statistics.TodayCount)

	// Revenue from completed consultations, using the fee snapshotted at
	// booking time.
	type RevenueResult struct {
		TotalRevenue float64
	}
	var revenueResult RevenueResult
	db.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND status = ?", userID, models.StatusCompleted).
		Select("SUM(consultation_fee) as total_revenue").
		Scan(&revenueResult)
	statistics.TotalRevenue = revenueResult.TotalRevenue

	statistics.LastUpdated = time.Now()

	return c.JSON(statistics)
}

// GetRecentAppointments returns the doctor's most recent appointments
func GetRecentAppointments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	limit := 5 // Default limit
	if c.Query("limit") != "" {
		parsedLimit := c.QueryInt("limit")
		if parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	var appointments []models.Appointment
	if err := db.DB.Preload("Patient").
		Where("doctor_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(appointments)
}
