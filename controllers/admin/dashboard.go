package admin

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/carewell/health-portal/db"
	"github.com/carewell/health-portal/models"
)

// GetPlatformStats returns platform-wide counts for the admin dashboard
func GetPlatformStats(c *fiber.Ctx) error {
	var stats struct {
		TotalUsers          int64     `json:"total_users"`
		TotalDoctors        int64     `json:"total_doctors"`
		ApprovedDoctors     int64     `json:"approved_doctors"`
		PendingDoctors      int64     `json:"pending_doctors"`
		TotalAppointments   int64     `json:"total_appointments"`
		TodayAppointments   int64     `json:"today_appointments"`
		PendingFeeRequests  int64     `json:"pending_fee_requests"`
		CompletedThisMonth  int64     `json:"completed_this_month"`
		RevenueThisMonth    float64   `json:"revenue_this_month"`
		GeneratedAt         time.Time `json:"generated_at"`
	}

	db.DB.Model(&models.User{}).Count(&stats.TotalUsers)
	db.DB.Model(&models.DoctorProfile{}).Count(&stats.TotalDoctors)
	db.DB.Model(&models.DoctorProfile{}).
		Where("verification_status = ?", models.VerificationApproved).
		Count(&stats.ApprovedDoctors)
	db.DB.Model(&models.DoctorProfile{}).
		Where("verification_status = ?", models.VerificationPending).
		Count(&stats.PendingDoctors)
	db.DB.Model(&models.Appointment{}).Count(&stats.TotalAppointments)

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	db.DB.Model(&models.Appointment{}).
		Where("start_time BETWEEN ? AND ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Count(&stats.TodayAppointments)

	db.DB.Model(&models.FeeApproval{}).
		Where("status = ?", models.ApprovalPending).
		Count(&stats.PendingFeeRequests)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	db.DB.Model(&models.Appointment{}).
		Where("status = ? AND start_time >= ?", models.StatusCompleted, monthStart).
		Count(&stats.CompletedThisMonth)

	type RevenueResult struct {
		Total float64
	}
	var revenue RevenueResult
	db.DB.Model(&models.Appointment{}).
		Where("status = ? AND start_time >= ?", models.StatusCompleted, monthStart).
		Select("SUM(consultation_fee) as total").
		Scan(&revenue)
	stats.RevenueThisMonth = revenue.Total

	stats.GeneratedAt = time.Now()
	return c.JSON(stats)
}
