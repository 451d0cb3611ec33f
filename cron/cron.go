package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/carewell/health-portal/db"
	"github.com/carewell/health-portal/models"
	"github.com/carewell/health-portal/utils"
)

// StartCronJobs initializes and starts the cron scheduler for consultation
// reminders and stale data cleanup
func StartCronJobs() {
	c := cron.New()

	// Run every minute to check for consultations in the next hour
	_, err := c.AddFunc("* * * * *", sendConsultationReminders)
	if err != nil {
		log.Fatalf("Failed to add reminder cron job: %v", err)
	}

	// Expire stale pending consultations shortly after midnight
	_, err = c.AddFunc("5 0 * * *", cancelStalePendingConsultations)
	if err != nil {
		log.Fatalf("Failed to add cleanup cron job: %v", err)
	}

	c.Start()
	log.Println("Cron job scheduler started")
}

// sendConsultationReminders checks for consultations and sends reminders
func sendConsultationReminders() {
	var appointments []models.Appointment
	now := time.Now()
	// Look for consultations starting in the next hour
	startWindow := now.Add(55 * time.Minute)
	endWindow := now.Add(65 * time.Minute)

	err := db.DB.Preload("Patient").Preload("Doctor").
		Where("status = ? AND start_time BETWEEN ? AND ?", models.StatusConfirmed, startWindow, endWindow).
		Find(&appointments).Error
	if err != nil {
		log.Printf("Error fetching consultations for reminders: %v", err)
		return
	}

	for _, appointment := range appointments {
		if err := sendReminderEmail(&appointment); err != nil {
			log.Printf("Failed to send reminder for consultation %d: %v", appointment.ID, err)
			continue
		}
		log.Printf("Sent reminder for consultation %d to %s", appointment.ID, appointment.Patient.Email)
	}
}

// sendReminderEmail constructs and sends the reminder email
func sendReminderEmail(appointment *models.Appointment) error {
	subject := fmt.Sprintf("Reminder: Upcoming Consultation - %s", appointment.BookingRef)
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your consultation scheduled in one hour.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Booking Reference:</strong> %s</li>
			<li><strong>Doctor:</strong> %s</li>
			<li><strong>Start Time:</strong> %s</li>
			<li><strong>Status:</strong> %s</li>
		</ul>
		<p>If you need to reschedule or cancel, please do so as soon as possible.</p>
	`, appointment.Patient.Name, appointment.BookingRef, appointment.Doctor.Name,
		appointment.StartTime.Format("2006-01-02 15:04:05"),
		appointment.Status)

	return utils.SendEmail(appointment.Patient.Email, subject, body)
}

// cancelStalePendingConsultations cancels bookings the doctor never
// confirmed before their start time passed.
func cancelStalePendingConsultations() {
	result := db.DB.Model(&models.Appointment{}).
		Where("status = ? AND start_time < ?", models.StatusPending, time.Now()).
		Update("status", models.StatusCanceled)
	if result.Error != nil {
		log.Printf("Error canceling stale pending consultations: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Canceled %d stale pending consultations", result.RowsAffected)
	}
}
