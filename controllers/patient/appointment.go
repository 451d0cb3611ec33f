package patient

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/carewell/health-portal/db"
	"github.com/carewell/health-portal/models"
	"github.com/carewell/health-portal/utils"
)

// ConsultationDuration is the fixed slot length for a consultation.
const ConsultationDuration = 30 * time.Minute

type BookAppointmentInput struct {
	DoctorID  uint      `json:"doctor_id"`
	StartTime time.Time `json:"start_time"`
	Reason    string    `json:"reason"`
}

// BookAppointment creates a pending consultation after checking the
// doctor's schedule and existing bookings for the slot.
func BookAppointment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var input BookAppointmentInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	if input.StartTime.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Appointment start time must be in the future",
		})
	}

	// Only approved doctors are bookable. The fee is snapshotted from the
	// profile at booking time.
	var profile models.DoctorProfile
	if err := db.DB.Preload("Doctor").
		Where("doctor_id = ? AND verification_status = ?", input.DoctorID, models.VerificationApproved).
		First(&profile).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Doctor not found or not accepting consultations",
		})
	}

	// Check if the slot falls within the doctor's schedule for the day
	withinSchedule, err := utils.CheckWithinSchedule(input.DoctorID, input.StartTime)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error checking doctor's schedule",
			Error:   err.Error(),
		})
	}
	if !withinSchedule {
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "Appointment is outside the doctor's hours or during break",
		})
	}

	// Check for conflicting bookings
	available, err := utils.CheckAvailability(input.DoctorID, input.StartTime, ConsultationDuration)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Error checking availability",
			Error:   err.Error(),
		})
	}
	if !available {
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "Time slot not available",
		})
	}

	appointment := models.Appointment{
		BookingRef:      utils.GenerateBookingRef(),
		Reason:          input.Reason,
		StartTime:       input.StartTime,
		EndTime:         input.StartTime.Add(ConsultationDuration),
		Status:          models.StatusPending,
		ConsultationFee: profile.ConsultationFee,
		DoctorID:        input.DoctorID,
		PatientID:       userID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		// Check availability again to prevent conflicts
		available, err := utils.CheckAvailability(input.DoctorID, input.StartTime, ConsultationDuration)
		if err != nil {
			return err
		}
		if !available {
			return fmt.Errorf("time slot not available")
		}
		return tx.Create(&appointment).Error
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "Time slot not available or failed to create appointment",
			Error:   err.Error(),
		})
	}

	var patient models.User
	if err := db.DB.First(&patient, userID).Error; err == nil {
		emailBody := fmt.Sprintf(`
			<p>Dear %s,</p>
			<p>Your consultation has been booked.</p>
			<p><strong>Details:</strong></p>
			<ul>
				<li><strong>Booking Reference:</strong> %s</li>
				<li><strong>Doctor:</strong> %s (%s)</li>
				<li><strong>Start Time:</strong> %s</li>
				<li><strong>Consultation Fee:</strong> %.2f</li>
			</ul>
			<p>You will be notified when the doctor confirms the booking.</p>
		`, patient.Name, appointment.BookingRef, profile.Doctor.Name, profile.Specialization,
			appointment.StartTime.Format("2006-01-02 15:04"), appointment.ConsultationFee)
		if err := utils.SendEmail(patient.Email, "Consultation Booked", emailBody); err != nil {
			log.Printf("failed to send booking email to %s: %v", patient.Email, err)
		}
	}

	emailBody := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have a new consultation request.</p>
		<p><strong>Booking Reference:</strong> %s</p>
		<p><strong>Start Time:</strong> %s</p>
	`, profile.Doctor.Name, appointment.BookingRef, appointment.StartTime.Format("2006-01-02 15:04"))
	if err := utils.SendEmail(profile.Doctor.Email, "New Consultation Request", emailBody); err != nil {
		log.Printf("failed to send booking email to %s: %v", profile.Doctor.Email, err)
	}

	return c.Status(fiber.StatusCreated).JSON(appointment)
}

// GetMyAppointments lists the patient's appointments, newest first.
// An optional status query filters by appointment status.
func GetMyAppointments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	query := db.DB.Preload("Doctor").Where("patient_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Order("start_time desc").Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch appointments",
			Error:   err.Error(),
		})
	}

	return c.JSON(appointments)
}

// GetAppointment returns one of the patient's appointments by booking ref
func GetAppointment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	ref := c.Params("ref")
	var appointment models.Appointment
	if err := db.DB.Preload("Doctor").
		Where("booking_ref = ? AND patient_id = ?", ref, userID).
		First(&appointment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Appointment not found",
		})
	}

	return c.JSON(appointment)
}

// CancelAppointment cancels one of the patient's pending or confirmed
// appointments and notifies the doctor.
func CancelAppointment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	ref := c.Params("ref")
	var appointment models.Appointment
	if err := db.DB.Preload("Doctor").
		Where("booking_ref = ? AND patient_id = ?", ref, userID).
		First(&appointment).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Appointment not found",
		})
	}

	if err := appointment.UpdateStatus(db.DB, models.StatusCanceled); err != nil {
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "Appointment cannot be canceled",
			Error:   err.Error(),
		})
	}

	emailBody := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>The consultation %s scheduled for %s has been canceled by the patient.</p>
	`, appointment.Doctor.Name, appointment.BookingRef, appointment.StartTime.Format("2006-01-02 15:04"))
	if err := utils.SendEmail(appointment.Doctor.Email, "Consultation Canceled", emailBody); err != nil {
		log.Printf("failed to send cancellation email to %s: %v", appointment.Doctor.Email, err)
	}

	return c.JSON(appointment)
}
