package patient

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/carewell/health-portal/availability"
	"github.com/carewell/health-portal/db"
	"github.com/carewell/health-portal/models"
)

// DoctorListing is a verified doctor as shown in patient search results,
// including whether they are taking consultations right now.
type DoctorListing struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Specialization  string  `json:"specialization"`
	ExperienceYears int     `json:"experience_years"`
	Bio             string  `json:"bio"`
	ConsultationFee float64 `json:"consultation_fee"`
	ProfilePicture  string  `json:"profile_picture"`
	Online          bool    `json:"online"`
	TodayStart      string  `json:"today_start,omitempty"`
	TodayEnd        string  `json:"today_end,omitempty"`
}

// GetDoctors lists approved doctors, optionally filtered by specialization
// or name, with live availability attached.
func GetDoctors(c *fiber.Ctx) error {
	query := db.DB.Model(&models.DoctorProfile{}).
		Preload("Doctor").
		Where("verification_status = ?", models.VerificationApproved)

	if specialization := c.Query("specialization"); specialization != "" {
		query = query.Where("specialization ILIKE ?", "%"+specialization+"%")
	}

	var profiles []models.DoctorProfile
	if err := query.Find(&profiles).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	name := c.Query("name")
	today := time.Now().Format("2006-01-02")

	listings := make([]DoctorListing, 0, len(profiles))
	for _, profile := range profiles {
		if name != "" && !strings.Contains(strings.ToLower(profile.Doctor.Name), strings.ToLower(name)) {
			continue
		}
		listings = append(listings, buildListing(profile, today))
	}

	return c.JSON(listings)
}

// GetDoctorByID returns a single approved doctor with live availability
func GetDoctorByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid doctor ID",
		})
	}

	var profile models.DoctorProfile
	if err := db.DB.Preload("Doctor").
		Where("doctor_id = ? AND verification_status = ?", id, models.VerificationApproved).
		First(&profile).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Doctor not found",
		})
	}

	return c.JSON(buildListing(profile, time.Now().Format("2006-01-02")))
}

// buildListing folds the live controller state (when the doctor is signed
// in) and today's schedule row into the search result.
func buildListing(profile models.DoctorProfile, today string) DoctorListing {
	listing := DoctorListing{
		ID:              profile.DoctorID,
		Name:            profile.Doctor.Name,
		Specialization:  profile.Specialization,
		ExperienceYears: profile.ExperienceYears,
		Bio:             profile.Bio,
		ConsultationFee: profile.ConsultationFee,
		ProfilePicture:  profile.Doctor.ProfilePicture,
	}

	if availability.Doctors != nil {
		if ctrl := availability.Doctors.Peek(profile.DoctorID); ctrl != nil {
			listing.Online = ctrl.IsOnline()
		}
	}

	var schedule models.DailySchedule
	if err := db.DB.Where("doctor_id = ? AND date = ?", profile.DoctorID, today).
		First(&schedule).Error; err == nil && schedule.IsActive {
		listing.TodayStart = schedule.StartTime
		listing.TodayEnd = schedule.EndTime
	}

	return listing
}
