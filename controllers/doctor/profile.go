package doctor

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/carewell/health-portal/db"
	"github.com/carewell/health-portal/models"
	"github.com/carewell/health-portal/utils"
)

// GetProfile returns the doctor's user record with the doctor profile attached
func GetProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var user models.User
	if err := db.DB.Preload("DoctorProfile").First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Doctor not found",
		})
	}

	user.Password = ""
	return c.JSON(user)
}

type UpdateProfileInput struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Specialization  string `json:"specialization"`
	ExperienceYears *int   `json:"experience_years"`
	Bio             string `json:"bio"`
}

// UpdateProfile updates the mutable profile fields. Consultation fee is not
// among them; fee changes go through RequestFeeChange and admin approval.
func UpdateProfile(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var input UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid request body",
			Error:   err.Error(),
		})
	}

	var user models.User
	if err := db.DB.Preload("DoctorProfile").First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Doctor not found",
		})
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if err := db.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update profile",
		})
	}

	if user.DoctorProfile != nil {
		profile := user.DoctorProfile
		if input.Specialization != "" {
			profile.Specialization = input.Specialization
		}
		if input.ExperienceYears != nil {
			profile.ExperienceYears = *input.ExperienceYears
		}
		if input.Bio != "" {
			profile.Bio = input.Bio
		}
		if err := db.DB.Save(profile).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update doctor profile",
			})
		}
	}

	user.Password = ""
	return c.JSON(user)
}

type FeeChangeInput struct {
	RequestedFee float64 `json:"requested_fee"`
	Reason       string  `json:"reason"`
}

// RequestFeeChange files a consultation fee change for admin review
func RequestFeeChange(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var input FeeChangeInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid request body",
			Error:   err.Error(),
		})
	}

	if input.RequestedFee <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Requested fee must be greater than zero",
		})
	}

	var profile models.DoctorProfile
	if err := db.DB.Where("doctor_id = ?", userID).First(&profile).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Doctor profile not found",
		})
	}

	// One open request at a time keeps the admin queue unambiguous.
	var pendingCount int64
	db.DB.Model(&models.FeeApproval{}).
		Where("doctor_id = ? AND status = ?", userID, models.ApprovalPending).
		Count(&pendingCount)
	if pendingCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "A fee change request is already pending review",
		})
	}

	approval := models.FeeApproval{
		DoctorID:     userID,
		CurrentFee:   profile.ConsultationFee,
		RequestedFee: input.RequestedFee,
		Reason:       input.Reason,
		Status:       models.ApprovalPending,
	}
	if err := db.DB.Create(&approval).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create fee change request",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(approval)
}

// GetFeeRequests lists the doctor's own fee change requests
func GetFeeRequests(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var approvals []models.FeeApproval
	if err := db.DB.Where("doctor_id = ?", userID).
		Order("created_at desc").
		Find(&approvals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(approvals)
}

// UploadCredentialDocument stores the doctor's license or certificate and
// resets verification to pending so an admin re-reviews the new document.
func UploadCredentialDocument(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	file, err := c.FormFile("credential_doc")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to get credential document",
		})
	}

	f, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to open credential document",
		})
	}
	defer f.Close()

	publicID := fmt.Sprintf("doctor_%d_credential_%d", userID, time.Now().Unix())

	secureURL, err := utils.UploadToCloudinary(f, publicID, "credentials")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload credential document to Cloudinary",
		})
	}

	if err := db.DB.Model(&models.DoctorProfile{}).
		Where("doctor_id = ?", userID).
		Updates(map[string]interface{}{
			"credential_doc_url":  secureURL,
			"verification_status": models.VerificationPending,
			"verified_by":         nil,
		}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save credential document",
		})
	}

	return c.JSON(fiber.Map{
		"message":            "Credential document uploaded",
		"credential_doc_url": secureURL,
	})
}
