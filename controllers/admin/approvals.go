package admin

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/carewell/health-portal/db"
	"github.com/carewell/health-portal/models"
	"github.com/carewell/health-portal/utils"
)

// GetPendingFeeRequests lists fee change requests awaiting a decision
func GetPendingFeeRequests(c *fiber.Ctx) error {
	var approvals []models.FeeApproval
	if err := db.DB.Preload("Doctor").
		Where("status = ?", models.ApprovalPending).
		Order("created_at asc").
		Find(&approvals).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch fee requests",
			Error:   err.Error(),
		})
	}
	return c.JSON(approvals)
}

type DecisionInput struct {
	Remarks string `json:"remarks"`
}

// DecideFeeRequest approves or rejects a fee change request. The decision
// comes from the route (:decision is "approve" or "reject"); approval
// copies the requested fee onto the doctor's profile.
func DecideFeeRequest(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var status models.ApprovalStatus
	switch c.Params("decision") {
	case "approve":
		status = models.ApprovalApproved
	case "reject":
		status = models.ApprovalRejected
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Decision must be approve or reject",
		})
	}

	var input DecisionInput
	if err := c.BodyParser(&input); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid request body",
			Error:   err.Error(),
		})
	}

	var approval models.FeeApproval
	if err := db.DB.Preload("Doctor").First(&approval, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Fee request not found",
		})
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		return approval.Decide(tx, status, adminID, input.Remarks)
	})
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "Failed to decide fee request",
			Error:   err.Error(),
		})
	}

	emailBody := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your consultation fee change request (%.2f &rarr; %.2f) has been %s.</p>
		<p>%s</p>
	`, approval.Doctor.Name, approval.CurrentFee, approval.RequestedFee, approval.Status, approval.Remarks)
	if err := utils.SendEmail(approval.Doctor.Email, "Fee Change Request Update", emailBody); err != nil {
		log.Printf("failed to send fee decision email to %s: %v", approval.Doctor.Email, err)
	}

	return c.JSON(approval)
}

// GetPendingDoctors lists doctor profiles awaiting credential verification
func GetPendingDoctors(c *fiber.Ctx) error {
	var profiles []models.DoctorProfile
	if err := db.DB.Preload("Doctor").
		Where("verification_status = ?", models.VerificationPending).
		Order("created_at asc").
		Find(&profiles).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch pending doctors",
			Error:   err.Error(),
		})
	}
	return c.JSON(profiles)
}

// VerifyDoctor approves or rejects a doctor's credentials. Only approved
// doctors appear in patient search and can take bookings.
func VerifyDoctor(c *fiber.Ctx) error {
	adminID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User ID not found in context",
		})
	}

	var status models.VerificationStatus
	switch c.Params("decision") {
	case "approve":
		status = models.VerificationApproved
	case "reject":
		status = models.VerificationRejected
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Decision must be approve or reject",
		})
	}

	var profile models.DoctorProfile
	if err := db.DB.Preload("Doctor").
		Where("doctor_id = ?", c.Params("id")).
		First(&profile).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Doctor profile not found",
		})
	}

	if profile.VerificationStatus != models.VerificationPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": fmt.Sprintf("Doctor is already %s", profile.VerificationStatus),
		})
	}

	profile.VerificationStatus = status
	profile.VerifiedBy = &adminID
	if err := db.DB.Save(&profile).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update verification status",
		})
	}

	emailBody := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your credential verification is complete: your profile has been %s.</p>
	`, profile.Doctor.Name, profile.VerificationStatus)
	if err := utils.SendEmail(profile.Doctor.Email, "Credential Verification Update", emailBody); err != nil {
		log.Printf("failed to send verification email to %s: %v", profile.Doctor.Email, err)
	}

	return c.JSON(profile)
}
