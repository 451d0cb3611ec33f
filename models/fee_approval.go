package models

import (
	"fmt"

	"gorm.io/gorm"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// FeeApproval is a doctor's request to change their consultation fee.
// The new fee takes effect only after an admin approves the request.
type FeeApproval struct {
	gorm.Model
	DoctorID     uint           `json:"doctor_id"`
	Doctor       User           `json:"doctor" gorm:"foreignKey:DoctorID"`
	CurrentFee   float64        `json:"current_fee"`
	RequestedFee float64        `json:"requested_fee"`
	Reason       string         `json:"reason"`
	Status       ApprovalStatus `json:"status" gorm:"default:pending"`
	DecidedByID  *uint          `json:"decided_by_id"`
	Remarks      string         `json:"remarks"`
}

func (f *FeeApproval) BeforeCreate(tx *gorm.DB) error {
	if f.Status == "" {
		f.Status = ApprovalPending
	}
	if f.RequestedFee < 0 {
		return fmt.Errorf("requested fee cannot be negative")
	}
	return nil
}

// Decide resolves a pending request. Approval copies the requested fee onto
// the doctor's profile in the same transaction.
func (f *FeeApproval) Decide(tx *gorm.DB, status ApprovalStatus, adminID uint, remarks string) error {
	if f.Status != ApprovalPending {
		return fmt.Errorf("request already %s", f.Status)
	}
	if status != ApprovalApproved && status != ApprovalRejected {
		return fmt.Errorf("invalid decision %s", status)
	}

	f.Status = status
	f.DecidedByID = &adminID
	f.Remarks = remarks
	if err := tx.Save(f).Error; err != nil {
		return err
	}

	if status == ApprovalApproved {
		return tx.Model(&DoctorProfile{}).
			Where("doctor_id = ?", f.DoctorID).
			Update("consultation_fee", f.RequestedFee).Error
	}
	return nil
}
