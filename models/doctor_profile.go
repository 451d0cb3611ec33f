package models

import (
	"gorm.io/gorm"
)

// VerificationStatus is the admin review state of a doctor's credentials.
// The value is always one of the constants below; unknown or missing values
// read back from older rows collapse to VerificationPending.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// DoctorProfile holds the doctor-specific columns that don't belong on User.
type DoctorProfile struct {
	gorm.Model
	DoctorID           uint               `json:"doctor_id" gorm:"uniqueIndex"`
	Doctor             User               `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	Specialization     string             `json:"specialization"`
	LicenseNumber      string             `json:"license_number"`
	ExperienceYears    int                `json:"experience_years"`
	Bio                string             `json:"bio"`
	ConsultationFee    float64            `json:"consultation_fee"`
	CredentialDocURL   string             `json:"credential_doc_url"`
	VerificationStatus VerificationStatus `json:"verification_status" gorm:"default:pending"`
	VerifiedBy         *uint              `json:"verified_by"`
}

func (p *DoctorProfile) AfterFind(tx *gorm.DB) error {
	switch p.VerificationStatus {
	case VerificationPending, VerificationApproved, VerificationRejected:
	default:
		p.VerificationStatus = VerificationPending
	}
	return nil
}
