package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCanceled  AppointmentStatus = "canceled"
	StatusCompleted AppointmentStatus = "completed"
)

type Appointment struct {
	gorm.Model
	BookingRef  string            `json:"booking_ref" gorm:"uniqueIndex"`
	Reason      string            `json:"reason"`
	Notes       string            `json:"notes"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time"`
	Status      AppointmentStatus `json:"status"`
	// Fee charged for this consultation, snapshotted at booking time so
	// later fee changes don't rewrite history.
	ConsultationFee float64 `json:"consultation_fee"`
	DoctorID        uint    `json:"doctor_id"`
	Doctor          User    `json:"doctor" gorm:"foreignKey:DoctorID"`
	PatientID       uint    `json:"patient_id"`
	Patient         User    `json:"patient" gorm:"foreignKey:PatientID"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = StatusPending
	}
	return nil
}

// UpdateStatus enforces the appointment lifecycle:
// pending -> confirmed | canceled, confirmed -> completed | canceled.
func (a *Appointment) UpdateStatus(tx *gorm.DB, newStatus AppointmentStatus) error {
	switch a.Status {
	case StatusPending:
		if newStatus != StatusConfirmed && newStatus != StatusCanceled {
			return fmt.Errorf("invalid transition from pending to %s", newStatus)
		}
	case StatusConfirmed:
		if newStatus != StatusCompleted && newStatus != StatusCanceled {
			return fmt.Errorf("invalid transition from confirmed to %s", newStatus)
		}
	case StatusCompleted, StatusCanceled:
		return fmt.Errorf("no transitions allowed from %s", a.Status)
	}

	a.Status = newStatus
	return tx.Save(a).Error
}
