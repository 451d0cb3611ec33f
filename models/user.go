package models

import (
	"time"
)

type User struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Name           string          `json:"name"`
	Email          string          `json:"email" gorm:"unique"`
	Password       string          `json:"password,omitempty"`
	Phone          string          `json:"phone"`
	IsVerified     bool            `json:"is_verified"`
	OTP            string          `json:"otp,omitempty"`
	OTPExpiresAt   time.Time       `json:"otp_expires_at,omitempty"`
	ProfilePicture string          `json:"profile_picture"`
	RoleID         uint            `json:"role_id"`
	Role           Role            `json:"role,omitempty" gorm:"foreignKey:RoleID"`
	DoctorProfile  *DoctorProfile  `json:"doctor_profile,omitempty" gorm:"foreignKey:DoctorID"`
	Schedules      []DailySchedule `json:"schedules,omitempty" gorm:"foreignKey:DoctorID"`
	Appointments   []Appointment   `json:"appointments,omitempty" gorm:"foreignKey:DoctorID"`
	Bookings       []Appointment   `json:"bookings,omitempty" gorm:"foreignKey:PatientID"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
