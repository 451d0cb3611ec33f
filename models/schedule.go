package models

import (
	"gorm.io/gorm"
)

// DailySchedule is a doctor's working window for one calendar day.
// There is at most one authoritative schedule per doctor per day; writing a
// new one for the same day replaces the old one.
type DailySchedule struct {
	gorm.Model
	DoctorID  uint   `json:"doctor_id" gorm:"uniqueIndex:idx_doctor_date"`
	Doctor    User   `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	Date      string `json:"date" gorm:"uniqueIndex:idx_doctor_date"` // Format "2006-01-02"
	StartTime string `json:"start_time"`                              // Format "HH:MM" in 24h
	EndTime   string `json:"end_time"`                                // Format "HH:MM" in 24h
	IsActive  bool   `json:"is_active" gorm:"default:true"`
	// IsAvailable mirrors the doctor's online flag so patients can see it
	// without hitting the live controller.
	IsAvailable  bool    `json:"is_available"`
	BreakEnabled bool    `json:"break_enabled"`
	BreakStart   *string `json:"break_start"` // Optional break start time
	BreakEnd     *string `json:"break_end"`   // Optional break end time
}
