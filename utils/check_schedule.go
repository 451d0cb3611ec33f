package utils

import (
	"fmt"
	"time"

	"github.com/carewell/health-portal/db"
	"github.com/carewell/health-portal/models"
)

// CheckWithinSchedule verifies that an appointment start falls inside the
// doctor's schedule window for that day (and outside the break, if one is
// enabled). Returns false when the doctor has no schedule for the day.
func CheckWithinSchedule(doctorID uint, appointmentStart time.Time) (bool, error) {
	var schedule models.DailySchedule
	date := appointmentStart.Format("2006-01-02")
	if err := db.DB.Where("doctor_id = ? AND date = ?", doctorID, date).
		First(&schedule).Error; err != nil {
		return false, nil // No schedule for the day
	}
	if !schedule.IsActive {
		return false, nil
	}

	layout := "15:04"
	startTime, err := time.Parse(layout, schedule.StartTime)
	if err != nil {
		return false, fmt.Errorf("invalid start time format")
	}
	endTime, err := time.Parse(layout, schedule.EndTime)
	if err != nil {
		return false, fmt.Errorf("invalid end time format")
	}

	// Compare wall-clock minutes only; the date part of the parsed times
	// is meaningless.
	minutes := appointmentStart.Hour()*60 + appointmentStart.Minute()
	startMinutes := startTime.Hour()*60 + startTime.Minute()
	endMinutes := endTime.Hour()*60 + endTime.Minute()

	if minutes < startMinutes || minutes >= endMinutes {
		return false, nil // Appointment is outside working hours
	}

	// Check the break window if one is enabled
	if schedule.BreakEnabled && schedule.BreakStart != nil && schedule.BreakEnd != nil {
		breakStart, err := time.Parse(layout, *schedule.BreakStart)
		if err != nil {
			return false, fmt.Errorf("invalid break start time format")
		}
		breakEnd, err := time.Parse(layout, *schedule.BreakEnd)
		if err != nil {
			return false, fmt.Errorf("invalid break end time format")
		}

		breakStartMinutes := breakStart.Hour()*60 + breakStart.Minute()
		breakEndMinutes := breakEnd.Hour()*60 + breakEnd.Minute()
		if minutes >= breakStartMinutes && minutes < breakEndMinutes {
			return false, nil // Appointment is within break time
		}
	}

	return true, nil
}
