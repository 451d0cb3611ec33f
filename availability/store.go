package availability

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/carewell/health-portal/models"
)

// ErrScheduleNotFound is returned by LoadTodaySchedule when the doctor has
// no schedule for the requested day.
var ErrScheduleNotFound = errors.New("no schedule found for this day")

// Store persists schedules and the mirrored availability flag. The
// controller treats it as a remote collaborator: writes are retried but
// failures never roll back local state.
type Store interface {
	LoadTodaySchedule(ctx context.Context, doctorID uint, date string) (*models.DailySchedule, error)
	SaveSchedule(ctx context.Context, sched *models.DailySchedule) error
	SaveAvailability(ctx context.Context, doctorID uint, date string, available bool) error
}

// GormStore backs Store with the portal database.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) LoadTodaySchedule(ctx context.Context, doctorID uint, date string) (*models.DailySchedule, error) {
	var sched models.DailySchedule
	err := s.DB.WithContext(ctx).
		Where("doctor_id = ? AND date = ?", doctorID, date).
		First(&sched).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

// SaveSchedule writes the schedule for (doctor, date), replacing any
// existing row for the same day.
func (s *GormStore) SaveSchedule(ctx context.Context, sched *models.DailySchedule) error {
	var existing models.DailySchedule
	err := s.DB.WithContext(ctx).
		Where("doctor_id = ? AND date = ?", sched.DoctorID, sched.Date).
		First(&existing).Error
	if err == nil {
		sched.ID = existing.ID
		sched.CreatedAt = existing.CreatedAt
		return s.DB.WithContext(ctx).Save(sched).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.DB.WithContext(ctx).Create(sched).Error
}

func (s *GormStore) SaveAvailability(ctx context.Context, doctorID uint, date string, available bool) error {
	return s.DB.WithContext(ctx).
		Model(&models.DailySchedule{}).
		Where("doctor_id = ? AND date = ?", doctorID, date).
		Update("is_available", available).Error
}
