package db

import (
	"fmt"
	"log"

	"github.com/carewell/health-portal/models"
)

// Migrate runs AutoMigrate and seeds the default roles and permissions.
// Expects Init to have been called first.
func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.DoctorProfile{},
		&models.DailySchedule{},
		&models.Appointment{},
		&models.FeeApproval{},
	)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	SeedDefaults()

	fmt.Println("✅ Migrations applied successfully!")
}
