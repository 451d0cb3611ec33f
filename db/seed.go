package db

import (
	"log"

	"github.com/carewell/health-portal/models"
)

// SeedDefaults creates the portal's roles and permissions if they don't
// exist, and grants each role its default permission set.
func SeedDefaults() {
	roles := []models.Role{
		{Name: "admin", Description: "Administrator with full access"},
		{Name: "doctor", Description: "Doctor who manages schedules and consultations"},
		{Name: "patient", Description: "Patient who books consultations"},
	}

	for _, role := range roles {
		var existing models.Role
		if DB.Where("name = ?", role.Name).First(&existing).RowsAffected == 0 {
			DB.Create(&role)
		}
	}

	permissions := []models.Permission{
		// User management
		{Name: "create_user", Description: "Create new users", Resource: "users", Action: "create"},
		{Name: "read_users", Description: "View user list", Resource: "users", Action: "read"},
		{Name: "update_user", Description: "Update user details", Resource: "users", Action: "update"},
		{Name: "delete_user", Description: "Delete users", Resource: "users", Action: "delete"},

		// Appointment management
		{Name: "create_appointment", Description: "Book appointments", Resource: "appointments", Action: "create"},
		{Name: "read_appointments", Description: "View appointments", Resource: "appointments", Action: "read"},
		{Name: "update_appointment", Description: "Update appointments", Resource: "appointments", Action: "update"},
		{Name: "delete_appointment", Description: "Cancel appointments", Resource: "appointments", Action: "delete"},

		// Schedule management
		{Name: "create_schedule", Description: "Set daily schedules", Resource: "schedules", Action: "create"},
		{Name: "read_schedules", Description: "View schedules", Resource: "schedules", Action: "read"},
		{Name: "update_schedule", Description: "Update daily schedules", Resource: "schedules", Action: "update"},

		// Fee approval workflow
		{Name: "create_approval", Description: "Request fee changes", Resource: "approvals", Action: "create"},
		{Name: "read_approvals", Description: "View fee approval requests", Resource: "approvals", Action: "read"},
		{Name: "update_approval", Description: "Decide fee approval requests", Resource: "approvals", Action: "update"},

		// Role management
		{Name: "create_role", Description: "Create roles", Resource: "roles", Action: "create"},
		{Name: "read_roles", Description: "View roles", Resource: "roles", Action: "read"},

		// Permission management
		{Name: "create_permission", Description: "Create permissions", Resource: "permissions", Action: "create"},
		{Name: "read_permissions", Description: "View permissions", Resource: "permissions", Action: "read"},
	}

	for _, permission := range permissions {
		var existing models.Permission
		if DB.Where("name = ?", permission.Name).First(&existing).RowsAffected == 0 {
			DB.Create(&permission)
		}
	}

	// Admin gets everything.
	var adminRole models.Role
	if DB.Where("name = ?", "admin").First(&adminRole).RowsAffected > 0 {
		var allPermissions []models.Permission
		DB.Find(&allPermissions)

		DB.Model(&adminRole).Association("Permissions").Clear()
		DB.Model(&adminRole).Association("Permissions").Append(allPermissions)
	}

	// Doctors manage their own schedule and consultations, and can ask for
	// fee changes.
	var doctorRole models.Role
	if DB.Where("name = ?", "doctor").First(&doctorRole).RowsAffected > 0 {
		var doctorPermissions []models.Permission
		DB.Where("resource IN (?)", []string{"appointments", "schedules"}).
			Find(&doctorPermissions)

		var feeRequest models.Permission
		if DB.Where("name = ?", "create_approval").First(&feeRequest).RowsAffected > 0 {
			doctorPermissions = append(doctorPermissions, feeRequest)
		}

		DB.Model(&doctorRole).Association("Permissions").Clear()
		DB.Model(&doctorRole).Association("Permissions").Append(doctorPermissions)
	}

	// Patients book and view appointments and can read schedules.
	var patientRole models.Role
	if DB.Where("name = ?", "patient").First(&patientRole).RowsAffected > 0 {
		var patientPermissions []models.Permission
		DB.Where("name IN (?)", []string{
			"create_appointment",
			"read_appointments",
			"update_appointment",
			"delete_appointment",
			"read_schedules",
		}).Find(&patientPermissions)

		DB.Model(&patientRole).Association("Permissions").Clear()
		DB.Model(&patientRole).Association("Permissions").Append(patientPermissions)
	}

	log.Println("Default roles and permissions seeded")
}
