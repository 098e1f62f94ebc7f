package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates every table this package maps.
// Postgres-only constraints (the booking exclusion constraint) are
// applied separately by the database package.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&studioModel{},
		&artistModel{},
		&availabilityRuleModel{},
		&timeOffModel{},
		&bookingModel{},
		&commissionRuleModel{},
		&earnedCommissionModel{},
		&NotificationRecord{},
	)
}
