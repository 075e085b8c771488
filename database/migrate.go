package database

import (
	"github.com/yeremiapane/cafe-tables/models"
	"github.com/yeremiapane/cafe-tables/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables, session history and notification schemas.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.TableRecord{},
		&models.SessionLog{},
		&models.Notification{},
	)
	if err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
