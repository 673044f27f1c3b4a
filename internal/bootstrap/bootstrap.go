package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"pagbridge/internal/models"
)

// Migrate ensures the billing schema exists.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Invoice{},
		&models.LineItem{},
		&models.Transaction{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
