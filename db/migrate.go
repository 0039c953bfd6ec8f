package db

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/meinhoongagan/findam/models"
)

// Migrate creates or updates the accounts and providers tables, including
// the unique indexes on accounts.email and providers.user_id.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.Provider{},
	); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Info().Msg("migrations applied")
	return nil
}
