package database

import (
	"fmt"

	"github.com/nourishtogether/donation-api/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema, then adds the composite indexes
// AutoMigrate cannot express through struct tags.
func Migrate(db *gorm.DB) error {
	log.Info().Msg("running database migrations")
	err := db.AutoMigrate(
		&models.User{},
		&models.FoodDonation{},
		&models.MoneyDonation{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	log.Info().Msg("database migrations completed")
	return nil
}

// AddIndexes adds the indexes backing the role-scoped donation queries.
// It is idempotent across mysql, postgres and sqlite.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// NGO and volunteer queues filter by status, newest first
		{"food_donations", "idx_food_donations_status_created_at", "status, created_at"},
		// Donor history
		{"food_donations", "idx_food_donations_donor_created_at", "donor_id, created_at"},
		{"money_donations", "idx_money_donations_date", "date"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			log.Debug().Str("index", idx.name).Msg("index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info().Str("index", idx.name).Str("table", idx.table).Msg("created index")
	}

	return nil
}
