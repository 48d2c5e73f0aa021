package repository

import (
	"context"

	"github.com/nourishtogether/donation-api/internal/models"
	"gorm.io/gorm"
)

// GormMoneyDonationRepository is a GORM implementation of MoneyDonationRepository
type GormMoneyDonationRepository struct {
	db *gorm.DB
}

// NewMoneyDonationRepository creates a new MoneyDonationRepository
func NewMoneyDonationRepository(db *gorm.DB) MoneyDonationRepository {
	return &GormMoneyDonationRepository{db: db}
}

// Create records a verified payment
func (r *GormMoneyDonationRepository) Create(ctx context.Context, donation *models.MoneyDonation) error {
	return translate(r.db.WithContext(ctx).Create(donation).Error)
}

// List retrieves every money donation with its donor
func (r *GormMoneyDonationRepository) List(ctx context.Context) ([]models.MoneyDonation, error) {
	donations := []models.MoneyDonation{}
	err := r.db.WithContext(ctx).
		Preload("Donor", publicUser).
		Order("money_donations.date DESC").
		Find(&donations).Error
	if err != nil {
		return nil, err
	}
	return donations, nil
}

// NewGormRepositories wires every GORM implementation against db.
func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:          NewUserRepository(db),
		FoodDonations:  NewFoodDonationRepository(db),
		MoneyDonations: NewMoneyDonationRepository(db),
	}
}
