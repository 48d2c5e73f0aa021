package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/nourishtogether/donation-api/internal/models"
	"github.com/nourishtogether/donation-api/internal/policy"
	"gorm.io/gorm"
)

// GormFoodDonationRepository is a GORM implementation of FoodDonationRepository
type GormFoodDonationRepository struct {
	db *gorm.DB
}

// NewFoodDonationRepository creates a new FoodDonationRepository
func NewFoodDonationRepository(db *gorm.DB) FoodDonationRepository {
	return &GormFoodDonationRepository{db: db}
}

// publicUser limits preloaded references to display-safe columns.
func publicUser(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

func (r *GormFoodDonationRepository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Donor", publicUser).
		Preload("NGO", publicUser).
		Preload("Volunteer", publicUser)
}

// Create creates a new food donation
func (r *GormFoodDonationRepository) Create(ctx context.Context, donation *models.FoodDonation) error {
	return translate(r.db.WithContext(ctx).Create(donation).Error)
}

// FindByID finds a food donation by ID with references resolved
func (r *GormFoodDonationRepository) FindByID(ctx context.Context, id string) (*models.FoodDonation, error) {
	var donation models.FoodDonation
	if err := r.withRefs(ctx).Where("food_donations.id = ?", id).First(&donation).Error; err != nil {
		return nil, translate(err)
	}
	return &donation, nil
}

// List retrieves the food donations matching scope
func (r *GormFoodDonationRepository) List(ctx context.Context, scope policy.FoodDonationScope) ([]models.FoodDonation, error) {
	query := r.withRefs(ctx).Model(&models.FoodDonation{})

	if scope.DonorID != "" {
		query = query.Where("food_donations.donor_id = ?", scope.DonorID)
	}
	if scope.Status != "" {
		query = query.Where("food_donations.status = ?", scope.Status)
	}

	donations := []models.FoodDonation{}
	if err := query.Order("food_donations.created_at DESC").Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

// CompareAndSwapStatus performs the guarded transition as one UPDATE ... WHERE status = from.
func (r *GormFoodDonationRepository) CompareAndSwapStatus(ctx context.Context, id string, t policy.Transition) (*models.FoodDonation, error) {
	column, ok := actorColumn(t.Event)
	if !ok {
		return nil, fmt.Errorf("repository: unsupported transition event %q", t.Event)
	}

	res := r.db.WithContext(ctx).
		Model(&models.FoodDonation{}).
		Where("id = ? AND status = ?", id, t.From).
		Updates(map[string]interface{}{
			"status":     t.To,
			column:       t.ActorID,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		var current models.FoodDonation
		if err := r.db.WithContext(ctx).Select("id", "status").Where("id = ?", id).First(&current).Error; err != nil {
			return nil, translate(err)
		}
		return nil, &StaleStateError{Current: current.Status}
	}

	return r.FindByID(ctx, id)
}
