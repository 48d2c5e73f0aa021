package repository

import (
	"context"
	"errors"

	"github.com/nourishtogether/donation-api/internal/models"
	"github.com/nourishtogether/donation-api/internal/policy"
	"github.com/nourishtogether/donation-api/internal/utils"
)

var (
	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicate is returned when a unique key (email, payment id) is already taken.
	ErrDuplicate = errors.New("repository: duplicate key")
	// ErrStaleState is returned when a conditional status update matched no
	// record because the status moved on since it was read.
	ErrStaleState = errors.New("repository: donation status changed")
)

// StaleStateError reports the status observed after a lost compare-and-swap.
type StaleStateError struct {
	Current models.DonationStatus
}

func (e *StaleStateError) Error() string {
	return ErrStaleState.Error() + ": now " + string(e.Current)
}

func (e *StaleStateError) Is(target error) bool {
	return target == ErrStaleState
}

// UserRepository defines the interface for identity data access
type UserRepository interface {
	// Create inserts a new user. ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *models.User) error

	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail looks up a user by its normalized email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Update persists the name and profile fields of an existing user
	Update(ctx context.Context, user *models.User) error

	// List returns one page of users, newest first, with the total count
	List(ctx context.Context, page utils.PaginationParams) ([]models.User, int64, error)

	// Delete removes a user. Donations referencing it are left in place.
	Delete(ctx context.Context, id string) error

	Ping(ctx context.Context) error
}

// FoodDonationRepository defines the interface for food donation data access.
// Records returned by reads have their Donor, NGO and Volunteer references
// resolved to display-safe users (id, name, email) when those still exist.
type FoodDonationRepository interface {
	Create(ctx context.Context, donation *models.FoodDonation) error

	FindByID(ctx context.Context, id string) (*models.FoodDonation, error)

	// List returns the donations visible under scope, newest first
	List(ctx context.Context, scope policy.FoodDonationScope) ([]models.FoodDonation, error)

	// CompareAndSwapStatus applies t in a single conditional update: the
	// status moves to t.To and the actor reference is set only if the
	// stored status still equals t.From. A lost race yields a
	// *StaleStateError; a missing record yields ErrNotFound.
	CompareAndSwapStatus(ctx context.Context, id string, t policy.Transition) (*models.FoodDonation, error)
}

// MoneyDonationRepository defines the interface for money donation data access
type MoneyDonationRepository interface {
	// Create inserts a new donation. ErrDuplicate when the payment id was
	// already recorded.
	Create(ctx context.Context, donation *models.MoneyDonation) error

	// List returns every money donation, newest first, donors resolved
	List(ctx context.Context) ([]models.MoneyDonation, error)
}

// Repositories bundles one backend's implementations.
type Repositories struct {
	Users          UserRepository
	FoodDonations  FoodDonationRepository
	MoneyDonations MoneyDonationRepository
}

// actorColumn is the reference set by each transition event.
func actorColumn(ev policy.Event) (string, bool) {
	switch ev {
	case policy.EventAccept:
		return "ngo_id", true
	case policy.EventComplete:
		return "volunteer_id", true
	default:
		return "", false
	}
}
