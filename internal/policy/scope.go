package policy

import "github.com/nourishtogether/donation-api/internal/models"

// FoodDonationScope is the server-side visibility filter for listing food
// donations. Zero values mean "no constraint".
type FoodDonationScope struct {
	DonorID string
	Status  models.DonationStatus
}

// Unrestricted reports whether the scope matches every record.
func (s FoodDonationScope) Unrestricted() bool {
	return s.DonorID == "" && s.Status == ""
}

// Matches applies the scope to a single record.
func (s FoodDonationScope) Matches(d models.FoodDonation) bool {
	if s.DonorID != "" && d.DonorID != s.DonorID {
		return false
	}
	if s.Status != "" && d.Status != s.Status {
		return false
	}
	return true
}

// ScopeFor returns the visible set for actor. The second result is false
// for roles that may not list at all.
func ScopeFor(actor Actor) (FoodDonationScope, bool) {
	switch actor.Role {
	case models.RoleDonor:
		if actor.ID == "" {
			return FoodDonationScope{}, false
		}
		return FoodDonationScope{DonorID: actor.ID}, true
	case models.RoleNGO:
		return FoodDonationScope{Status: models.DonationStatusPending}, true
	case models.RoleVolunteer:
		return FoodDonationScope{Status: models.DonationStatusAccepted}, true
	case models.RoleAdmin:
		return FoodDonationScope{}, true
	default:
		return FoodDonationScope{}, false
	}
}
