// Package policy holds the authorization predicate and the food donation
// state machine. Everything here is pure: no store access, no HTTP.
package policy

import (
	"errors"

	"github.com/nourishtogether/donation-api/internal/models"
)

type Action string

const (
	ActionCreateFoodDonation       Action = "createFoodDonation"
	ActionListFoodDonations        Action = "listFoodDonations"
	ActionAcceptFoodDonation       Action = "acceptFoodDonation"
	ActionCompleteFoodDonation     Action = "completeFoodDonation"
	ActionCreateMoneyDonationOrder Action = "createMoneyDonationOrder"
	ActionSaveMoneyDonation        Action = "saveMoneyDonation"
	ActionListMoneyDonations       Action = "listMoneyDonations"
	ActionUpdateOwnProfile         Action = "updateOwnProfile"
	ActionListUsers                Action = "listUsers"
	ActionDeleteUser               Action = "deleteUser"
)

type DenialReason string

const (
	ReasonForbiddenRole DenialReason = "forbidden-role"
	ReasonInvalidState  DenialReason = "invalid-state"
	ReasonNotSelf       DenialReason = "not-self"
)

var (
	ErrForbiddenRole = errors.New("role not permitted to perform this action")
	ErrInvalidState  = errors.New("action not permitted in the current state")
	ErrNotSelf       = errors.New("action permitted on own record only")
)

// DeniedError is returned when the predicate rejects an action.
type DeniedError struct {
	Action  Action
	Reason  DenialReason
	Message string
}

func (e *DeniedError) Error() string {
	return e.Message
}

func (e *DeniedError) Is(target error) bool {
	switch target {
	case ErrForbiddenRole:
		return e.Reason == ReasonForbiddenRole
	case ErrInvalidState:
		return e.Reason == ReasonInvalidState
	case ErrNotSelf:
		return e.Reason == ReasonNotSelf
	}
	return false
}

// Actor is the authenticated identity performing an action.
type Actor struct {
	ID   string
	Role models.Role
}

// Target describes the record an action applies to. Nil means the action
// has no target record (creation, listing).
type Target struct {
	OwnerID string
	Status  models.DonationStatus
}

// Decision is the outcome of CanPerform.
type Decision struct {
	Allowed bool
	Reason  DenialReason
	Message string
}

// Err converts a denial into a *DeniedError, or nil when allowed.
func (d Decision) Err(action Action) error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Action: action, Reason: d.Reason, Message: d.Message}
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenialReason, message string) Decision {
	return Decision{Reason: reason, Message: message}
}

// RoleAllowed is the role half of the predicate. It is exhaustive over
// actions; unknown actions and unknown roles are denied.
func RoleAllowed(role models.Role, action Action) bool {
	if !role.IsValid() {
		return false
	}
	switch action {
	case ActionCreateFoodDonation, ActionCreateMoneyDonationOrder, ActionSaveMoneyDonation:
		return role == models.RoleDonor
	case ActionAcceptFoodDonation:
		return role == models.RoleNGO
	case ActionCompleteFoodDonation:
		return role == models.RoleVolunteer
	case ActionListMoneyDonations, ActionListUsers, ActionDeleteUser:
		return role == models.RoleAdmin
	case ActionListFoodDonations, ActionUpdateOwnProfile:
		return true
	default:
		return false
	}
}

// CanPerform decides whether actor may perform action on target. Role is
// checked before state so a wrong-role caller never learns record state.
func CanPerform(actor Actor, action Action, target *Target) Decision {
	if !RoleAllowed(actor.Role, action) {
		return deny(ReasonForbiddenRole, forbiddenMessage(action))
	}

	switch action {
	case ActionAcceptFoodDonation:
		if target == nil {
			return allow()
		}
		if _, err := Next(target.Status, EventAccept); err != nil {
			return deny(ReasonInvalidState, err.Error())
		}
	case ActionCompleteFoodDonation:
		if target == nil {
			return allow()
		}
		if _, err := Next(target.Status, EventComplete); err != nil {
			return deny(ReasonInvalidState, err.Error())
		}
	case ActionUpdateOwnProfile:
		if target == nil || target.OwnerID != actor.ID {
			return deny(ReasonNotSelf, "you can only update your own profile")
		}
	}

	return allow()
}

func forbiddenMessage(action Action) string {
	switch action {
	case ActionCreateFoodDonation:
		return "only donors can create food donations"
	case ActionAcceptFoodDonation:
		return "only NGOs can accept food donations"
	case ActionCompleteFoodDonation:
		return "only volunteers can complete food donations"
	case ActionCreateMoneyDonationOrder, ActionSaveMoneyDonation:
		return "only donors can make money donations"
	case ActionListMoneyDonations:
		return "only admins can view money donations"
	case ActionListUsers, ActionDeleteUser:
		return "only admins can manage users"
	default:
		return "access denied"
	}
}
