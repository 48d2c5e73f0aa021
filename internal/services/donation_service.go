package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nourishtogether/donation-api/internal/metrics"
	"github.com/nourishtogether/donation-api/internal/models"
	"github.com/nourishtogether/donation-api/internal/policy"
	"github.com/nourishtogether/donation-api/internal/repository"
	"github.com/rs/zerolog"
)

var ErrDonationNotFound = errors.New("donation not found")

// DonationService runs food donation creation, scoped listing and the
// accept/complete state machine.
type DonationService struct {
	repo    repository.FoodDonationRepository
	metrics *metrics.Metrics
}

// NewDonationService creates a new DonationService. m may be nil.
func NewDonationService(repo repository.FoodDonationRepository, m *metrics.Metrics) *DonationService {
	return &DonationService{repo: repo, metrics: m}
}

// CreateFoodInput represents input for creating a food donation
type CreateFoodInput struct {
	FoodType   string
	Quantity   string
	Location   string
	ExpiryTime time.Time
}

// CreateFood records a new pending donation owned by the actor.
func (s *DonationService) CreateFood(ctx context.Context, actor policy.Actor, input CreateFoodInput) (*models.FoodDonation, error) {
	if err := policy.CanPerform(actor, policy.ActionCreateFoodDonation, nil).Err(policy.ActionCreateFoodDonation); err != nil {
		return nil, err
	}

	input.FoodType = strings.TrimSpace(input.FoodType)
	input.Quantity = strings.TrimSpace(input.Quantity)
	input.Location = strings.TrimSpace(input.Location)
	switch {
	case input.FoodType == "":
		return nil, invalid("foodType", "foodType is required")
	case input.Quantity == "":
		return nil, invalid("quantity", "quantity is required")
	case input.Location == "":
		return nil, invalid("location", "location is required")
	case input.ExpiryTime.IsZero():
		return nil, invalid("expiryTime", "expiryTime is required")
	}

	donation := &models.FoodDonation{
		DonorID:    actor.ID,
		FoodType:   input.FoodType,
		Quantity:   input.Quantity,
		Location:   input.Location,
		ExpiryTime: input.ExpiryTime,
		Status:     models.DonationStatusPending,
	}
	if err := s.repo.Create(ctx, donation); err != nil {
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("donation_id", donation.ID).Msg("food_donation.created")
	return s.repo.FindByID(ctx, donation.ID)
}

// ListFood returns the donations visible to the actor: donors see their
// own, NGOs the pending queue, volunteers the accepted queue, admins all.
func (s *DonationService) ListFood(ctx context.Context, actor policy.Actor) ([]models.FoodDonation, error) {
	if err := policy.CanPerform(actor, policy.ActionListFoodDonations, nil).Err(policy.ActionListFoodDonations); err != nil {
		return nil, err
	}
	scope, ok := policy.ScopeFor(actor)
	if !ok {
		return nil, &policy.DeniedError{
			Action:  policy.ActionListFoodDonations,
			Reason:  policy.ReasonForbiddenRole,
			Message: "access denied",
		}
	}

	donations, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list donations: %w", err)
	}
	return donations, nil
}

// Accept moves a pending donation to accepted and records the NGO.
func (s *DonationService) Accept(ctx context.Context, actor policy.Actor, id string) (*models.FoodDonation, error) {
	return s.transition(ctx, actor, id, policy.ActionAcceptFoodDonation)
}

// Complete moves an accepted donation to completed and records the volunteer.
func (s *DonationService) Complete(ctx context.Context, actor policy.Actor, id string) (*models.FoodDonation, error) {
	return s.transition(ctx, actor, id, policy.ActionCompleteFoodDonation)
}

// transition checks the role before touching the store, so a wrong-role
// caller gets the same answer whether or not the id exists. The state guard
// is evaluated once on the read record and once more, atomically, by the
// conditional update.
func (s *DonationService) transition(ctx context.Context, actor policy.Actor, id string, action policy.Action) (*models.FoodDonation, error) {
	event, ok := policy.EventFor(action)
	if !ok {
		return nil, fmt.Errorf("action %s is not a transition", action)
	}
	log := zerolog.Ctx(ctx).With().Str("donation_id", id).Str("event", string(event)).Logger()

	if !policy.RoleAllowed(actor.Role, action) {
		s.metrics.Transition(string(event), metrics.OutcomeForbidden)
		return nil, policy.CanPerform(actor, action, nil).Err(action)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.Transition(string(event), metrics.OutcomeNotFound)
			return nil, ErrDonationNotFound
		}
		s.metrics.Transition(string(event), metrics.OutcomeError)
		return nil, fmt.Errorf("failed to load donation: %w", err)
	}

	if err := policy.CanPerform(actor, action, &policy.Target{Status: current.Status}).Err(action); err != nil {
		s.metrics.Transition(string(event), metrics.OutcomeConflict)
		return nil, err
	}

	plan, err := policy.Plan(current.Status, event, actor.ID)
	if err != nil {
		s.metrics.Transition(string(event), metrics.OutcomeConflict)
		return nil, stateDenied(action, err.Error())
	}

	updated, err := s.repo.CompareAndSwapStatus(ctx, id, plan)
	if err != nil {
		var stale *repository.StaleStateError
		switch {
		case errors.As(err, &stale):
			// Another actor transitioned the record after it was read.
			s.metrics.Transition(string(event), metrics.OutcomeConflict)
			log.Info().Str("observed", string(stale.Current)).Msg("food_donation.transition.lost_race")
			if denied := policy.CanPerform(actor, action, &policy.Target{Status: stale.Current}).Err(action); denied != nil {
				return nil, denied
			}
			return nil, stateDenied(action, policy.ErrAlreadyProcessed.Error())
		case errors.Is(err, repository.ErrNotFound):
			s.metrics.Transition(string(event), metrics.OutcomeNotFound)
			return nil, ErrDonationNotFound
		default:
			s.metrics.Transition(string(event), metrics.OutcomeError)
			return nil, fmt.Errorf("failed to update donation: %w", err)
		}
	}

	s.metrics.Transition(string(event), metrics.OutcomeApplied)
	log.Info().Str("actor_id", actor.ID).Str("status", string(updated.Status)).Msg("food_donation.transitioned")
	return updated, nil
}

func stateDenied(action policy.Action, message string) error {
	return &policy.DeniedError{Action: action, Reason: policy.ReasonInvalidState, Message: message}
}
