package policy

import (
	"errors"
	"fmt"

	"github.com/nourishtogether/donation-api/internal/models"
)

type Event string

const (
	EventAccept   Event = "accept"
	EventComplete Event = "complete"
)

var (
	ErrAlreadyProcessed = errors.New("donation already processed")
	ErrNotAcceptedYet   = errors.New("donation not accepted yet")
)

// Next returns the status reached by applying event to from.
//
//	pending  --accept-->   accepted
//	accepted --complete--> completed
//
// Every other pair is rejected; completed is terminal.
func Next(from models.DonationStatus, event Event) (models.DonationStatus, error) {
	switch event {
	case EventAccept:
		if from == models.DonationStatusPending {
			return models.DonationStatusAccepted, nil
		}
		return from, ErrAlreadyProcessed
	case EventComplete:
		switch from {
		case models.DonationStatusAccepted:
			return models.DonationStatusCompleted, nil
		case models.DonationStatusPending:
			return from, ErrNotAcceptedYet
		default:
			return from, ErrAlreadyProcessed
		}
	}
	return from, fmt.Errorf("unknown donation event %q", event)
}

// Transition is a fully resolved state change, ready to be applied as a
// single conditional update: "set To (and the actor column) where status is still From".
type Transition struct {
	Event   Event
	From    models.DonationStatus
	To      models.DonationStatus
	ActorID string
}

// EventFor maps a mutating action to its state machine event.
func EventFor(action Action) (Event, bool) {
	switch action {
	case ActionAcceptFoodDonation:
		return EventAccept, true
	case ActionCompleteFoodDonation:
		return EventComplete, true
	}
	return "", false
}

// Plan resolves the transition for event starting from from.
func Plan(from models.DonationStatus, event Event, actorID string) (Transition, error) {
	to, err := Next(from, event)
	if err != nil {
		return Transition{}, err
	}
	return Transition{Event: event, From: from, To: to, ActorID: actorID}, nil
}
