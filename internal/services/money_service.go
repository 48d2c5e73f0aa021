package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nourishtogether/donation-api/internal/metrics"
	"github.com/nourishtogether/donation-api/internal/models"
	"github.com/nourishtogether/donation-api/internal/payments"
	"github.com/nourishtogether/donation-api/internal/policy"
	"github.com/nourishtogether/donation-api/internal/repository"
	"github.com/nourishtogether/donation-api/internal/utils"
	"github.com/rs/zerolog"
)

var (
	ErrGatewayNotConfigured = errors.New("payment gateway is not configured")
	ErrDuplicatePayment     = errors.New("payment already recorded")
	ErrOrphanedPayment      = errors.New("payment was not recorded")
)

// OrphanedPaymentError reports a payment that succeeded at the gateway but
// whose donation record could not be stored. It needs manual reconciliation.
type OrphanedPaymentError struct {
	PaymentID string
	Err       error
}

func (e *OrphanedPaymentError) Error() string {
	return fmt.Sprintf("payment %s succeeded but the donation could not be recorded; contact support with this payment id", e.PaymentID)
}

func (e *OrphanedPaymentError) Unwrap() error { return e.Err }

func (e *OrphanedPaymentError) Is(target error) bool { return target == ErrOrphanedPayment }

// MoneyService bridges the gateway's order/payment handshake and the money
// donation records.
type MoneyService struct {
	repo     repository.MoneyDonationRepository
	gateway  payments.Gateway
	currency string
	verify   bool
	metrics  *metrics.Metrics
}

// MoneyOptions configures a MoneyService.
type MoneyOptions struct {
	Currency string
	// Verify makes RecordDonation fetch the payment from the gateway and
	// check it before persisting.
	Verify  bool
	Metrics *metrics.Metrics
}

// NewMoneyService creates a new MoneyService. gateway may be nil, in which
// case order creation and verified recording are refused.
func NewMoneyService(repo repository.MoneyDonationRepository, gateway payments.Gateway, opts MoneyOptions) *MoneyService {
	currency := strings.ToUpper(strings.TrimSpace(opts.Currency))
	if currency == "" {
		currency = "INR"
	}
	return &MoneyService{
		repo:     repo,
		gateway:  gateway,
		currency: currency,
		verify:   opts.Verify,
		metrics:  opts.Metrics,
	}
}

// CreateOrder asks the gateway for an order of amount whole currency units
// and returns the descriptor unchanged. Gateway calls are not retried.
func (s *MoneyService) CreateOrder(ctx context.Context, actor policy.Actor, amount int64) (payments.Order, error) {
	if err := policy.CanPerform(actor, policy.ActionCreateMoneyDonationOrder, nil).Err(policy.ActionCreateMoneyDonationOrder); err != nil {
		return nil, err
	}
	minor, err := amountToMinor(amount)
	if err != nil {
		return nil, err
	}
	if s.gateway == nil {
		return nil, ErrGatewayNotConfigured
	}

	order, err := s.gateway.CreateOrder(ctx, payments.OrderRequest{
		AmountMinor: minor,
		Currency:    s.currency,
		Receipt:     utils.GenerateReceipt(),
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("amount", amount).Msg("payment.order.failed")
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("order_id", order.ID()).Int64("amount", amount).Msg("payment.order.created")
	return order, nil
}

// RecordInput is the client's report of a completed payment.
type RecordInput struct {
	Amount    int64
	PaymentID string
	OrderID   string
}

// RecordDonation persists a money donation for a payment the client reports
// as successful. With verification on, the payment is fetched from the
// gateway and must be settled, for the same amount and order.
func (s *MoneyService) RecordDonation(ctx context.Context, actor policy.Actor, input RecordInput) (*models.MoneyDonation, error) {
	if err := policy.CanPerform(actor, policy.ActionSaveMoneyDonation, nil).Err(policy.ActionSaveMoneyDonation); err != nil {
		return nil, err
	}

	input.PaymentID = strings.TrimSpace(input.PaymentID)
	input.OrderID = strings.TrimSpace(input.OrderID)
	if _, err := amountToMinor(input.Amount); err != nil {
		return nil, err
	}
	if input.PaymentID == "" {
		return nil, invalid("paymentId", "paymentId is required")
	}

	log := zerolog.Ctx(ctx).With().Str("payment_id", input.PaymentID).Logger()

	if s.verify {
		if err := s.verifyPayment(ctx, input); err != nil {
			s.metrics.MoneyDonation(metrics.OutcomeRejected)
			log.Warn().Err(err).Msg("payment.verify.rejected")
			return nil, err
		}
	}

	donation := &models.MoneyDonation{
		DonorID:   actor.ID,
		Amount:    input.Amount,
		PaymentID: input.PaymentID,
		OrderID:   input.OrderID,
	}
	if err := s.repo.Create(ctx, donation); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.MoneyDonation(metrics.OutcomeDuplicate)
			return nil, ErrDuplicatePayment
		}
		s.metrics.MoneyDonation(metrics.OutcomeOrphaned)
		log.Error().Err(err).Int64("amount", input.Amount).Str("donor_id", actor.ID).Msg("payment.orphaned")
		return nil, &OrphanedPaymentError{PaymentID: input.PaymentID, Err: err}
	}

	s.metrics.MoneyDonation(metrics.OutcomeRecorded)
	log.Info().Str("donation_id", donation.ID).Int64("amount", donation.Amount).Msg("money_donation.recorded")
	return donation, nil
}

func (s *MoneyService) verifyPayment(ctx context.Context, input RecordInput) error {
	if s.gateway == nil {
		return ErrGatewayNotConfigured
	}
	minor, err := amountToMinor(input.Amount)
	if err != nil {
		return err
	}
	payment, err := s.gateway.FetchPayment(ctx, input.PaymentID)
	if err != nil {
		return fmt.Errorf("verify payment %s: %w", input.PaymentID, err)
	}

	switch {
	case !payment.Settled():
		return invalid("paymentId", "payment %s is %s, not completed", input.PaymentID, payment.Status)
	case payment.AmountMinor != minor:
		return invalid("amount", "amount does not match payment %s", input.PaymentID)
	case payment.Currency != "" && !strings.EqualFold(payment.Currency, s.currency):
		return invalid("paymentId", "payment %s was made in %s", input.PaymentID, payment.Currency)
	case input.OrderID != "" && payment.OrderID != input.OrderID:
		return invalid("orderId", "payment %s does not belong to order %s", input.PaymentID, input.OrderID)
	}
	return nil
}

// amountToMinor validates a whole-unit amount and converts it for the gateway.
func amountToMinor(amount int64) (int64, error) {
	if amount <= 0 {
		return 0, invalid("amount", "amount must be a positive integer")
	}
	minor, err := payments.ToMinor(amount)
	if err != nil {
		return 0, invalid("amount", "amount must not exceed %d", int64(payments.MaxAmount))
	}
	return minor, nil
}

// ListDonations returns every money donation. Admin only.
func (s *MoneyService) ListDonations(ctx context.Context, actor policy.Actor) ([]models.MoneyDonation, error) {
	if err := policy.CanPerform(actor, policy.ActionListMoneyDonations, nil).Err(policy.ActionListMoneyDonations); err != nil {
		return nil, err
	}
	donations, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list money donations: %w", err)
	}
	return donations, nil
}
