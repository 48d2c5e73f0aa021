package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nourishtogether/donation-api/internal/dto"
	apierrors "github.com/nourishtogether/donation-api/internal/errors"
	"github.com/nourishtogether/donation-api/internal/payments"
	"github.com/nourishtogether/donation-api/internal/policy"
	"github.com/nourishtogether/donation-api/internal/services"
	"github.com/rs/zerolog"
)

// MoneyDonationHandler serves the payment order / donation record handshake.
type MoneyDonationHandler struct {
	moneyService *services.MoneyService
}

func NewMoneyDonationHandler(moneyService *services.MoneyService) *MoneyDonationHandler {
	return &MoneyDonationHandler{moneyService: moneyService}
}

// CreateOrder returns the gateway's order descriptor for the client checkout.
func (h *MoneyDonationHandler) CreateOrder(c *gin.Context) {
	type CreateOrderRequest struct {
		Amount *int64 `json:"amount" binding:"required"`
	}

	actor, ok := authorizedActor(c, policy.ActionCreateMoneyDonationOrder)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, err)
		return
	}

	order, err := h.moneyService.CreateOrder(c.Request.Context(), actor, *req.Amount)
	if err != nil {
		respondDonationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(order))
}

// RecordDonation stores a money donation once the client reports the
// payment as successful.
func (h *MoneyDonationHandler) RecordDonation(c *gin.Context) {
	type RecordDonationRequest struct {
		Amount    *int64 `json:"amount" binding:"required"`
		PaymentID string `json:"paymentId" binding:"required,max=100"`
		OrderID   string `json:"orderId" binding:"max=100"`
	}

	actor, ok := authorizedActor(c, policy.ActionSaveMoneyDonation)
	if !ok {
		return
	}

	var req RecordDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, err)
		return
	}

	donation, err := h.moneyService.RecordDonation(c.Request.Context(), actor, services.RecordInput{
		Amount:    *req.Amount,
		PaymentID: req.PaymentID,
		OrderID:   req.OrderID,
	})
	if err != nil {
		if errors.Is(err, payments.ErrGateway) {
			// Nothing was stored; the client must keep the payment id.
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("payment_id", req.PaymentID).Msg("payment.verify.gateway_failed")
			apierrors.RespondWithError(c, http.StatusBadGateway, apierrors.NewAPIErrorWithDetails(
				apierrors.ErrCodeUpstreamGateway,
				"could not verify payment "+req.PaymentID+" with the payment gateway; the donation was not recorded",
				map[string]string{"paymentId": req.PaymentID},
			))
			return
		}
		respondDonationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OK(dto.ToMoneyDonationDTO(*donation)))
}

// ListDonations returns every money donation. Admin only.
func (h *MoneyDonationHandler) ListDonations(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	donations, err := h.moneyService.ListDonations(c.Request.Context(), actor)
	if err != nil {
		respondDonationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.List(dto.ToMoneyDonationDTOs(donations), len(donations)))
}
