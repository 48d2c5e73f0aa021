package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nourishtogether/donation-api/internal/dto"
	apierrors "github.com/nourishtogether/donation-api/internal/errors"
	"github.com/nourishtogether/donation-api/internal/models"
	"github.com/nourishtogether/donation-api/internal/policy"
	"github.com/nourishtogether/donation-api/internal/services"
)

// FoodDonationHandler serves food donation creation, listing and the
// accept/complete transitions.
type FoodDonationHandler struct {
	donationService *services.DonationService
}

func NewFoodDonationHandler(donationService *services.DonationService) *FoodDonationHandler {
	return &FoodDonationHandler{donationService: donationService}
}

// quantity accepts either a JSON string ("10kg") or a number (10).
type quantity string

func (q *quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = quantity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("quantity must be a string or a number")
	}
	*q = quantity(n.String())
	return nil
}

// CreateFoodDonation records a pending donation for the calling donor.
func (h *FoodDonationHandler) CreateFoodDonation(c *gin.Context) {
	type CreateFoodDonationRequest struct {
		FoodType   string    `json:"foodType" binding:"required,max=255"`
		Quantity   quantity  `json:"quantity" binding:"required,max=100"`
		Location   string    `json:"location" binding:"required,max=255"`
		ExpiryTime time.Time `json:"expiryTime" binding:"required"`
	}

	actor, ok := authorizedActor(c, policy.ActionCreateFoodDonation)
	if !ok {
		return
	}

	var req CreateFoodDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, err)
		return
	}

	donation, err := h.donationService.CreateFood(c.Request.Context(), actor, services.CreateFoodInput{
		FoodType:   req.FoodType,
		Quantity:   string(req.Quantity),
		Location:   req.Location,
		ExpiryTime: req.ExpiryTime,
	})
	if err != nil {
		respondDonationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OK(dto.ToFoodDonationDTO(*donation)))
}

// ListFoodDonations returns the donations visible to the caller's role.
func (h *FoodDonationHandler) ListFoodDonations(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	donations, err := h.donationService.ListFood(c.Request.Context(), actor)
	if err != nil {
		respondDonationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.List(dto.ToFoodDonationDTOs(donations), len(donations)))
}

// AcceptFoodDonation lets an NGO take a pending donation.
func (h *FoodDonationHandler) AcceptFoodDonation(c *gin.Context) {
	h.transition(c, h.donationService.Accept)
}

// CompleteFoodDonation lets a volunteer mark an accepted donation delivered.
func (h *FoodDonationHandler) CompleteFoodDonation(c *gin.Context) {
	h.transition(c, h.donationService.Complete)
}

func (h *FoodDonationHandler) transition(c *gin.Context, apply func(ctx context.Context, actor policy.Actor, id string) (*models.FoodDonation, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	donation, err := apply(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondDonationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToFoodDonationDTO(*donation)))
}
