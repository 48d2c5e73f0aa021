package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nourishtogether/donation-api/internal/constants"
	apierrors "github.com/nourishtogether/donation-api/internal/errors"
	"github.com/nourishtogether/donation-api/internal/middleware"
	"github.com/nourishtogether/donation-api/internal/payments"
	"github.com/nourishtogether/donation-api/internal/policy"
	"github.com/nourishtogether/donation-api/internal/services"
	"github.com/rs/zerolog"
)

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordTooShort):
		apierrors.BadRequest(c, fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrCannotDeleteSelf):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, "user already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrImageStoreNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		respondCommonError(c, err)
	}
}

func respondDonationError(c *gin.Context, err error) {
	var orphan *services.OrphanedPaymentError
	switch {
	case errors.Is(err, services.ErrDonationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrDuplicatePayment):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrGatewayNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, payments.ErrGateway):
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("payment.gateway_failed")
		apierrors.BadGateway(c, gatewayMessage(err))
	case errors.As(err, &orphan):
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("payment_id", orphan.PaymentID).Msg("payment.orphaned")
		apierrors.RespondWithError(c, http.StatusInternalServerError, apierrors.NewAPIErrorWithDetails(
			apierrors.ErrCodeInternalError, orphan.Error(), map[string]string{"paymentId": orphan.PaymentID}))
	default:
		respondCommonError(c, err)
	}
}

// respondCommonError maps the errors every service can return.
func respondCommonError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, policy.ErrInvalidState):
		apierrors.StateConflict(c, err.Error())
	case errors.Is(err, policy.ErrForbiddenRole), errors.Is(err, policy.ErrNotSelf):
		apierrors.Forbidden(c, err.Error())
	case errors.As(err, &verr):
		apierrors.BadRequestWithDetails(c, verr.Message, map[string]string{verr.Field: verr.Message})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request.failed")
		apierrors.InternalError(c, "")
	}
}

func gatewayMessage(err error) string {
	var gerr *payments.GatewayError
	if errors.As(err, &gerr) && gerr.Op != "" {
		return "payment gateway " + gerr.Op + " failed"
	}
	return payments.ErrGateway.Error()
}

func currentActor(c *gin.Context) (policy.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
	}
	return actor, ok
}

// authorizedActor resolves the caller and rejects a role that can never
// perform action, before the request body is read.
func authorizedActor(c *gin.Context, action policy.Action) (policy.Actor, bool) {
	actor, ok := currentActor(c)
	if !ok {
		return actor, false
	}
	if !policy.RoleAllowed(actor.Role, action) {
		respondCommonError(c, policy.CanPerform(actor, action, nil).Err(action))
		return actor, false
	}
	return actor, true
}
