package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/nourishtogether/donation-api/internal/auth"
	"github.com/nourishtogether/donation-api/internal/constants"
	apierrors "github.com/nourishtogether/donation-api/internal/errors"
	"github.com/nourishtogether/donation-api/internal/models"
	"github.com/nourishtogether/donation-api/internal/policy"
	"github.com/rs/zerolog"
)

// Authenticator resolves a bearer token to the stored identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth checks the bearer token and loads the current identity. The
// role is taken from the store, never from the token.
func RequireAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			apierrors.Unauthorized(c, "not authorized, no token")
			c.Abort()
			return
		}

		user, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				apierrors.Unauthorized(c, "not authorized, token failed")
			} else {
				zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("auth.lookup_failed")
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		actor := policy.Actor{ID: user.ID, Role: user.Role}
		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyActor, actor)

		logger := zerolog.Ctx(c.Request.Context()).With().
			Str("user_id", user.ID).
			Str("actor_role", string(user.Role)).
			Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()
	}
}

// GetActor retrieves the authenticated actor from context
func GetActor(c *gin.Context) (policy.Actor, bool) {
	v, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return policy.Actor{}, false
	}
	actor, ok := v.(policy.Actor)
	if !ok || actor.ID == "" {
		return policy.Actor{}, false
	}
	return actor, true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
