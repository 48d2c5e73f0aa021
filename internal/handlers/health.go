package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nourishtogether/donation-api/internal/dto"
	apierrors "github.com/nourishtogether/donation-api/internal/errors"
)

// Pinger is a dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler probes each named dependency. Nil entries are skipped.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	active := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			active[name] = p
		}
	}
	return &HealthHandler{checks: active}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	healthy := true
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	if !healthy {
		apierrors.RespondWithError(c, http.StatusServiceUnavailable, apierrors.NewAPIErrorWithDetails(
			apierrors.ErrCodeServiceUnavailable, "dependency check failed", results))
		return
	}
	c.JSON(http.StatusOK, dto.OK(gin.H{"status": "ok", "checks": results}))
}
