package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout"
	withdrawaldomain "github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/withdrawal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlePayoutWebhook verifies the provider signature, parses the delivery
// into a canonical payout notification and feeds it through reconciliation.
// Deliveries the provider retries resolve to the same (withdrawal,
// reference) pair, so replays are harmless.
func (s *Server) HandlePayoutWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))

	adapter, err := s.registry.Webhook(provider)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := adapter.Verify(c.Request.Context(), payload, c.Request.Header); err != nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	notification, err := adapter.Parse(c.Request.Context(), payload)
	if err != nil {
		if errors.Is(err, payout.ErrEventIgnored) {
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		AbortWithError(c, invalidRequestError())
		return
	}

	err = s.withdrawalSvc.HandlePayoutResult(c.Request.Context(), withdrawaldomain.PayoutResultRequest{
		WithdrawalID:  notification.WithdrawalID,
		Reference:     notification.Reference,
		Outcome:       notification.Outcome,
		FailureReason: notification.FailureReason,
	})
	if err != nil {
		s.log.Warn("payout webhook reconciliation failed",
			zap.String("provider", provider),
			zap.String("reference", notification.Reference),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
