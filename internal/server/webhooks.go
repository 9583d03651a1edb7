package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	cartdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/cart/domain"
	paymentdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
)

// HandlePaymentWebhook authenticates a provider callback and starts a
// reconciliation run for the order it names. The run outlives the request;
// the provider only needs the acknowledgement.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))

	allowed, err := s.webhookLimiter.AllowProvider(c.Request.Context(), provider)
	if err != nil {
		s.log.Warn("webhook rate limiter unavailable", zap.Error(err))
	} else if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"status": "rate_limited"})
		return
	}

	cfg, ok := s.adapterCfgs[provider]
	if !ok {
		AbortWithError(c, paymentdomain.ErrProviderNotFound)
		return
	}
	adapter, err := s.registry.NewAdapter(provider, cfg)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	if err := adapter.VerifySignature(ctx, payload, c.Request.Header); err != nil {
		AbortWithError(c, err)
		return
	}

	callback, err := adapter.ParseCallback(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		AbortWithError(c, err)
		return
	}

	cart := cartdomain.Identity{
		UserID: strings.TrimSpace(callback.UserID),
		CartID: strings.TrimSpace(callback.CartID),
	}

	// Detach from the request context so the run survives the 202.
	runCtx := context.WithoutCancel(ctx)
	transitions, err := s.starter.Reconcile(runCtx, callback.OrderID, callback.Proof, cart)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrRunInFlight) {
			c.JSON(http.StatusOK, gin.H{"status": "in_flight"})
			return
		}
		AbortWithError(c, err)
		return
	}

	go func() {
		for tr := range transitions {
			if tr.State.Terminal() {
				s.log.Info("webhook reconciliation finished",
					zap.String("provider", provider),
					zap.String("order_id", callback.OrderID),
					zap.String("state", string(tr.State)),
				)
			}
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "event_id": callback.EventID})
}
