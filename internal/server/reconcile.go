package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	cartdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/cart/domain"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/orderapi"
	paymentdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
)

type reconcileProof struct {
	Kind      string `json:"kind"`
	SessionID string `json:"session_id"`
	CaptureID string `json:"capture_id"`
}

type reconcileRequest struct {
	Proof  reconcileProof `json:"proof"`
	UserID string         `json:"user_id"`
	CartID string         `json:"cart_id"`
}

type reconcileResponse struct {
	OrderID      string                  `json:"order_id"`
	CartID       string                  `json:"cart_id,omitempty"`
	State        string                  `json:"state"`
	Paid         bool                    `json:"paid"`
	Attempts     int                     `json:"attempts"`
	States       []string                `json:"states"`
	Order        *orderapi.OrderSnapshot `json:"order,omitempty"`
	DisplayError string                  `json:"display_error,omitempty"`
}

// HandleReconcile runs a reconciliation to completion and reports the
// terminal state. Verification happens server-side; the caller only supplies
// the proof handed back by the payment provider, if any.
func (s *Server) HandleReconcile(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("order_id"))

	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	proof, err := proofFromRequest(req.Proof)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cart := cartdomain.Identity{
		UserID: strings.TrimSpace(req.UserID),
		CartID: strings.TrimSpace(req.CartID),
	}
	minted := false
	if cart.UserID == "" && cart.CartID == "" {
		// A request with no identity is a fresh guest session. Mint a cart
		// id and hand it back so the storefront keeps using it.
		cart, err = s.minter.MintGuestIdentity(c.Request.Context())
		if err != nil {
			AbortWithError(c, ErrInternal)
			return
		}
		minted = true
	} else if err := cart.Validate(); err != nil {
		AbortWithError(c, err)
		return
	}

	transitions, err := s.starter.Reconcile(c.Request.Context(), orderID, proof, cart)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := reconcileResponse{OrderID: orderID}
	if minted {
		resp.CartID = cart.CartID
	}
	var terminal *paymentdomain.Transition
	for tr := range transitions {
		resp.States = append(resp.States, string(tr.State))
		if tr.State.Terminal() {
			tr := tr
			terminal = &tr
		}
	}
	if terminal == nil {
		// The run was torn down before reaching a terminal state.
		AbortWithError(c, ErrInternal)
		return
	}

	resp.State = string(terminal.State)
	resp.Paid = terminal.State.Success()
	resp.Attempts = terminal.Attempt
	resp.Order = terminal.Snapshot
	if terminal.DisplayErr != nil {
		resp.DisplayError = "order details are temporarily unavailable"
	}

	c.JSON(http.StatusOK, resp)
}

func proofFromRequest(p reconcileProof) (paymentdomain.PaymentProof, error) {
	switch strings.TrimSpace(p.Kind) {
	case "", string(paymentdomain.ProofNone):
		return paymentdomain.NoProof(), nil
	case string(paymentdomain.ProofGatewaySession):
		proof := paymentdomain.GatewaySessionProof(p.SessionID)
		return proof, proof.Validate()
	case string(paymentdomain.ProofPayPalCapture):
		proof := paymentdomain.PayPalCaptureProof(p.CaptureID)
		return proof, proof.Validate()
	default:
		return paymentdomain.PaymentProof{}, paymentdomain.ErrInvalidProof
	}
}
