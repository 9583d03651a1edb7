package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	cartdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/cart/domain"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/config"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/orderapi"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/adapters"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/adapters/cardgate"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/adapters/paypal"
	paymentdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/payment/domain"
)

const cardgateSecret = "whsec_cardgate"

type starterStub struct {
	mu          sync.Mutex
	transitions []paymentdomain.Transition
	err         error

	calls     int
	lastOrder string
	lastProof paymentdomain.PaymentProof
	lastCart  cartdomain.Identity
	done      chan struct{}
}

func (s *starterStub) Reconcile(ctx context.Context, orderID string, proof paymentdomain.PaymentProof, cart cartdomain.Identity) (<-chan paymentdomain.Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastOrder = orderID
	s.lastProof = proof
	s.lastCart = cart
	if s.err != nil {
		return nil, s.err
	}

	out := make(chan paymentdomain.Transition, len(s.transitions))
	for _, tr := range s.transitions {
		out <- tr
	}
	close(out)
	if s.done != nil {
		close(s.done)
	}
	return out, nil
}

type minterStub struct {
	id    string
	err   error
	calls int
}

func (m *minterStub) MintGuestIdentity(ctx context.Context) (cartdomain.Identity, error) {
	m.calls++
	if m.err != nil {
		return cartdomain.Identity{}, m.err
	}
	return cartdomain.GuestIdentity(m.id), nil
}

func newTestServer(t *testing.T, starter *starterStub) *Server {
	t.Helper()
	return newTestServerWithMinter(t, starter, &minterStub{id: "g_fresh"})
}

func newTestServerWithMinter(t *testing.T, starter *starterStub, minter *minterStub) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(Params{
		Gin:      engine,
		Cfg:      config.Config{},
		Log:      zap.NewNop(),
		Starter:  starter,
		Minter:   minter,
		Registry: adapters.NewRegistry(cardgate.NewFactory(), paypal.NewFactory()),
		AdapterCfgs: map[string]paymentdomain.AdapterConfig{
			"cardgate": {WebhookSecret: cardgateSecret},
			"paypal":   {WebhookSecret: "whsec_paypal"},
		},
	})
	registerRoutes(srv)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	return rec
}

func TestHandleReconcile(t *testing.T) {
	starter := &starterStub{
		transitions: []paymentdomain.Transition{
			{State: paymentdomain.StateVerifying},
			{
				State:    paymentdomain.StatePaymentSuccessful,
				Attempt:  2,
				Snapshot: &orderapi.OrderSnapshot{OrderID: "ord_1", GrandTotal: 999},
			},
		},
	}
	srv := newTestServer(t, starter)

	rec := doJSON(t, srv, http.MethodPost, "/v1/orders/ord_1/reconcile", reconcileRequest{
		Proof:  reconcileProof{Kind: "gateway_session", SessionID: "cs_1"},
		UserID: "u_1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp reconcileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.State != string(paymentdomain.StatePaymentSuccessful) || !resp.Paid {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Attempts != 2 || len(resp.States) != 2 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Order == nil || resp.Order.GrandTotal != 999 {
		t.Fatalf("order snapshot missing: %+v", resp.Order)
	}
	if starter.lastProof.SessionID != "cs_1" || starter.lastCart.UserID != "u_1" {
		t.Fatalf("starter got proof %+v cart %+v", starter.lastProof, starter.lastCart)
	}
}

func TestHandleReconcileValidation(t *testing.T) {
	starter := &starterStub{}
	srv := newTestServer(t, starter)

	rec := doJSON(t, srv, http.MethodPost, "/v1/orders/ord_1/reconcile", reconcileRequest{
		Proof: reconcileProof{Kind: "carrier_pigeon"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown proof kind status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/v1/orders/ord_1/reconcile", reconcileRequest{
		UserID: "u_1",
		CartID: "g_1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("ambiguous cart identity status = %d", rec.Code)
	}
	if starter.calls != 0 {
		t.Fatalf("starter called %d times for invalid requests", starter.calls)
	}
}

func TestHandleReconcileMintsGuestIdentity(t *testing.T) {
	starter := &starterStub{
		transitions: []paymentdomain.Transition{
			{State: paymentdomain.StateVerifying},
			{State: paymentdomain.StateUnpaid, Attempt: 1},
		},
	}
	minter := &minterStub{id: "g_fresh"}
	srv := newTestServerWithMinter(t, starter, minter)

	rec := doJSON(t, srv, http.MethodPost, "/v1/orders/ord_1/reconcile", reconcileRequest{
		Proof: reconcileProof{Kind: "none"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if minter.calls != 1 {
		t.Fatalf("minter called %d times", minter.calls)
	}
	if starter.lastCart.CartID != "g_fresh" || starter.lastCart.UserID != "" {
		t.Fatalf("starter got cart %+v", starter.lastCart)
	}

	var resp reconcileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CartID != "g_fresh" {
		t.Fatalf("minted cart id missing from response: %+v", resp)
	}
}

func TestHandleReconcileRunInFlight(t *testing.T) {
	srv := newTestServer(t, &starterStub{err: paymentdomain.ErrRunInFlight})

	rec := doJSON(t, srv, http.MethodPost, "/v1/orders/ord_1/reconcile", reconcileRequest{UserID: "u_1"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func signCardgate(payload []byte, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(cardgateSecret))
	mac.Write([]byte(timestamp + "." + string(payload)))
	return "t=" + timestamp + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

func TestHandlePaymentWebhook(t *testing.T) {
	starter := &starterStub{
		transitions: []paymentdomain.Transition{
			{State: paymentdomain.StateVerifying},
			{State: paymentdomain.StatePaymentSuccessful, Attempt: 1},
		},
		done: make(chan struct{}),
	}
	srv := newTestServer(t, starter)

	payload := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"session_id": "cs_1", "order_id": "ord_1", "metadata": {"user_id": "u_1"}}
	}`)

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/payments/cardgate", bytes.NewReader(payload))
	req.Header.Set("Cardgate-Signature", signCardgate(payload, "1700000000"))
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	select {
	case <-starter.done:
	case <-time.After(time.Second):
		t.Fatalf("reconciliation was not started")
	}
	if starter.lastOrder != "ord_1" || starter.lastProof.SessionID != "cs_1" {
		t.Fatalf("starter got order %q proof %+v", starter.lastOrder, starter.lastProof)
	}
}

func TestHandlePaymentWebhookRejectsBadSignature(t *testing.T) {
	starter := &starterStub{}
	srv := newTestServer(t, starter)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/payments/cardgate", bytes.NewReader(payload))
	req.Header.Set("Cardgate-Signature", "t=1,v1=deadbeef")
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if starter.calls != 0 {
		t.Fatalf("starter called despite bad signature")
	}
}

func TestHandlePaymentWebhookUnknownProvider(t *testing.T) {
	srv := newTestServer(t, &starterStub{})

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/payments/venmo", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandlePaymentWebhookIgnoredEvent(t *testing.T) {
	starter := &starterStub{}
	srv := newTestServer(t, starter)

	payload := []byte(`{"id":"evt_1","type":"charge.refunded","data":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/payments/cardgate", bytes.NewReader(payload))
	req.Header.Set("Cardgate-Signature", signCardgate(payload, "1700000000"))
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for ignored event", rec.Code)
	}
	if starter.calls != 0 {
		t.Fatalf("starter called for ignored event")
	}
}
