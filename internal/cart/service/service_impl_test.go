package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	cartdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/cart/domain"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/clock"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/orderapi"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/store"
	"github.com/Tijo-11/Vector-Ecom-sub001/pkg/db/pagination"
)

type cartOrdersStub struct {
	pages     []*orderapi.ListCartItemsResponse
	listErr   error
	failItems map[string]error

	listCalls  int
	deleted    []string
	lastRef    orderapi.CartRef
	lastTokens []string
}

func (s *cartOrdersStub) GetOrder(ctx context.Context, orderID string) (*orderapi.OrderSnapshot, error) {
	return nil, errors.New("not used")
}

func (s *cartOrdersStub) SettlePayment(ctx context.Context, orderID string, req orderapi.SettleRequest) (string, error) {
	return "", errors.New("not used")
}

func (s *cartOrdersStub) ListCartItems(ctx context.Context, ref orderapi.CartRef, pageToken string, pageSize int) (*orderapi.ListCartItemsResponse, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.lastRef = ref
	s.lastTokens = append(s.lastTokens, pageToken)
	if s.listCalls >= len(s.pages) {
		return &orderapi.ListCartItemsResponse{}, nil
	}
	page := s.pages[s.listCalls]
	s.listCalls++
	return page, nil
}

func (s *cartOrdersStub) DeleteCartItem(ctx context.Context, ref orderapi.CartRef, itemID string) error {
	if err, ok := s.failItems[itemID]; ok {
		return err
	}
	s.deleted = append(s.deleted, itemID)
	return nil
}

func newCartService(orders *cartOrdersStub, storage store.Storage) *Service {
	return NewService(Params{
		Log:    zap.NewNop(),
		Orders: orders,
		Store:  storage,
		Clock:  clock.NewFakeClock(time.Unix(1700000000, 0)),
	})
}

func items(ids ...string) []orderapi.CartItem {
	out := make([]orderapi.CartItem, 0, len(ids))
	for _, id := range ids {
		out = append(out, orderapi.CartItem{ItemID: id, ProductID: "p_" + id, Quantity: 1})
	}
	return out
}

func TestDrainDeletesAllPages(t *testing.T) {
	orders := &cartOrdersStub{
		pages: []*orderapi.ListCartItemsResponse{
			{
				Items:    items("i1", "i2"),
				PageInfo: pagination.PageInfo{NextPageToken: "tok2", HasMore: true},
			},
			{
				Items: items("i3"),
			},
		},
	}
	storage := store.NewMemory()
	svc := newCartService(orders, storage)
	identity := cartdomain.UserIdentity("u_1")

	if err := svc.Drain(context.Background(), identity); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	if len(orders.deleted) != 3 {
		t.Fatalf("deleted %v, want 3 items", orders.deleted)
	}
	if orders.lastRef.UserID != "u_1" {
		t.Fatalf("listed wrong cart: %+v", orders.lastRef)
	}
	if len(orders.lastTokens) != 2 || orders.lastTokens[1] != "tok2" {
		t.Fatalf("page tokens = %v, want second request with tok2", orders.lastTokens)
	}

	counter, err := storage.Get(context.Background(), identity.CounterKey())
	if err != nil || counter != "0" {
		t.Fatalf("counter = %q (err %v), want \"0\"", counter, err)
	}
}

func TestDrainContinuesPastFailedDeletes(t *testing.T) {
	orders := &cartOrdersStub{
		pages: []*orderapi.ListCartItemsResponse{
			{Items: items("i1", "i2", "i3")},
		},
		failItems: map[string]error{"i2": errors.New("conflict")},
	}
	storage := store.NewMemory()
	svc := newCartService(orders, storage)

	var result cartdomain.DrainResult
	svc.Subscribe(func(r cartdomain.DrainResult) { result = r })

	identity := cartdomain.UserIdentity("u_1")
	if err := svc.Drain(context.Background(), identity); err != nil {
		t.Fatalf("Drain must swallow per-item failures, got %v", err)
	}

	if len(orders.deleted) != 2 {
		t.Fatalf("deleted %v, want i1 and i3", orders.deleted)
	}
	if result.ItemsDeleted != 2 || result.ItemsFailed != 1 {
		t.Fatalf("observer result = %+v, want 2 deleted / 1 failed", result)
	}

	// The counter resets even after a partial drain.
	counter, err := storage.Get(context.Background(), identity.CounterKey())
	if err != nil || counter != "0" {
		t.Fatalf("counter = %q (err %v), want \"0\"", counter, err)
	}
}

func TestDrainClearsGuestCartID(t *testing.T) {
	orders := &cartOrdersStub{}
	storage := store.NewMemory()
	svc := newCartService(orders, storage)

	identity := cartdomain.GuestIdentity("g_abc")
	if err := storage.Set(context.Background(), identity.GuestIDKey(), "g_abc"); err != nil {
		t.Fatalf("seed guest id: %v", err)
	}

	if err := svc.Drain(context.Background(), identity); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	if _, err := storage.Get(context.Background(), identity.GuestIDKey()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("guest id still present after drain (err %v)", err)
	}
	if orders.lastRef.CartID != "g_abc" {
		t.Fatalf("listed wrong cart: %+v", orders.lastRef)
	}
}

func TestDrainRejectsAmbiguousIdentity(t *testing.T) {
	svc := newCartService(&cartOrdersStub{}, store.NewMemory())

	err := svc.Drain(context.Background(), cartdomain.Identity{UserID: "u", CartID: "c"})
	if !errors.Is(err, cartdomain.ErrInvalidIdentity) {
		t.Fatalf("err = %v, want ErrInvalidIdentity", err)
	}
	if err := svc.Drain(context.Background(), cartdomain.Identity{}); !errors.Is(err, cartdomain.ErrInvalidIdentity) {
		t.Fatalf("empty identity err = %v, want ErrInvalidIdentity", err)
	}
}

func TestDrainListFailureStillResetsCounter(t *testing.T) {
	orders := &cartOrdersStub{listErr: errors.New("service unavailable")}
	storage := store.NewMemory()
	svc := newCartService(orders, storage)
	identity := cartdomain.UserIdentity("u_1")

	if err := svc.Drain(context.Background(), identity); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	counter, err := storage.Get(context.Background(), identity.CounterKey())
	if err != nil || counter != "0" {
		t.Fatalf("counter = %q (err %v), want \"0\"", counter, err)
	}
}

func TestMintGuestIdentity(t *testing.T) {
	storage := store.NewMemory()
	svc := newCartService(&cartOrdersStub{}, storage)

	identity, err := svc.MintGuestIdentity(context.Background())
	if err != nil {
		t.Fatalf("MintGuestIdentity: %v", err)
	}
	if !identity.Guest() {
		t.Fatalf("minted identity is not a guest: %+v", identity)
	}

	stored, err := storage.Get(context.Background(), identity.GuestIDKey())
	if err != nil || stored != identity.CartID {
		t.Fatalf("stored guest id = %q (err %v), want %q", stored, err, identity.CartID)
	}
}
