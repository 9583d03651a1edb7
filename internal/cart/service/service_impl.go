package service

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	cartdomain "github.com/Tijo-11/Vector-Ecom-sub001/internal/cart/domain"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/clock"
	obsmetrics "github.com/Tijo-11/Vector-Ecom-sub001/internal/observability/metrics"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/orderapi"
	"github.com/Tijo-11/Vector-Ecom-sub001/internal/store"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const drainPageSize = 50

type Params struct {
	fx.In

	Log        *zap.Logger
	Orders     orderapi.Service
	Store      store.Storage
	Clock      clock.Clock
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	orders     orderapi.Service
	store      store.Storage
	clock      clock.Clock
	obsMetrics *obsmetrics.Metrics

	mu        sync.Mutex
	observers []func(cartdomain.DrainResult)
}

func NewService(p Params) *Service {
	return &Service{
		log:        p.Log.Named("cart.reconciler"),
		orders:     p.Orders,
		store:      p.Store,
		clock:      p.Clock,
		obsMetrics: p.ObsMetrics,
	}
}

// Subscribe registers an observer called after each drain attempt.
func (s *Service) Subscribe(fn func(cartdomain.DrainResult)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Drain removes every item from the identified cart, then resets the visible
// counter and, for guests, clears the persisted cart identifier. Item
// deletions are best-effort: the cart is superseded by a fresh one either
// way, so individual failures are logged and swallowed.
func (s *Service) Drain(ctx context.Context, identity cartdomain.Identity) error {
	if err := identity.Validate(); err != nil {
		return err
	}

	log := s.log.With(
		zap.String("user_id", identity.UserID),
		zap.String("cart_id", identity.CartID),
	)

	deleted, failed := s.drainItems(ctx, identity, log)

	// Counter reset happens after the drain attempt completes, successful
	// or partial, never before.
	if err := s.store.Set(ctx, identity.CounterKey(), "0"); err != nil {
		log.Warn("failed to reset cart counter", zap.Error(err))
	}

	if identity.Guest() {
		if err := s.store.Delete(ctx, identity.GuestIDKey()); err != nil {
			log.Warn("failed to clear guest cart id", zap.Error(err))
		}
	}

	result := cartdomain.DrainResult{
		Identity:     identity,
		ItemsDeleted: deleted,
		ItemsFailed:  failed,
		OccurredAt:   s.clock.Now(),
	}
	s.notify(result)

	if s.obsMetrics != nil {
		s.obsMetrics.RecordCartDrain(ctx, deleted, failed)
	}
	log.Info("cart drained",
		zap.Int("items_deleted", deleted),
		zap.Int("items_failed", failed),
	)
	return nil
}

func (s *Service) drainItems(ctx context.Context, identity cartdomain.Identity, log *zap.Logger) (deleted, failed int) {
	ref := identity.Ref()
	pageToken := ""

	for {
		page, err := s.orders.ListCartItems(ctx, ref, pageToken, drainPageSize)
		if err != nil {
			log.Warn("failed to list cart items", zap.Error(err))
			return deleted, failed
		}

		for _, item := range page.Items {
			if err := s.orders.DeleteCartItem(ctx, ref, item.ItemID); err != nil {
				failed++
				log.Warn("failed to delete cart item",
					zap.String("item_id", item.ItemID),
					zap.Error(err),
				)
				continue
			}
			deleted++
		}

		if !page.PageInfo.HasMore || page.PageInfo.NextPageToken == "" {
			return deleted, failed
		}
		pageToken = page.PageInfo.NextPageToken
	}
}

func (s *Service) notify(result cartdomain.DrainResult) {
	s.mu.Lock()
	observers := make([]func(cartdomain.DrainResult), len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(result)
	}
}

// MintGuestIdentity creates and persists a fresh guest cart identifier.
func (s *Service) MintGuestIdentity(ctx context.Context) (cartdomain.Identity, error) {
	now := s.clock.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(now.UnixNano())), 0)
	id := strings.ToLower(ulid.MustNew(ulid.Timestamp(now), entropy).String())

	identity := cartdomain.GuestIdentity(id)
	if err := s.store.Set(ctx, identity.GuestIDKey(), id); err != nil {
		return cartdomain.Identity{}, err
	}
	return identity, nil
}
