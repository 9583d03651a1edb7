package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/orderapi"
)

var (
	ErrInvalidIdentity = errors.New("cart identity must carry exactly one of user id or cart id")
)

// Identity names the cart to drain: a user id for authenticated sessions or a
// locally minted cart id for guests. Exactly one is set.
type Identity struct {
	UserID string
	CartID string
}

func UserIdentity(userID string) Identity {
	return Identity{UserID: strings.TrimSpace(userID)}
}

func GuestIdentity(cartID string) Identity {
	return Identity{CartID: strings.TrimSpace(cartID)}
}

func (i Identity) Guest() bool {
	return i.CartID != "" && i.UserID == ""
}

func (i Identity) Validate() error {
	user := strings.TrimSpace(i.UserID)
	cart := strings.TrimSpace(i.CartID)
	if (user == "") == (cart == "") {
		return ErrInvalidIdentity
	}
	return nil
}

// Ref maps the identity onto the order service's cart addressing.
func (i Identity) Ref() orderapi.CartRef {
	return orderapi.CartRef{UserID: strings.TrimSpace(i.UserID), CartID: strings.TrimSpace(i.CartID)}
}

// CounterKey is the storage key of the visible cart item counter.
func (i Identity) CounterKey() string {
	if i.Guest() {
		return "cart:counter:guest:" + i.CartID
	}
	return "cart:counter:user:" + i.UserID
}

// GuestIDKey is the storage key holding the persisted guest cart identifier.
// Deleting it forces a fresh identifier on next use.
func (i Identity) GuestIDKey() string {
	return "cart:guest:" + i.CartID
}

// DrainResult describes one completed drain attempt.
type DrainResult struct {
	Identity     Identity
	ItemsDeleted int
	ItemsFailed  int
	OccurredAt   time.Time
}
