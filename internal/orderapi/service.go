package orderapi

import (
	"context"
	"errors"
)

var (
	// ErrOrderNotFound is returned when the order id is unknown upstream.
	ErrOrderNotFound = errors.New("orderapi: order not found")
	// ErrAlreadyPaid is the order service's duplicate-settlement rejection.
	// The server is the source of truth, so callers treat it as success.
	ErrAlreadyPaid = errors.New("orderapi: order already paid")
	// ErrInvalidCartRef is returned when neither or both cart identifiers
	// are set.
	ErrInvalidCartRef = errors.New("orderapi: cart reference must carry exactly one identity")
)

// Service is the order service consumed by the reconciliation engine. It is
// an external collaborator; this interface exists so the engine and cart
// reconciler can be exercised against stubs.
type Service interface {
	GetOrder(ctx context.Context, orderID string) (*OrderSnapshot, error)
	SettlePayment(ctx context.Context, orderID string, req SettleRequest) (string, error)
	ListCartItems(ctx context.Context, ref CartRef, pageToken string, pageSize int) (*ListCartItemsResponse, error)
	DeleteCartItem(ctx context.Context, ref CartRef, itemID string) error
}
