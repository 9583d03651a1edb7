package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Tijo-11/Vector-Ecom-sub001/internal/config"
	"go.uber.org/zap"
)

// Client talks HTTP/JSON to the order service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.OrderService.BaseURL, "/"),
		apiKey:  cfg.OrderService.APIKey,
		http:    &http.Client{Timeout: cfg.OrderService.Timeout},
		log:     log.Named("orderapi"),
	}
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (*OrderSnapshot, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, ErrOrderNotFound
	}

	var snapshot OrderSnapshot
	path := "/v1/orders/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, path, nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (c *Client) SettlePayment(ctx context.Context, orderID string, req SettleRequest) (string, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", ErrOrderNotFound
	}

	var resp settleResponse
	path := "/v1/orders/" + url.PathEscape(orderID) + "/settle"
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Verdict), nil
}

func (c *Client) ListCartItems(ctx context.Context, ref CartRef, pageToken string, pageSize int) (*ListCartItemsResponse, error) {
	base, err := cartPath(ref)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if pageToken != "" {
		query.Set("page_token", pageToken)
	}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}
	path := base + "/items"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var resp ListCartItemsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteCartItem(ctx context.Context, ref CartRef, itemID string) error {
	base, err := cartPath(ref)
	if err != nil {
		return err
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return fmt.Errorf("orderapi: cart item id is empty")
	}
	return c.do(ctx, http.MethodDelete, base+"/items/"+url.PathEscape(itemID), nil, nil)
}

func cartPath(ref CartRef) (string, error) {
	userID := strings.TrimSpace(ref.UserID)
	cartID := strings.TrimSpace(ref.CartID)
	switch {
	case userID != "" && cartID == "":
		return "/v1/users/" + url.PathEscape(userID) + "/cart", nil
	case cartID != "" && userID == "":
		return "/v1/carts/" + url.PathEscape(cartID), nil
	default:
		return "", ErrInvalidCartRef
	}
}

type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, out)
	}

	return c.mapError(resp.StatusCode, raw, method, path)
}

func (c *Client) mapError(status int, raw []byte, method, path string) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)

	switch {
	case body.Error.Type == "already_paid":
		return ErrAlreadyPaid
	case status == http.StatusNotFound:
		return ErrOrderNotFound
	}

	c.log.Warn("order service request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.String("error_type", body.Error.Type),
	)
	return fmt.Errorf("orderapi: %s %s: status %d (%s)", method, path, status, body.Error.Type)
}
