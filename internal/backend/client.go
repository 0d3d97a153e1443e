// Package backend talks to the betting REST API. Every call is rate limited
// and returns either decoded data, an *APIError carrying the server's
// message, or an error wrapping ErrTransport.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"matka/internal/models"
)

var (
	ErrTransport = errors.New("backend unavailable")
	ErrSuspended = errors.New("account suspended")
)

// APIError is a business-rule rejection; Message is shown to users verbatim.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend rejected request (status %d)", e.Status)
	}
	return e.Message
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	limiter *rate.Limiter
}

func NewClient(baseURL, token string, timeout time.Duration, rps float64, burst int) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

type tokenKey struct{}

// WithToken makes calls on ctx authenticate as the given bearer token
// instead of the client's service token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token set by WithToken, or "".
func TokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

func (c *Client) token(ctx context.Context) string {
	if tok := TokenFrom(ctx); tok != "" {
		return tok
	}
	return c.Token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	var env envelope
	trimmed := bytes.TrimSpace(raw)
	isObject := len(trimmed) > 0 && trimmed[0] == '{'
	if isObject {
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return fmt.Errorf("%w: decode %s: %v", ErrTransport, path, err)
		}
	}
	if resp.StatusCode >= 400 || (env.Success != nil && !*env.Success) {
		if !isObject && resp.StatusCode >= 500 {
			return fmt.Errorf("%w: %s returned %d", ErrTransport, path, resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if out == nil {
		return nil
	}
	payload := trimmed
	if isObject && env.Data != nil {
		payload = env.Data
	}
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrTransport, path, err)
	}
	return nil
}

func (c *Client) ListMarkets(ctx context.Context) ([]models.Market, error) {
	var markets []models.Market
	if err := c.do(ctx, http.MethodGet, "/markets/get-markets", nil, nil, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// ResultHistory returns the results declared on an IST calendar date (YYYY-MM-DD).
func (c *Client) ResultHistory(ctx context.Context, date string) ([]models.MarketResult, error) {
	var results []models.MarketResult
	q := url.Values{"date": {date}}
	if err := c.do(ctx, http.MethodGet, "/markets/result-history", q, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

type PlaceResult struct {
	NewBalance       *decimal.Decimal `json:"newBalance,omitempty"`
	NewBookieBalance *decimal.Decimal `json:"newBookieBalance,omitempty"`
}

func (r PlaceResult) Balance() (decimal.Decimal, bool) {
	switch {
	case r.NewBookieBalance != nil:
		return *r.NewBookieBalance, true
	case r.NewBalance != nil:
		return *r.NewBalance, true
	}
	return decimal.Zero, false
}

func (c *Client) PlaceBets(ctx context.Context, payload models.BetPlacementPayload) (PlaceResult, error) {
	var res PlaceResult
	err := c.do(ctx, http.MethodPost, "/bets/place", nil, payload, &res)
	return res, err
}

// PlaceForPlayer submits on behalf of payload.UserID and debits the bookie.
func (c *Client) PlaceForPlayer(ctx context.Context, payload models.BetPlacementPayload) (PlaceResult, error) {
	var res PlaceResult
	err := c.do(ctx, http.MethodPost, "/bets/place-for-player", nil, payload, &res)
	return res, err
}

func (c *Client) ListUsers(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// Heartbeat pings the API; a 403 or ACCOUNT_SUSPENDED reply yields ErrSuspended.
func (c *Client) Heartbeat(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/users/heartbeat", nil, struct{}{}, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusForbidden || apiErr.Code == "ACCOUNT_SUSPENDED") {
		return fmt.Errorf("%w: %s", ErrSuspended, apiErr.Message)
	}
	return err
}

// Me returns the account the bearer token belongs to.
func (c *Client) Me(ctx context.Context) (models.Player, error) {
	var p models.Player
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &p); err != nil {
		return models.Player{}, err
	}
	return p, nil
}

func (c *Client) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var out struct {
		Balance decimal.Decimal `json:"balance"`
	}
	q := url.Values{}
	if userID != "" {
		q.Set("userId", userID)
	}
	if err := c.do(ctx, http.MethodGet, "/wallet/balance", q, nil, &out); err != nil {
		return decimal.Zero, err
	}
	return out.Balance, nil
}

func (c *Client) Transactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	q := url.Values{"includeBet": {"1"}}
	if userID != "" {
		q.Set("userId", userID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var txs []models.Transaction
	if err := c.do(ctx, http.MethodGet, "/wallet/my-transactions", q, nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (c *Client) CurrentRates(ctx context.Context) (*models.Rates, error) {
	var rates models.Rates
	if err := c.do(ctx, http.MethodGet, "/rates/current", nil, nil, &rates); err != nil {
		return nil, err
	}
	return &rates, nil
}
