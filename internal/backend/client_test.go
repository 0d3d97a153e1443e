package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"matka/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "svc-token", 2*time.Second, 1000, 100)
}

func TestListMarketsEnvelopeAndBareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/markets/get-markets" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer svc-token" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[{"_id":"m1","marketName":"Kalyan","startingTime":"15:45","closingTime":"17:45","openingNumber":"129","closingNumber":null}]}`))
	})
	markets, err := c.ListMarkets(context.Background())
	if err != nil || len(markets) != 1 || markets[0].Opening() != "129" || markets[0].Closing() != "" {
		t.Fatalf("markets = %+v, %v", markets, err)
	}

	bare := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"_id":"m2","marketName":"Milan"}]`))
	})
	markets, err = bare.ListMarkets(context.Background())
	if err != nil || len(markets) != 1 || markets[0].ID != "m2" {
		t.Fatalf("bare markets = %+v, %v", markets, err)
	}
}

func TestPlaceBetsSendsPayloadAndReadsBalance(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bets/place-for-player" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer caller" {
			t.Errorf("forwarded token = %q", r.Header.Get("Authorization"))
		}
		var raw map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&raw)
		if _, ok := raw["scheduledDate"]; ok {
			t.Errorf("scheduledDate should be omitted")
		}
		if raw["userId"] != "p1" {
			t.Errorf("userId = %v", raw["userId"])
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"newBookieBalance":950.5}}`))
	})
	ctx := WithToken(context.Background(), "caller")
	res, err := c.PlaceForPlayer(ctx, models.BetPlacementPayload{
		UserID:   "p1",
		MarketID: "m1",
		Bets:     []models.PlacedBet{{BetType: "single", BetNumber: "5", Amount: 10, BetOn: "open"}},
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	bal, ok := res.Balance()
	if !ok || !bal.Equal(decimal.RequireFromString("950.5")) {
		t.Fatalf("balance = %s, %v", bal, ok)
	}
}

func TestBusinessRejectionKeepsMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Insufficient balance"}`))
	})
	_, err := c.PlaceBets(context.Background(), models.BetPlacementPayload{MarketID: "m1"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Insufficient balance" || apiErr.Status != 400 {
		t.Fatalf("err = %v", err)
	}

	soft := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Market closed"}`))
	})
	_, err = soft.PlaceBets(context.Background(), models.BetPlacementPayload{MarketID: "m1"})
	if !errors.As(err, &apiErr) || apiErr.Message != "Market closed" {
		t.Fatalf("soft failure err = %v", err)
	}
}

func TestTransportFailures(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	if _, err := c.ListUsers(context.Background()); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	garbled := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{`))
	})
	if _, err := garbled.CurrentRates(context.Background()); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport for bad json, got %v", err)
	}
	dead := NewClient("http://127.0.0.1:1", "", 200*time.Millisecond, 100, 10)
	if _, err := dead.ListMarkets(context.Background()); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport for refused connection, got %v", err)
	}
}

func TestHeartbeatSuspension(t *testing.T) {
	forbidden := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"success":false,"message":"blocked"}`))
	})
	if err := forbidden.Heartbeat(context.Background()); !errors.Is(err, ErrSuspended) {
		t.Fatalf("expected ErrSuspended, got %v", err)
	}
	coded := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"code":"ACCOUNT_SUSPENDED"}`))
	})
	if err := coded.Heartbeat(context.Background()); !errors.Is(err, ErrSuspended) {
		t.Fatalf("expected ErrSuspended, got %v", err)
	}
	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	})
	if err := ok.Heartbeat(context.Background()); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
}

func TestQueryParameters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/wallet/my-transactions":
			if q.Get("userId") != "u1" || q.Get("limit") != "50" || q.Get("includeBet") != "1" {
				t.Errorf("query = %v", q)
			}
			_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
		case "/markets/result-history":
			if q.Get("date") != "2026-03-14" {
				t.Errorf("date = %s", q.Get("date"))
			}
			_, _ = w.Write([]byte(`{"success":true,"data":[{"marketId":"m1","openingNumber":"129"}]}`))
		case "/wallet/balance":
			_, _ = w.Write([]byte(`{"success":true,"data":{"balance":"120.25"}}`))
		}
	})
	ctx := context.Background()
	if _, err := c.Transactions(ctx, "u1", 50); err != nil {
		t.Fatalf("transactions: %v", err)
	}
	results, err := c.ResultHistory(ctx, "2026-03-14")
	if err != nil || len(results) != 1 || results[0].OpeningNumber != "129" {
		t.Fatalf("results = %+v, %v", results, err)
	}
	bal, err := c.Balance(ctx, "u1")
	if err != nil || !bal.Equal(decimal.RequireFromString("120.25")) {
		t.Fatalf("balance = %s, %v", bal, err)
	}
}

func TestMeUsesSessionToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer player-token" {
			t.Errorf("authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"_id":"u7","username":"ravi","isActive":true}}`))
	})
	me, err := c.Me(WithToken(context.Background(), "player-token"))
	if err != nil || me.ID != "u7" {
		t.Fatalf("me = %+v, %v", me, err)
	}
}
