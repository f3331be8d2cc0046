package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"quantfund/pkg/decision"
)

func testRequest() decision.Request {
	return decision.Request{
		Ticker:    "TEST",
		StartDate: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Portfolio: decision.PortfolioSnapshot{Cash: 100000},
		NewsCount: 5,
	}
}

func TestDecideReturnsRawResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/decide" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("auth header = %q", got)
		}
		w.Write([]byte(`{"response": "{\"action\": \"buy\", \"quantity\": 10}"}`))
	}))
	defer srv.Close()

	client := NewClient(&Config{ApiUrl: srv.URL, ApiKey: "secret"}, zap.NewNop())
	raw, err := client.Decide(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	rec := decision.Normalize(raw, zap.NewNop())
	if rec.Action != decision.ActionBuy || rec.Quantity != 10 {
		t.Fatalf("normalized = %+v, want buy/10", rec)
	}
}

func TestDecideMapsTooManyRequestsToRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(&Config{ApiUrl: srv.URL}, zap.NewNop())
	_, err := client.Decide(context.Background(), testRequest())
	if !errors.Is(err, decision.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestDecideServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(&Config{ApiUrl: srv.URL}, zap.NewNop())
	_, err := client.Decide(context.Background(), testRequest())
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err = %v, want HTTPError 500", err)
	}
}
