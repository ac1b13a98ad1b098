package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xraph/streampay"
	"github.com/xraph/streampay/httpapi"
	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/store/memory"
	"github.com/xraph/streampay/types"
)

type fakeClock struct {
	now types.Timestamp
}

func (c *fakeClock) Now() types.Timestamp { return c.now }

func newTestServer(t *testing.T) (*httpapi.Server, *streampay.Ledger, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: 1_700_000_000_000_000}
	l := streampay.New(memory.New(), streampay.WithClock(clock))
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		_ = l.Stop()
	})
	return httpapi.New(l), l, clock
}

func doRequest(t *testing.T, h http.Handler, method, path, signer, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if signer != "" {
		req.Header.Set("X-Signer", signer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return rec, decoded
}

func TestSupplyAndBalance(t *testing.T) {
	srv, l, _ := newTestServer(t)
	alice := id.NewAccountID()
	if err := l.Credit(context.Background(), alice, 1234); err != nil {
		t.Fatal(err)
	}

	rec, body := doRequest(t, srv, http.MethodGet, "/v1/supply", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("supply status: %d", rec.Code)
	}
	if body["total_supply"] != "1000000000" {
		t.Errorf("supply: got %v", body["total_supply"])
	}

	rec, body = doRequest(t, srv, http.MethodGet, "/v1/accounts/"+alice.String()+"/balance", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("balance status: %d", rec.Code)
	}
	// Amounts travel as decimal strings.
	if body["balance"] != "1234" {
		t.Errorf("balance: got %v", body["balance"])
	}
}

func TestBalanceRejectsMalformedOwner(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec, _ := doRequest(t, srv, http.MethodGet, "/v1/accounts/not-an-id/balance", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestTransferEndpoint(t *testing.T) {
	srv, l, _ := newTestServer(t)
	alice := id.NewAccountID()
	bob := id.NewAccountID()
	if err := l.Credit(context.Background(), alice, 1000); err != nil {
		t.Fatal(err)
	}

	payload := fmt.Sprintf(`{"from":%q,"to":%q,"amount":"400"}`, alice.String(), bob.String())
	rec, _ := doRequest(t, srv, http.MethodPost, "/v1/transfers", alice.String(), payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body.String())
	}

	balance, err := l.Balance(context.Background(), bob)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 400 {
		t.Errorf("bob: got %v", balance)
	}

	// Unsigned transfers are rejected before touching balances.
	rec, _ = doRequest(t, srv, http.MethodPost, "/v1/transfers", "", payload)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unsigned status: got %d, want 401", rec.Code)
	}

	// Overdrafts map to a caller error.
	payload = fmt.Sprintf(`{"from":%q,"to":%q,"amount":"99999"}`, alice.String(), bob.String())
	rec, _ = doRequest(t, srv, http.MethodPost, "/v1/transfers", alice.String(), payload)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("overdraft status: got %d, want 400", rec.Code)
	}
}

func TestTransferRejectsMalformedAmount(t *testing.T) {
	srv, _, _ := newTestServer(t)
	alice := id.NewAccountID()
	bob := id.NewAccountID()

	for _, amount := range []string{"-5", "1.5", "abc", ""} {
		payload := fmt.Sprintf(`{"from":%q,"to":%q,"amount":%q}`, alice.String(), bob.String(), amount)
		rec, _ := doRequest(t, srv, http.MethodPost, "/v1/transfers", alice.String(), payload)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("amount %q: got %d, want 400", amount, rec.Code)
		}
	}
}

func TestMalformedSignerHeader(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec, _ := doRequest(t, srv, http.MethodGet, "/v1/supply", "garbage", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestStreamLifecycleOverHTTP(t *testing.T) {
	srv, _, clock := newTestServer(t)
	alice := id.NewAccountID()
	bob := id.NewAccountID()

	payload := fmt.Sprintf(`{"recipient":%q,"rate_per_second":"100","duration_seconds":3600}`, bob.String())
	rec, body := doRequest(t, srv, http.MethodPost, "/v1/streams", alice.String(), payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status: %d, body: %s", rec.Code, rec.Body.String())
	}
	if body["stream_id"] != float64(1) {
		t.Errorf("stream_id: got %v", body["stream_id"])
	}

	clock.now = clock.now.AddSeconds(10)

	rec, body = doRequest(t, srv, http.MethodGet, "/v1/streams/1/earned", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("earned status: %d", rec.Code)
	}
	if body["earned"] != "1000" {
		t.Errorf("earned: got %v", body["earned"])
	}

	// Pause by the recipient is forbidden.
	rec, _ = doRequest(t, srv, http.MethodPost, "/v1/streams/1/pause", bob.String(), "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("pause by recipient: got %d, want 403", rec.Code)
	}

	rec, body = doRequest(t, srv, http.MethodPost, "/v1/streams/1/pause", alice.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pause status: %d", rec.Code)
	}
	if body["status"] != "paused" {
		t.Errorf("status after pause: got %v", body["status"])
	}

	rec, _ = doRequest(t, srv, http.MethodPost, "/v1/streams/1/resume", alice.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("resume status: %d", rec.Code)
	}

	// Withdraw everything available with an empty body.
	rec, body = doRequest(t, srv, http.MethodPost, "/v1/streams/1/withdraw", bob.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("withdraw status: %d, body: %s", rec.Code, rec.Body.String())
	}
	if body["withdrawn"] != "1000" {
		t.Errorf("withdrawn: got %v", body["withdrawn"])
	}

	rec, _ = doRequest(t, srv, http.MethodPost, "/v1/streams/1/topup", alice.String(), `{"amount":"5000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("topup status: %d", rec.Code)
	}

	rec, body = doRequest(t, srv, http.MethodPost, "/v1/streams/1/stop", alice.String(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stop status: %d", rec.Code)
	}
	if body["status"] != "stopped" {
		t.Errorf("status after stop: got %v", body["status"])
	}
}

func TestStreamQueriesOverHTTP(t *testing.T) {
	srv, _, _ := newTestServer(t)
	alice := id.NewAccountID()
	bob := id.NewAccountID()

	payload := fmt.Sprintf(`{"recipient":%q,"rate_per_second":"1"}`, bob.String())
	for i := 0; i < 2; i++ {
		rec, _ := doRequest(t, srv, http.MethodPost, "/v1/streams", alice.String(), payload)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create status: %d", rec.Code)
		}
	}

	rec, body := doRequest(t, srv, http.MethodGet, "/v1/accounts/"+alice.String()+"/streams/sent", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("sent status: %d", rec.Code)
	}
	if streams := body["streams"].([]any); len(streams) != 2 {
		t.Errorf("sent: got %d streams", len(streams))
	}

	rec, body = doRequest(t, srv, http.MethodGet, "/v1/accounts/"+bob.String()+"/streams/received", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("received status: %d", rec.Code)
	}
	if streams := body["streams"].([]any); len(streams) != 2 {
		t.Errorf("received: got %d streams", len(streams))
	}

	rec, _ = doRequest(t, srv, http.MethodGet, "/v1/streams/99", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing stream: got %d, want 404", rec.Code)
	}
}

func TestJournalQueryValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec, _ := doRequest(t, srv, http.MethodGet, "/v1/journal?stream_id=abc", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad stream_id: got %d, want 400", rec.Code)
	}

	rec, body := doRequest(t, srv, http.MethodGet, "/v1/journal", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("journal status: %d", rec.Code)
	}
	if _, ok := body["entries"]; !ok {
		t.Error("missing entries key")
	}
}
