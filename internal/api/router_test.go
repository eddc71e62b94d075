package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/umutoz/defter-be/internal/auth"
	"github.com/umutoz/defter-be/internal/database"
	"github.com/umutoz/defter-be/internal/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	userService := services.NewUserService(db)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := NewRouter(tokens, []string{"*"},
		userService,
		services.NewTransactionService(db),
		services.NewBillService(db),
		services.NewSummaryService(db),
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// doJSON issues a request with an optional bearer token and decodes the
// response body into out (when out is non-nil and the body is JSON).
func doJSON(t *testing.T, method, url, token string, body any, out any) *http.Response {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response of %s %s: %v", method, url, err)
		}
	}
	return resp
}

func registerUser(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()

	var out struct {
		Token string `json:"token"`
	}
	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/register", "",
		map[string]string{"email": email, "password": "correct-horse"}, &out)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Register returned %d, want 201", resp.StatusCode)
	}
	if out.Token == "" {
		t.Fatal("Register returned no token")
	}
	return out.Token
}

func TestAuthFlow(t *testing.T) {
	server := newTestServer(t)

	registerUser(t, server, "ayse@example.com")

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/register", "",
			map[string]string{"email": "ayse@example.com", "password": "correct-horse"}, nil)
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("Status = %d, want 409", resp.StatusCode)
		}
	})

	t.Run("login yields a working token", func(t *testing.T) {
		var out struct {
			Token string `json:"token"`
		}
		resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/login", "",
			map[string]string{"email": "ayse@example.com", "password": "correct-horse"}, &out)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Login returned %d, want 200", resp.StatusCode)
		}

		var me struct {
			Email string `json:"email"`
		}
		resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/auth/me", out.Token, nil, &me)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Me returned %d, want 200", resp.StatusCode)
		}
		if me.Email != "ayse@example.com" {
			t.Errorf("Me email = %s", me.Email)
		}
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/login", "",
			map[string]string{"email": "ayse@example.com", "password": "wrong-horse"}, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("protected routes require a token", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/transactions", "", nil, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Status without token = %d, want 401", resp.StatusCode)
		}
		resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/transactions", "bogus", nil, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("Status with bogus token = %d, want 401", resp.StatusCode)
		}
	})
}

func TestLedgerFlow(t *testing.T) {
	server := newTestServer(t)
	token := registerUser(t, server, "kasa@example.com")
	otherToken := registerUser(t, server, "other@example.com")

	entries := []map[string]any{
		{"title": "Ciro", "amount": 1000, "kind": "income"},
		{"title": "Kira", "amount": 300, "kind": "expense"},
		{"title": "Malzeme", "amount": 45.50, "kind": "expense"},
	}
	for _, e := range entries {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/transactions", token, e, nil)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("Create returned %d, want 201", resp.StatusCode)
		}
	}

	t.Run("summary matches the example figures", func(t *testing.T) {
		var s struct {
			OverallBalance float64 `json:"overall_balance"`
			IncomeTotal    float64 `json:"income_total"`
			ExpenseTotal   float64 `json:"expense_total"`
		}
		resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/summary", token, nil, &s)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Summary returned %d, want 200", resp.StatusCode)
		}
		if s.OverallBalance != 654.50 {
			t.Errorf("overall_balance = %v, want 654.50", s.OverallBalance)
		}
		if s.IncomeTotal != 1000 || s.ExpenseTotal != 345.50 {
			t.Errorf("totals = %v/%v, want 1000/345.50", s.IncomeTotal, s.ExpenseTotal)
		}
	})

	t.Run("users only see their own ledger", func(t *testing.T) {
		var list []map[string]any
		resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/transactions", otherToken, nil, &list)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("List returned %d, want 200", resp.StatusCode)
		}
		if len(list) != 0 {
			t.Errorf("Second user sees %d transactions, want 0", len(list))
		}
	})

	t.Run("invalid entries are rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/transactions", token,
			map[string]any{"title": "", "amount": 10, "kind": "income"}, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Status for empty title = %d, want 400", resp.StatusCode)
		}
		resp = doJSON(t, http.MethodPost, server.URL+"/api/v1/transactions", token,
			map[string]any{"title": "x", "amount": -1, "kind": "income"}, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Status for negative amount = %d, want 400", resp.StatusCode)
		}
	})

	t.Run("deleting another user's entry is not found", func(t *testing.T) {
		var list []struct {
			ID string `json:"id"`
		}
		doJSON(t, http.MethodGet, server.URL+"/api/v1/transactions", token, nil, &list)
		if len(list) == 0 {
			t.Fatal("Expected transactions to exist")
		}
		resp := doJSON(t, http.MethodDelete,
			fmt.Sprintf("%s/api/v1/transactions/%s", server.URL, list[0].ID), otherToken, nil, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("Status = %d, want 404", resp.StatusCode)
		}
	})
}

func TestBillPaymentFlow(t *testing.T) {
	server := newTestServer(t)
	token := registerUser(t, server, "dukkan@example.com")

	var baseline struct {
		OverallBalance float64 `json:"overall_balance"`
	}
	doJSON(t, http.MethodGet, server.URL+"/api/v1/summary", token, nil, &baseline)

	var bill struct {
		ID string `json:"id"`
	}
	resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/bills", token,
		map[string]any{"title": "Elektrik", "amount": 200}, &bill)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Create bill returned %d, want 201", resp.StatusCode)
	}

	payURL := fmt.Sprintf("%s/api/v1/bills/%s/paid", server.URL, bill.ID)

	resp = doJSON(t, http.MethodPut, payURL, token, map[string]bool{"paid": true}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Pay returned %d, want 200", resp.StatusCode)
	}

	t.Run("payment appears in the ledger", func(t *testing.T) {
		var list []struct {
			Kind   string  `json:"kind"`
			Amount float64 `json:"amount"`
			Source string  `json:"source"`
		}
		doJSON(t, http.MethodGet, server.URL+"/api/v1/transactions", token, nil, &list)
		if len(list) != 1 {
			t.Fatalf("Ledger has %d entries, want 1", len(list))
		}
		if list[0].Kind != "expense" || list[0].Amount != 200 || list[0].Source != "bill" {
			t.Errorf("Unexpected mirrored entry: %+v", list[0])
		}
	})

	t.Run("unpaying restores the balance", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, payURL, token, map[string]bool{"paid": false}, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Unpay returned %d, want 200", resp.StatusCode)
		}

		var list []struct{ ID string }
		doJSON(t, http.MethodGet, server.URL+"/api/v1/transactions", token, nil, &list)
		if len(list) != 0 {
			t.Errorf("Ledger has %d entries after unpay, want 0", len(list))
		}

		var s struct {
			OverallBalance float64 `json:"overall_balance"`
		}
		doJSON(t, http.MethodGet, server.URL+"/api/v1/summary", token, nil, &s)
		if s.OverallBalance != baseline.OverallBalance {
			t.Errorf("overall_balance = %v, want %v", s.OverallBalance, baseline.OverallBalance)
		}
	})
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("Healthz request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Healthz returned %d, want 200", resp.StatusCode)
	}
}
