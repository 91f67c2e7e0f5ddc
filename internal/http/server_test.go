package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mydash/internal/budget"
	"mydash/internal/core"
	"mydash/internal/rollup"
	"mydash/internal/services"
	"mydash/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	st := memory.New()
	records := services.NewRecordService(st, nil)
	rollups, err := services.NewRollupService(st, budget.Default())
	if err != nil {
		t.Fatalf("NewRollupService() error = %v", err)
	}

	srv := NewServer(Options{
		Addr:        ":0",
		DefaultTier: budget.TierLow,
		SessionTTL:  time.Hour,
		CacheSize:   8,
		CacheTTL:    time.Minute,
	}, records, rollups, st)
	t.Cleanup(func() {
		if err := srv.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, target string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

// bootstrap creates the first account and returns its session cookies.
func bootstrap(t *testing.T, srv *Server) []*http.Cookie {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/bootstrap", map[string]string{
		"email":    "admin@example.com",
		"password": "correct horse",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("bootstrap status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("bootstrap set no session cookie")
	}
	return cookies
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/expenses", nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	cookies := bootstrap(t, srv)

	t.Run("second bootstrap conflicts", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/auth/bootstrap", map[string]string{
			"email":    "second@example.com",
			"password": "correct horse",
		}, nil)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
	})

	t.Run("session cookie grants access", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/expenses", nil, cookies)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})

	t.Run("login with wrong password fails", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "admin@example.com",
			"password": "wrong",
		}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("login with unknown email fails identically", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "nobody@example.com",
			"password": "whatever",
		}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("login with correct password succeeds", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "Admin@Example.com",
			"password": "correct horse",
		}, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})

	t.Run("logout invalidates the session", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/auth/logout", nil, cookies)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("logout status = %d, want %d", rec.Code, http.StatusNoContent)
		}
		rec = doJSON(t, srv, http.MethodGet, "/api/expenses", nil, cookies)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status after logout = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})
}

func TestExpenseCRUD(t *testing.T) {
	srv := newTestServer(t)
	cookies := bootstrap(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"date":     "2026-03-10",
		"amount":   350,
		"category": "Eat",
		"note":     "lunch",
	}, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created core.Expense
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode created expense: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created expense has no ID")
	}

	t.Run("invalid date is a 422", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
			"date":     "2026-02-31",
			"amount":   100,
			"category": "Eat",
		}, cookies)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("list filters by month", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/expenses?month=2026-03", nil, cookies)
		var got []core.Expense
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}

		rec = doJSON(t, srv, http.MethodGet, "/api/expenses?month=2026-04", nil, cookies)
		got = nil
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("len = %d, want 0 for another month", len(got))
		}
	})

	t.Run("malformed month is a 400", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/expenses?month=march", nil, cookies)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("update", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/expenses/"+created.ID, map[string]any{
			"date":     "2026-03-10",
			"amount":   420,
			"category": "Eat",
		}, cookies)
		if rec.Code != http.StatusOK {
			t.Fatalf("update status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var updated core.Expense
		if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
			t.Fatalf("decode updated expense: %v", err)
		}
		if !updated.Amount.Equal(core.AmountFromInt(420)) {
			t.Errorf("amount = %s, want 420", updated.Amount)
		}
	})

	t.Run("update of unknown id is a 404", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/expenses/missing", map[string]any{
			"date":     "2026-03-10",
			"amount":   1,
			"category": "Eat",
		}, cookies)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, nil, cookies)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
		}
		rec = doJSON(t, srv, http.MethodDelete, "/api/expenses/"+created.ID, nil, cookies)
		if rec.Code != http.StatusNotFound {
			t.Errorf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestDrinkLogUpsert(t *testing.T) {
	srv := newTestServer(t)
	cookies := bootstrap(t, srv)

	t.Run("missing date is a 400", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/drinks", map[string]any{
			"level": 2,
		}, cookies)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	rec := doJSON(t, srv, http.MethodPost, "/api/drinks", map[string]any{
		"date":  "2026-03-14",
		"level": 2,
		"name":  "beer",
	}, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var first core.DrinkLog
	if err := json.NewDecoder(rec.Body).Decode(&first); err != nil {
		t.Fatalf("decode drink log: %v", err)
	}
	if !first.Drank {
		t.Error("Drank = false, want true after upsert")
	}

	t.Run("same date replaces the log", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/drinks", map[string]any{
			"date":  "2026-03-14",
			"level": 4,
			"name":  "wine",
		}, cookies)
		if rec.Code != http.StatusOK {
			t.Fatalf("upsert status = %d, want %d", rec.Code, http.StatusOK)
		}

		rec = doJSON(t, srv, http.MethodGet, "/api/drinks?month=2026-03", nil, cookies)
		var logs []core.DrinkLog
		if err := json.NewDecoder(rec.Body).Decode(&logs); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		if len(logs) != 1 {
			t.Fatalf("len = %d, want 1 after replacing upsert", len(logs))
		}
		if logs[0].Name != "wine" || logs[0].Level != 4 {
			t.Errorf("log = %q level %d, want wine level 4", logs[0].Name, logs[0].Level)
		}
		if logs[0].ID != first.ID {
			t.Errorf("ID changed across upsert: %q != %q", logs[0].ID, first.ID)
		}
	})
}

func TestRollupEndpoint(t *testing.T) {
	srv := newTestServer(t)
	cookies := bootstrap(t, srv)

	seed := []map[string]any{
		{"date": "2026-03-01", "amount": 700, "category": "Eat"},
		{"date": "2026-03-02", "amount": 300, "category": "Transport"},
	}
	for _, e := range seed {
		rec := doJSON(t, srv, http.MethodPost, "/api/expenses", e, cookies)
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed expense status = %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/rollup?month=2026-03&tier=low", nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("rollup status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var result rollup.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode rollup: %v", err)
	}
	if !result.TotalSpend.Equal(core.AmountFromInt(1000)) {
		t.Errorf("TotalSpend = %s, want 1000", result.TotalSpend)
	}
	if result.TopCategory != "Eat" {
		t.Errorf("TopCategory = %q, want Eat", result.TopCategory)
	}

	t.Run("unknown tier is a 400", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/rollup?month=2026-03&tier=extreme", nil, cookies)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("write invalidates cached rollup", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
			"date": "2026-03-03", "amount": 500, "category": "Eat",
		}, cookies)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d", rec.Code)
		}

		rec = doJSON(t, srv, http.MethodGet, "/api/rollup?month=2026-03&tier=low", nil, cookies)
		var fresh rollup.Result
		if err := json.NewDecoder(rec.Body).Decode(&fresh); err != nil {
			t.Fatalf("decode rollup: %v", err)
		}
		if !fresh.TotalSpend.Equal(core.AmountFromInt(1500)) {
			t.Errorf("TotalSpend = %s, want 1500 after new expense", fresh.TotalSpend)
		}
	})
}

func TestProjectionEndpoint(t *testing.T) {
	srv := newTestServer(t)
	cookies := bootstrap(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"date": "2026-03-01", "amount": 800, "category": "Eat",
	}, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/projection?month=2026-03&tier=low", nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("projection status = %d: %s", rec.Code, rec.Body.String())
	}
	var rows []rollup.ProjectionRow
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode projection: %v", err)
	}
	if len(rows) != 8 {
		t.Fatalf("len(rows) = %d, want one per plan category", len(rows))
	}
	if rows[0].Category != "Eat" {
		t.Errorf("rows[0].Category = %q, want Eat (plan order)", rows[0].Category)
	}
	if !rows[0].Remaining.Equal(core.AmountFromInt(9200)) {
		t.Errorf("Eat remaining = %s, want 9200", rows[0].Remaining)
	}
}

func TestExportMonthCSV(t *testing.T) {
	srv := newTestServer(t)
	cookies := bootstrap(t, srv)

	seed := []map[string]any{
		{"date": "2026-03-05", "amount": 120, "category": "Transport", "note": "BTS"},
		{"date": "2026-03-06", "amount": 880, "category": "Eat"},
	}
	for _, e := range seed {
		rec := doJSON(t, srv, http.MethodPost, "/api/expenses", e, cookies)
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed status = %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/export?month=2026-03&tier=low", nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}

	body := rec.Body.String()
	t.Run("summary section", func(t *testing.T) {
		for _, want := range []string{
			"month,2026-03",
			"tier,low",
			"total_spend,1000",
			"planned_total,47000",
			"spend_variance,46000",
			"top_category,Eat",
		} {
			if !strings.Contains(body, want) {
				t.Errorf("missing summary line %q in %q", want, body)
			}
		}
	})

	t.Run("category breakdown section", func(t *testing.T) {
		if !strings.Contains(body, "category,budget,actual,remaining,status") {
			t.Fatalf("missing breakdown header in %q", body)
		}
		if !strings.Contains(body, "Eat,10000,880,9120,On Track") {
			t.Errorf("missing Eat breakdown row in %q", body)
		}
	})

	t.Run("expense lines section", func(t *testing.T) {
		if !strings.Contains(body, "date,amount,category,sub_category,type,note") {
			t.Fatalf("missing expense header in %q", body)
		}
		if !strings.Contains(body, "2026-03-05,120,Transport,,,BTS") {
			t.Errorf("missing expense row in %q", body)
		}
	})
}

func TestTodoCRUD(t *testing.T) {
	srv := newTestServer(t)
	cookies := bootstrap(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/todos", map[string]any{"text": "renew visa"}, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var td core.Todo
	if err := json.NewDecoder(rec.Body).Decode(&td); err != nil {
		t.Fatalf("decode todo: %v", err)
	}

	t.Run("empty text is a 422", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/todos", map[string]any{"text": "   "}, cookies)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
		}
	})

	t.Run("mark done", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPut, "/api/todos/"+td.ID, map[string]any{
			"text": "renew visa", "done": true,
		}, cookies)
		if rec.Code != http.StatusOK {
			t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
		}
		var updated core.Todo
		if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
			t.Fatalf("decode todo: %v", err)
		}
		if !updated.Done {
			t.Error("Done = false, want true")
		}
	})
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/auth/me", nil, nil)
	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}
