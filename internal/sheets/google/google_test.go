package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"financeiro/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets serves the three Values endpoints the client uses. Update
// overwrites cells from the first row and keeps any rows below; clear
// truncates from the row its range starts at.
type fakeSheets struct {
	mu         sync.Mutex
	values     [][]interface{}
	fail       bool
	failUpdate bool
	clears     []string
}

var clearStartRow = regexp.MustCompile(`!A(\d+)`)

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		http.Error(w, `{"error":{"code":400,"message":"boom"}}`, http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
		rng := strings.TrimSuffix(r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:], ":clear")
		f.clears = append(f.clears, rng)
		start := 1
		if m := clearStartRow.FindStringSubmatch(rng); m != nil {
			start, _ = strconv.Atoi(m[1])
		}
		if start-1 < len(f.values) {
			f.values = f.values[:start-1]
		}
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut:
		if f.failUpdate {
			http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
			return
		}
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for i, row := range vr.Values {
			if i < len(f.values) {
				f.values[i] = row
			} else {
				f.values = append(f.values, row)
			}
		}
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(gsheet.ValueRange{Range: "Ledger!A1:E10", Values: f.values})
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return New(svc, "sheet-id", "")
}

func TestClientSaveAndLoad(t *testing.T) {
	c := newTestClient(t, &fakeSheets{})
	ctx := context.Background()

	empty, err := c.Load(ctx)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty sheet, got %v %v", empty, err)
	}

	records := []core.Transaction{
		{Date: core.NewDate(2024, 6, 1), Description: "Bus", Amount: core.Money{Cents: 440}, Category: core.Transport, Kind: core.Expense},
	}
	if err := c.Save(ctx, records); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0] != records[0] {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestClientErrorsAreTyped(t *testing.T) {
	c := newTestClient(t, &fakeSheets{fail: true})

	_, err := c.Load(context.Background())
	var rerr *core.StorageReadError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected StorageReadError, got %v", err)
	}

	err = c.Save(context.Background(), nil)
	var werr *core.StorageWriteError
	if !errors.As(err, &werr) {
		t.Fatalf("expected StorageWriteError, got %v", err)
	}
}

func TestNewFromConfigRequiresSpreadsheet(t *testing.T) {
	_, err := NewFromConfig(context.Background(), Config{}, nil)
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClientWithoutService(t *testing.T) {
	c := New(nil, "id", "Tab")
	if c.Location() != "sheets:id/Tab" {
		t.Fatalf("unexpected location %q", c.Location())
	}
	if _, err := c.Load(context.Background()); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestClientFailedSaveKeepsPriorRows(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)
	ctx := context.Background()

	first := []core.Transaction{
		{Date: core.NewDate(2024, 6, 1), Description: "Salary", Amount: core.Money{Cents: 300000}, Category: core.Other, Kind: core.Income},
	}
	if err := c.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	fake.mu.Lock()
	fake.failUpdate = true
	fake.mu.Unlock()

	second := append(append([]core.Transaction{}, first...),
		core.Transaction{Date: core.NewDate(2024, 6, 2), Description: "Rent", Amount: core.Money{Cents: 120000}, Category: core.Housing, Kind: core.Expense})
	err := c.Save(ctx, second)
	var werr *core.StorageWriteError
	if !errors.As(err, &werr) {
		t.Fatalf("expected StorageWriteError, got %v", err)
	}

	got, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0] != first[0] {
		t.Fatalf("records after failed save = %+v, want %+v", got, first)
	}
}

func TestClientSaveClearsOnlyRowsBelowNewSet(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)
	ctx := context.Background()

	records := []core.Transaction{
		{Date: core.NewDate(2024, 6, 1), Description: "Bus", Amount: core.Money{Cents: 440}, Category: core.Transport, Kind: core.Expense},
		{Date: core.NewDate(2024, 6, 2), Description: "Lunch", Amount: core.Money{Cents: 2500}, Category: core.Food, Kind: core.Expense},
	}
	if err := c.Save(ctx, records); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := c.Save(ctx, records[:1]); err != nil {
		t.Fatalf("save shorter set: %v", err)
	}

	fake.mu.Lock()
	last := fake.clears[len(fake.clears)-1]
	fake.mu.Unlock()
	if last != "Ledger!A3:E" {
		t.Errorf("cleared range = %q, want Ledger!A3:E", last)
	}

	got, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0] != records[0] {
		t.Fatalf("records = %+v", got)
	}
}
