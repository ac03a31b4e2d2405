package database

import (
	"context"
	"testing"
	"time"

	"github.com/sitegraph/sitegraph/internal/model"
)

// newTestDB opens a HistoryDB in a temp directory.
func newTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := hdb.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return hdb
}

// TestOpen tests database creation behavior.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates the database file", func(t *testing.T) {
		t.Parallel()

		newTestDB(t)
	})

	t.Run("refuses a missing database without create", func(t *testing.T) {
		t.Parallel()

		if _, err := Open(t.TempDir(), Options{CreateIfNotExists: false}); err == nil {
			t.Error("expected an error for a missing database")
		}
	})
}

// TestRecordFetch tests insert and upsert behavior.
func TestRecordFetch(t *testing.T) {
	t.Parallel()

	hdb := newTestDB(t)
	ctx := context.Background()

	page := &model.Page{
		Key:         "example.com/docs",
		URL:         "https://example.com/docs",
		StatusCode:  200,
		ContentType: "text/html",
		Title:       "Docs",
		Hash:        "aaa",
		Strategy:    "http",
	}
	if err := hdb.RecordFetch(ctx, "example.com", page); err != nil {
		t.Fatalf("first record failed: %v", err)
	}

	// Same key again with new content: must update in place.
	page.Hash = "bbb"
	page.Strategy = "render"
	if err := hdb.RecordFetch(ctx, "example.com", page); err != nil {
		t.Fatalf("second record failed: %v", err)
	}

	records, err := hdb.RecentFetches(ctx, "example.com", 0)
	if err != nil {
		t.Fatalf("failed to query fetches: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record after upsert, got %d", len(records))
	}
	if records[0].Hash != "bbb" || records[0].Strategy != "render" {
		t.Errorf("expected updated record, got %+v", records[0])
	}
	if records[0].FetchedAt.IsZero() {
		t.Error("expected a parsed fetch timestamp")
	}
}

// TestGetFetch tests single-record lookup.
func TestGetFetch(t *testing.T) {
	t.Parallel()

	hdb := newTestDB(t)
	ctx := context.Background()

	if err := hdb.RecordFetch(ctx, "example.com", &model.Page{
		Key: "example.com/a", URL: "https://example.com/a", StatusCode: 200,
	}); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	rec, err := hdb.GetFetch(ctx, "example.com", "example.com/a")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if rec == nil || rec.URL != "https://example.com/a" {
		t.Errorf("unexpected record: %+v", rec)
	}

	missing, err := hdb.GetFetch(ctx, "example.com", "example.com/nope")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for a never-fetched key, got %+v", missing)
	}
}

// TestDomains tests the distinct domain listing.
func TestDomains(t *testing.T) {
	t.Parallel()

	hdb := newTestDB(t)
	ctx := context.Background()

	for _, domain := range []string{"b.com", "a.com", "b.com"} {
		if err := hdb.RecordFetch(ctx, domain, &model.Page{
			Key: domain, URL: "https://" + domain,
		}); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	domains, err := hdb.Domains(ctx)
	if err != nil {
		t.Fatalf("failed to list domains: %v", err)
	}
	if len(domains) != 2 || domains[0] != "a.com" || domains[1] != "b.com" {
		t.Errorf("Domains = %v, want [a.com b.com]", domains)
	}
}

// TestRunHistory tests run summary storage and retrieval order.
func TestRunHistory(t *testing.T) {
	t.Parallel()

	hdb := newTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 3; i++ {
		summary := &model.Summary{
			Domain:       "example.com",
			StartedAt:    base.Add(time.Duration(i) * time.Hour),
			FinishedAt:   base.Add(time.Duration(i)*time.Hour + time.Minute),
			KnownNodes:   10 + i,
			PagesFetched: i,
			Interrupted:  i == 1,
		}
		if err := hdb.RecordRun(ctx, summary); err != nil {
			t.Fatalf("record run failed: %v", err)
		}
	}

	runs, err := hdb.RunHistory(ctx, "example.com", 2)
	if err != nil {
		t.Fatalf("failed to query runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs with limit, got %d", len(runs))
	}
	// Newest first.
	if runs[0].KnownNodes != 12 || runs[1].KnownNodes != 11 {
		t.Errorf("unexpected run order: %+v", runs)
	}
	if !runs[1].Interrupted {
		t.Error("expected the interrupted flag to round-trip")
	}
	if runs[0].StartedAt.IsZero() {
		t.Error("expected a parsed start timestamp")
	}
}
