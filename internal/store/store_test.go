package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertApplicationDedupes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now()

	a := Application{Company: "Acme", Role: "Staff Engineer", URL: "https://jobs.lever.co/acme/1", SourceID: "abc", WorkMode: "Remote"}

	added, err := InsertApplication(ctx, db.Pool, a, now)
	if err != nil || !added {
		t.Fatalf("first insert: added=%v err=%v", added, err)
	}
	added, err = InsertApplication(ctx, db.Pool, a, now)
	if err != nil || added {
		t.Fatalf("second insert: added=%v err=%v", added, err)
	}

	apps, err := ListApplications(ctx, db.Pool, ListOpts{Window: "all"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("expected 1 application, got %d", len(apps))
	}
	got := apps[0]
	if got.Salary != "TBD" || got.Company != "Acme" || got.WorkMode != "Remote" {
		t.Fatalf("unexpected row %+v", got)
	}
	if _, err := time.Parse(dateLayout, got.AppliedAt); err != nil {
		t.Fatalf("applied_at %q: %v", got.AppliedAt, err)
	}
}

func TestListApplicationsWindow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now()

	for i, at := range []time.Time{now, now.Add(-3 * 24 * time.Hour), now.Add(-10 * 24 * time.Hour)} {
		a := Application{Company: "Acme", URL: "https://example.com/" + string(rune('a'+i)), SourceID: string(rune('a' + i))}
		if _, err := InsertApplication(ctx, db.Pool, a, at); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	for _, tc := range []struct {
		window string
		want   int
	}{
		{window: "24h", want: 1},
		{window: "7d", want: 2},
		{window: "30d", want: 3},
		{window: "all", want: 3},
		{window: "", want: 3},
	} {
		t.Run(tc.window, func(t *testing.T) {
			apps, err := ListApplications(ctx, db.Pool, ListOpts{Window: tc.window})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(apps) != tc.want {
				t.Fatalf("window %q: got %d rows, want %d", tc.window, len(apps), tc.want)
			}
		})
	}

	apps, _ := ListApplications(ctx, db.Pool, ListOpts{Limit: 1})
	if len(apps) != 1 || apps[0].SourceID != "a" {
		t.Fatalf("expected newest row first, got %+v", apps)
	}
}

func TestDeleteApplication(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := InsertApplication(ctx, db.Pool, Application{URL: "https://example.com/1", SourceID: "one"}, time.Now()); err != nil {
		t.Fatalf("insert: %v", err)
	}
	apps, _ := ListApplications(ctx, db.Pool, ListOpts{})
	if len(apps) != 1 {
		t.Fatalf("expected 1 row")
	}

	deleted, err := DeleteApplication(ctx, db.Pool, apps[0].ID)
	if err != nil || !deleted {
		t.Fatalf("delete: deleted=%v err=%v", deleted, err)
	}
	deleted, err = DeleteApplication(ctx, db.Pool, apps[0].ID)
	if err != nil || deleted {
		t.Fatalf("second delete: deleted=%v err=%v", deleted, err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(db.Pool); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var v int
	if err := db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil || v != schemaVersion {
		t.Fatalf("user_version = %d, err = %v", v, err)
	}
}
