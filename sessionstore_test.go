package rango

import (
	"context"
	"testing"
	"time"

	"github.com/eringen/rango/visit"
)

func TestSessionValues(t *testing.T) {
	s := setupTestStore(t)
	vs := s.SessionValues()
	ctx := context.Background()

	if _, ok, err := vs.Get(ctx, "sid", visit.KeyVisits); err != nil || ok {
		t.Fatalf("Get on empty = ok %v err %v, want false nil", ok, err)
	}
	if err := vs.Set(ctx, "sid", visit.KeyVisits, "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := vs.Set(ctx, "sid", visit.KeyVisits, "2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := vs.Get(ctx, "sid", visit.KeyVisits)
	if err != nil || !ok || v != "2" {
		t.Errorf("Get = %q %v %v, want 2 true nil", v, ok, err)
	}
	if _, ok, _ := vs.Get(ctx, "other", visit.KeyVisits); ok {
		t.Error("sessions must not share values")
	}
}

func TestTrackerOverSessionValues(t *testing.T) {
	s := setupTestStore(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tr := visit.NewTracker(s.SessionValues(), visit.ClockFunc(func() time.Time { return now }))
	ctx := context.Background()

	for i, want := range []int{1, 1} {
		res, err := tr.Track(ctx, "sid")
		if err != nil {
			t.Fatalf("Track %d failed: %v", i, err)
		}
		if res.Count != want {
			t.Errorf("Track %d count = %d, want %d", i, res.Count, want)
		}
	}
	now = now.Add(30 * time.Hour)
	res, err := tr.Track(ctx, "sid")
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if res.Count != 2 {
		t.Errorf("next day count = %d, want 2", res.Count)
	}
}

func TestPurgeSessionValues(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	vs := s.SessionValues()
	if err := vs.Set(ctx, "old", visit.KeyVisits, "3"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := s.db.Exec(`UPDATE session_values SET updated_at = ? WHERE session_id = 'old'`,
		time.Now().Add(-30*24*time.Hour).Unix()); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}
	if err := vs.Set(ctx, "fresh", visit.KeyVisits, "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	n, err := s.PurgeSessionValues(time.Now().Add(-14 * 24 * time.Hour))
	if err != nil {
		t.Fatalf("PurgeSessionValues failed: %v", err)
	}
	if n != 1 {
		t.Errorf("purged = %d, want 1", n)
	}
	if _, ok, _ := vs.Get(ctx, "fresh", visit.KeyVisits); !ok {
		t.Error("fresh session was purged")
	}
}

func TestStartSessionCleanupStops(t *testing.T) {
	s := setupTestStore(t)
	stop := s.StartSessionCleanup(time.Hour, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	stop()
}
