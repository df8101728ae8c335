package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tourreport/internal/core"
)

func TestMemoryStoreEntries(t *testing.T) {
	ctx := context.Background()
	s := New(core.TourData{TourName: "North"}, core.UserProfile{})

	e := core.InspectionEntry{
		ID:            "e1",
		Date:          core.NewDate(2024, 3, 4),
		DayStatus:     core.Inspection,
		OnwardJourney: []core.JourneyItem{{ID: "j1", Amount: decimal.NewFromInt(10)}},
	}
	if err := s.UpsertEntry(ctx, e); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	// Mutating the caller's copy must not reach the store.
	e.OnwardJourney[0].From = "changed"
	e.Branch = "Main"
	if err := s.UpsertEntry(ctx, e); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	e.Branch = "after"

	tour, err := s.LoadTour(ctx)
	if err != nil || len(tour.Entries) != 1 {
		t.Fatalf("unexpected tour: %+v err=%v", tour, err)
	}
	if tour.Entries[0].Branch != "Main" || tour.Entries[0].OnwardJourney[0].From != "changed" {
		t.Fatalf("upsert did not replace entry: %+v", tour.Entries[0])
	}

	if err := s.DeleteEntry(ctx, "e1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteEntry(ctx, "e1"); err != nil {
		t.Fatalf("deleting a missing entry should be a no-op: %v", err)
	}
	tour, _ = s.LoadTour(ctx)
	if len(tour.Entries) != 0 || tour.TourName != "North" {
		t.Fatalf("unexpected tour after delete: %+v", tour)
	}
}

func TestMemoryStoreSettings(t *testing.T) {
	ctx := context.Background()
	s := New(core.TourData{}, core.UserProfile{})
	if err := s.UpsertEntry(ctx, core.InspectionEntry{ID: "keep"}); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveTour(ctx, core.TourData{TourName: "South", Currency: "USD"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveProfile(ctx, core.UserProfile{Name: "Asha"}); err != nil {
		t.Fatal(err)
	}

	tour, _ := s.LoadTour(ctx)
	if tour.TourName != "South" || tour.Currency != "USD" || len(tour.Entries) != 1 {
		t.Fatalf("SaveTour should keep entries: %+v", tour)
	}
	p, _ := s.LoadProfile(ctx)
	if p.Name != "Asha" {
		t.Fatalf("unexpected profile %+v", p)
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()

	// No files -> empty store
	s, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("missing seeds should not fail: %v", err)
	}
	tour, _ := s.LoadTour(context.Background())
	if len(tour.Entries) != 0 {
		t.Fatalf("expected empty tour")
	}

	saved := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	seed := `{"tourName":"Seeded","currency":"INR","entries":[{"id":"a","date":"2024-03-04","dayStatus":"Inspection","branch":"Main","onwardJourney":[{"id":"j","amount":"12.50"}],"lastSavedAt":"` + saved + `"}]}`
	if err := os.WriteFile(filepath.Join(dir, "tour.json"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "profile.json"), []byte(`{"name":"Asha","employeeId":"E1"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err = NewFromFiles(dir)
	if err != nil {
		t.Fatalf("load seeds: %v", err)
	}
	tour, _ = s.LoadTour(context.Background())
	if tour.TourName != "Seeded" || len(tour.Entries) != 1 || !tour.Entries[0].IsSaved() {
		t.Fatalf("unexpected seeded tour %+v", tour)
	}
	if !tour.Entries[0].OnwardJourney[0].Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected amount %s", tour.Entries[0].OnwardJourney[0].Amount)
	}
	p, _ := s.LoadProfile(context.Background())
	if p.EmployeeID != "E1" {
		t.Fatalf("unexpected profile %+v", p)
	}

	if err := os.WriteFile(filepath.Join(dir, "tour.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFromFiles(dir); err == nil {
		t.Fatalf("expected parse error")
	}
}
