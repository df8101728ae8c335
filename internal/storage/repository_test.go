package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourreport/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "tour.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestEmptyDatabase(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tour, err := repo.LoadTour(ctx)
	require.NoError(t, err)
	assert.Empty(t, tour.Entries)
	assert.True(t, tour.StartDate.IsZero())

	p, err := repo.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.UserProfile{}, p)
	assert.NoError(t, repo.Ping(ctx))
}

func TestTourAndProfileRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveTour(ctx, core.TourData{
		TourName:  "North Circle",
		StartDate: core.NewDate(2024, 3, 1),
		EndDate:   core.NewDate(2024, 3, 31),
		Currency:  "INR",
	}))
	require.NoError(t, repo.SaveTour(ctx, core.TourData{TourName: "Renamed", Currency: "USD"}))
	require.NoError(t, repo.SaveProfile(ctx, core.UserProfile{Name: "Asha", EmployeeID: "E42", HomeCurrency: "INR"}))

	tour, err := repo.LoadTour(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", tour.TourName)
	assert.Equal(t, "USD", tour.Currency)
	assert.True(t, tour.StartDate.IsZero())

	p, err := repo.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "E42", p.EmployeeID)
}

func TestEntryRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	saved := time.Date(2024, 3, 4, 18, 15, 30, 123000000, time.UTC)

	e := core.InspectionEntry{
		ID:             "e1",
		Date:           core.NewDate(2024, 3, 4),
		Branch:         "Main",
		DPCode:         "DP7",
		InspectionType: core.InspectionTypeRBIA,
		DayStatus:      core.Inspection,
		OnwardJourney: []core.JourneyItem{
			{ID: "o1", From: "Pune", To: "Nashik", StartTime: "07:00", ArrivedTime: "11:30", Amount: decimal.RequireFromString("350.55")},
			{ID: "o2", From: "Nashik", To: "Site", Amount: decimal.RequireFromString("0.10")},
		},
		ReturnJourney: []core.JourneyItem{{ID: "r1", Amount: decimal.RequireFromString("-5")}},
		OtherExpenses: []core.ExpenseItem{
			{ID: "x1", Halting: decimal.NewFromInt(50), Lodging: decimal.NewFromInt(30)},
			{ID: "x2", Halting: decimal.NewFromInt(20)},
		},
		LastSavedAt: &saved,
	}
	require.NoError(t, repo.UpsertEntry(ctx, e))

	tour, err := repo.LoadTour(ctx)
	require.NoError(t, err)
	require.Len(t, tour.Entries, 1)
	got := tour.Entries[0]

	assert.Equal(t, "DP7", got.DPCode)
	assert.Equal(t, "2024-03-04", got.Date.String())
	require.NotNil(t, got.LastSavedAt)
	assert.True(t, got.LastSavedAt.Equal(saved))
	require.Len(t, got.OnwardJourney, 2)
	assert.Equal(t, "o1", got.OnwardJourney[0].ID, "item order is kept")
	assert.True(t, got.OnwardJourney[0].Amount.Equal(decimal.RequireFromString("350.55")))
	require.Len(t, got.ReturnJourney, 1)
	assert.True(t, got.ReturnJourney[0].Amount.Equal(decimal.NewFromInt(-5)))
	require.Len(t, got.OtherExpenses, 2)

	totals := core.ComputeTotals(tour.Entries)
	assert.True(t, totals.Halting.Equal(decimal.NewFromInt(70)))
	assert.True(t, totals.Travel.Equal(decimal.RequireFromString("345.65")))
}

func TestUpsertReplacesItemsAndKeepsOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := core.InspectionEntry{ID: "a", Date: core.NewDate(2024, 3, 9), DayStatus: core.Inspection,
		OnwardJourney: []core.JourneyItem{{ID: "j1"}, {ID: "j2"}}}
	second := core.InspectionEntry{ID: "b", Date: core.NewDate(2024, 3, 1), DayStatus: core.Leave}
	require.NoError(t, repo.UpsertEntry(ctx, first))
	require.NoError(t, repo.UpsertEntry(ctx, second))

	first.OnwardJourney = first.OnwardJourney[1:]
	first.Branch = "Edited"
	require.NoError(t, repo.UpsertEntry(ctx, first))

	tour, err := repo.LoadTour(ctx)
	require.NoError(t, err)
	require.Len(t, tour.Entries, 2)
	assert.Equal(t, "a", tour.Entries[0].ID, "insertion order survives updates")
	assert.Equal(t, "Edited", tour.Entries[0].Branch)
	require.Len(t, tour.Entries[0].OnwardJourney, 1)
	assert.Equal(t, "j2", tour.Entries[0].OnwardJourney[0].ID)
	assert.Nil(t, tour.Entries[1].LastSavedAt)
}

func TestDeleteEntry(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := core.InspectionEntry{ID: "gone", Date: core.NewDate(2024, 3, 4), DayStatus: core.Inspection,
		OtherExpenses: []core.ExpenseItem{{ID: "x"}}}
	require.NoError(t, repo.UpsertEntry(ctx, e))
	require.NoError(t, repo.DeleteEntry(ctx, "gone"))
	require.NoError(t, repo.DeleteEntry(ctx, "gone"))

	// Re-adding with the same item ids must not collide with leftovers.
	require.NoError(t, repo.UpsertEntry(ctx, e))
	tour, err := repo.LoadTour(ctx)
	require.NoError(t, err)
	require.Len(t, tour.Entries, 1)
	assert.Len(t, tour.Entries[0].OtherExpenses, 1)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tour.db")
	require.NoError(t, RunMigrations(path))
	require.NoError(t, RunMigrations(path))

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()
}
