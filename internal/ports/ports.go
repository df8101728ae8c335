package ports

import (
	"context"
	"time"

	"tourreport/internal/core"
)

// Ports for outbound adapters.
type (
	// TourRepository persists the tour, its entries and the profile.
	TourRepository interface {
		// LoadTour returns the stored tour with all entries; an empty tour
		// when nothing has been stored yet.
		LoadTour(ctx context.Context) (core.TourData, error)
		// SaveTour stores the tour-level fields only.
		SaveTour(ctx context.Context, t core.TourData) error
		LoadProfile(ctx context.Context) (core.UserProfile, error)
		SaveProfile(ctx context.Context, p core.UserProfile) error
		// UpsertEntry replaces the stored entry with the same ID, items included.
		UpsertEntry(ctx context.Context, e core.InspectionEntry) error
		// DeleteEntry removes an entry; deleting a missing entry is not an error.
		DeleteEntry(ctx context.Context, id string) error
	}

	// EventPublisher announces changes to the saved report months.
	EventPublisher interface {
		PublishEntryEvent(ctx context.Context, ev EntryEvent) error
	}

	// ReportPublisher writes a rendered month somewhere outside the service.
	ReportPublisher interface {
		PublishMonth(ctx context.Context, sheet MonthSheet) error
	}
)

// EventKind says what happened to a saved entry.
type EventKind string

const (
	EntrySaved   EventKind = "saved"
	EntryDeleted EventKind = "deleted"
)

// EntryEvent identifies the report month touched by a save or delete.
type EntryEvent struct {
	Kind      EventKind `json:"kind"`
	EntryID   string    `json:"entry_id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

// MonthSheet is a month report flattened into cells.
type MonthSheet struct {
	Key     string
	Title   string
	Meta    [][]string
	Rows    [][]string
	Summary [][]string
}
