package backend

import (
	"context"

	"tourreport/internal/ports"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// RepositoryResult is a repository and the function that closes it.
type RepositoryResult struct {
	Repository ports.TourRepository
	Cleanup    CleanupFunc
}

// Factory creates the storage and publishing backends named by Config.
type Factory interface {
	CreateRepository(ctx context.Context, config Config) (*RepositoryResult, error)
	CreateReportPublisher(ctx context.Context, config Config) (ports.ReportPublisher, error)
	// CreateEventPublisher returns nil when no broker is configured or the
	// broker cannot be reached; events are optional for the HTTP service.
	CreateEventPublisher(config Config) ports.EventPublisher
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific; empty starts with no data.
	SeedDirectory string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Sheets              SheetsType
	GoogleSpreadsheetID string
	GoogleSheetPrefix   string
}

// BackendType represents the type of storage backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// SheetsType names where month reports are published.
type SheetsType string

const (
	GoogleSheets SheetsType = "google"
	MemorySheets SheetsType = "memory"
)

func (st SheetsType) IsValid() bool {
	return st == GoogleSheets || st == MemorySheets
}
