package backend

import (
	"context"
	"fmt"

	"tourreport/internal/amqp"
	"tourreport/internal/core"
	"tourreport/internal/log"
	"tourreport/internal/ports"
	gsheet "tourreport/internal/sheets/google"
	sheetsmem "tourreport/internal/sheets/memory"
	"tourreport/internal/storage"
	"tourreport/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateRepository implements Factory.CreateRepository
func (f *DefaultFactory) CreateRepository(ctx context.Context, config Config) (*RepositoryResult, error) {
	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteRepository(config)
	case MemoryBackend:
		return f.createMemoryRepository(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteRepository(config Config) (*RepositoryResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &RepositoryResult{Repository: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryRepository(config Config) (*RepositoryResult, error) {
	if config.SeedDirectory == "" {
		f.logger.Info("Initialized memory backend")
		return &RepositoryResult{Repository: memory.New(core.TourData{}, core.UserProfile{})}, nil
	}
	store, err := memory.NewFromFiles(config.SeedDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to seed memory backend: %w", err)
	}
	f.logger.Info("Initialized memory backend", "seed_directory", config.SeedDirectory)
	return &RepositoryResult{Repository: store}, nil
}

// CreateReportPublisher implements Factory.CreateReportPublisher
func (f *DefaultFactory) CreateReportPublisher(ctx context.Context, config Config) (ports.ReportPublisher, error) {
	switch config.Sheets {
	case MemorySheets:
		f.logger.Info("Publishing reports to memory")
		return sheetsmem.New(), nil
	case GoogleSheets, "":
		p, err := gsheet.NewFromEnv(ctx, config.GoogleSpreadsheetID, config.GoogleSheetPrefix)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets publisher: %w", err)
		}
		f.logger.Info("Publishing reports to Google Sheets", "prefix", config.GoogleSheetPrefix)
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported sheets backend: %s", config.Sheets)
	}
}

// CreateEventPublisher implements Factory.CreateEventPublisher
func (f *DefaultFactory) CreateEventPublisher(config Config) ports.EventPublisher {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without report sync",
			log.FieldError, err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
