package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tourreport/internal/core"
	"tourreport/internal/ports"
	"tourreport/internal/report"
)

// ReportSyncWorker keeps the published month reports in step with storage.
// Events only say which month changed; the worker always rebuilds the whole
// month from the repository so redelivered or reordered events are harmless.
type ReportSyncWorker struct {
	repo      ports.TourRepository
	publisher ports.ReportPublisher
}

func NewReportSyncWorker(repo ports.TourRepository, publisher ports.ReportPublisher) *ReportSyncWorker {
	return &ReportSyncWorker{repo: repo, publisher: publisher}
}

// HandleEntryEvent republishes the month named by an entry event. A delete
// still republishes so the sheet loses the removed row.
func (w *ReportSyncWorker) HandleEntryEvent(ctx context.Context, ev ports.EntryEvent) error {
	slog.InfoContext(ctx, "Processing entry event",
		"kind", ev.Kind,
		"entry_id", ev.EntryID,
		"year", ev.Year,
		"month", ev.Month)

	if err := w.SyncMonth(ctx, ev.Year, ev.Month); err != nil {
		return fmt.Errorf("sync month for entry %s: %w", ev.EntryID, err)
	}
	return nil
}

// SyncMonth builds and publishes one month.
func (w *ReportSyncWorker) SyncMonth(ctx context.Context, year, month int) error {
	if !core.ValidMonth(month) {
		return fmt.Errorf("%w: %d", core.ErrInvalidMonth, month)
	}
	tour, err := w.repo.LoadTour(ctx)
	if err != nil {
		return fmt.Errorf("load tour: %w", err)
	}
	profile, err := w.repo.LoadProfile(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	return w.publish(ctx, report.Build(tour, profile, year, month))
}

func (w *ReportSyncWorker) publish(ctx context.Context, r report.Report) error {
	if err := w.publisher.PublishMonth(ctx, MonthSheet(r)); err != nil {
		return fmt.Errorf("publish %s: %w", r.Key(), err)
	}
	slog.InfoContext(ctx, "Month report synced",
		"month", r.Key(),
		"entries", len(r.Rows),
		"total", core.FormatAmount(r.Totals.Total))
	return nil
}

// SyncAll republishes every month that has saved entries. It is the backup
// path for events lost while the worker was down. Failures for one month do
// not stop the others; they are returned joined.
func (w *ReportSyncWorker) SyncAll(ctx context.Context) (int, error) {
	tour, err := w.repo.LoadTour(ctx)
	if err != nil {
		return 0, fmt.Errorf("load tour: %w", err)
	}
	profile, err := w.repo.LoadProfile(ctx)
	if err != nil {
		return 0, fmt.Errorf("load profile: %w", err)
	}

	var errs []error
	synced := 0
	for _, ym := range core.SavedMonths(tour.Entries) {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.publish(ctx, report.Build(tour, profile, ym[0], ym[1])); err != nil {
			slog.ErrorContext(ctx, "Failed to sync month", "month", core.MonthKey(ym[0], ym[1]), "error", err)
			errs = append(errs, err)
			continue
		}
		synced++
	}
	return synced, errors.Join(errs...)
}

// RunPeriodic calls SyncAll at startup and then every interval until ctx is
// cancelled. Sync errors are logged, not returned.
func (w *ReportSyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	run := func() {
		n, err := w.SyncAll(ctx)
		if err != nil && ctx.Err() == nil {
			slog.ErrorContext(ctx, "Periodic report sync failed", "synced", n, "error", err)
			return
		}
		slog.DebugContext(ctx, "Periodic report sync completed", "synced", n)
	}

	run()
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			run()
		}
	}
}

// MonthSheet flattens a month report into sheet cells: tour metadata, the
// CSV column table and the summary with formatted amounts.
func MonthSheet(r report.Report) ports.MonthSheet {
	summary := make([][]string, 0, 4)
	for _, line := range report.SummaryLines(r) {
		summary = append(summary, []string{line[0], line[1], r.Currency})
	}
	return ports.MonthSheet{
		Key:   r.Key(),
		Title: "TOUR EXPENSE REPORT - " + r.Label,
		Meta: [][]string{
			{"Tour Name", r.TourName},
			{"Inspector", r.Profile.Name},
			{"Employee ID", r.Profile.EmployeeID},
		},
		Rows:    report.Records(r),
		Summary: summary,
	}
}
