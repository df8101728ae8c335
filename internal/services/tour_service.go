package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"tourreport/internal/cache"
	"tourreport/internal/core"
	"tourreport/internal/log"
	"tourreport/internal/ports"
	"tourreport/internal/report"
	"tourreport/internal/session"
)

// TourService orchestrates the editing session, storage, change events and
// the monthly report cache. Every mutation is applied to the session first
// and then persisted; when persisting fails the session change is undone so
// memory and storage stay in step.
type TourService struct {
	// mu serializes mutate-then-persist sequences.
	mu      sync.Mutex
	session *session.Session
	repo    ports.TourRepository
	events  ports.EventPublisher
	reports *cache.LRUCache[report.Report]
	logger  *log.Logger
	sl      *log.StructuredLogger
	now     func() time.Time
}

type Option func(*serviceOptions)

type serviceOptions struct {
	events       ports.EventPublisher
	reports      *cache.LRUCache[report.Report]
	logger       *log.Logger
	sessionOpts  []session.Option
	tourName     string
	homeCurrency string
	now          func() time.Time
}

// WithEventPublisher announces saves and deletes of saved entries.
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(o *serviceOptions) { o.events = p }
}

// WithReportCache replaces the default report cache.
func WithReportCache(c *cache.LRUCache[report.Report]) Option {
	return func(o *serviceOptions) { o.reports = c }
}

func WithLogger(l *log.Logger) Option {
	return func(o *serviceOptions) { o.logger = l }
}

// WithSessionOptions passes clock and id options to the session.
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *serviceOptions) { o.sessionOpts = append(o.sessionOpts, opts...) }
}

// WithDefaults fills an empty tour name and home currency on load.
func WithDefaults(tourName, homeCurrency string) Option {
	return func(o *serviceOptions) {
		o.tourName = tourName
		o.homeCurrency = homeCurrency
	}
}

// WithClock sets the event timestamp clock.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

// NewTourService loads the stored tour and profile into a new session.
func NewTourService(ctx context.Context, repo ports.TourRepository, opts ...Option) (*TourService, error) {
	o := serviceOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.reports == nil {
		o.reports = cache.NewLRUCache[report.Report](24, 5*time.Minute)
	}
	if o.logger == nil {
		o.logger = log.Discard()
	}
	logger := o.logger.WithComponent(log.ComponentSession)

	tour, err := repo.LoadTour(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tour: %w", err)
	}
	profile, err := repo.LoadProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if strings.TrimSpace(tour.TourName) == "" {
		tour.TourName = o.tourName
	}
	if strings.TrimSpace(profile.HomeCurrency) == "" {
		profile.HomeCurrency = o.homeCurrency
	}

	logger.InfoContext(ctx, "Tour loaded",
		"entries", len(tour.Entries),
		"drafts", len(core.Drafts(tour.Entries)),
		"saved_months", len(core.SavedMonths(tour.Entries)))

	return &TourService{
		session: session.New(tour, profile, o.sessionOpts...),
		repo:    repo,
		events:  o.events,
		reports: o.reports,
		logger:  logger,
		sl:      log.NewStructuredLogger(logger),
		now:     o.now,
	}, nil
}

func (s *TourService) Tour() session.TourSettings { return s.session.Tour() }

func (s *TourService) Profile() core.UserProfile { return s.session.Profile() }

func (s *TourService) Drafts() []core.InspectionEntry { return s.session.Drafts() }

func (s *TourService) Entry(id string) (core.InspectionEntry, error) { return s.session.Entry(id) }

// SavedMonths lists the months that have saved entries, oldest first.
func (s *TourService) SavedMonths() [][2]int {
	return core.SavedMonths(s.session.Snapshot().Entries)
}

// UpdateTour replaces the tour-level settings. Every cached report is
// dropped because the name and currency appear in all of them.
func (s *TourService) UpdateTour(ctx context.Context, t session.TourSettings) (session.TourSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.session.Tour()
	s.session.SetTour(t)
	if err := s.repo.SaveTour(ctx, s.session.Snapshot()); err != nil {
		s.session.SetTour(prev)
		return prev, fmt.Errorf("save tour: %w", err)
	}
	s.reports.Purge()
	return s.session.Tour(), nil
}

// UpdateProfile replaces the inspector profile.
func (s *TourService) UpdateProfile(ctx context.Context, p core.UserProfile) (core.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.session.Profile()
	s.session.SetProfile(p)
	if err := s.repo.SaveProfile(ctx, p); err != nil {
		s.session.SetProfile(prev)
		return prev, fmt.Errorf("save profile: %w", err)
	}
	s.reports.Purge()
	return p, nil
}

// CreateDraft adds a new draft dated date, or today when date is nil.
func (s *TourService) CreateDraft(ctx context.Context, date *core.Date) (core.InspectionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.session.NewDraft(date)
	if err := s.repo.UpsertEntry(ctx, e); err != nil {
		s.session.Delete(e.ID)
		return core.InspectionEntry{}, fmt.Errorf("persist new draft: %w", err)
	}
	s.logger.DebugContext(ctx, "Draft created", log.NewFields().WithEntry(e).WithOperation(log.OpCreate).ToSlice()...)
	return e, nil
}

func (s *TourService) UpdateEntry(ctx context.Context, id string, p session.EntryPatch) (core.InspectionEntry, error) {
	return s.editDraft(ctx, id, func() (core.InspectionEntry, error) {
		return s.session.UpdateEntry(id, p)
	})
}

func (s *TourService) SetDatePart(ctx context.Context, id string, part core.DatePart, value int) (core.InspectionEntry, error) {
	return s.editDraft(ctx, id, func() (core.InspectionEntry, error) {
		return s.session.SetDatePart(id, part, value)
	})
}

// AddItem appends an empty item to a section and returns the new item id.
func (s *TourService) AddItem(ctx context.Context, id string, section core.Section) (core.InspectionEntry, string, error) {
	var itemID string
	e, err := s.editDraft(ctx, id, func() (core.InspectionEntry, error) {
		e, newID, err := s.session.AddItem(id, section)
		itemID = newID
		return e, err
	})
	if err != nil {
		return core.InspectionEntry{}, "", err
	}
	return e, itemID, nil
}

func (s *TourService) UpdateJourneyItem(ctx context.Context, id string, section core.Section, itemID string, p session.JourneyPatch) (core.InspectionEntry, error) {
	return s.editDraft(ctx, id, func() (core.InspectionEntry, error) {
		return s.session.UpdateJourneyItem(id, section, itemID, p)
	})
}

func (s *TourService) UpdateExpenseItem(ctx context.Context, id, itemID string, p session.ExpensePatch) (core.InspectionEntry, error) {
	return s.editDraft(ctx, id, func() (core.InspectionEntry, error) {
		return s.session.UpdateExpenseItem(id, itemID, p)
	})
}

func (s *TourService) RemoveItem(ctx context.Context, id string, section core.Section, itemID string) (core.InspectionEntry, error) {
	return s.editDraft(ctx, id, func() (core.InspectionEntry, error) {
		return s.session.RemoveItem(id, section, itemID)
	})
}

// SaveEntry validates and commits a draft, then announces its month.
func (s *TourService) SaveEntry(ctx context.Context, id string) (core.InspectionEntry, error) {
	e, err := s.editDraft(ctx, id, func() (core.InspectionEntry, error) {
		return s.session.Save(id)
	})
	if err != nil {
		return core.InspectionEntry{}, err
	}

	year, month := e.Date.Year(), e.Date.Month()
	s.reports.Delete(core.MonthKey(year, month))
	s.sl.LogEntrySaved(ctx, year, month, e.ID)
	s.publish(ctx, ports.EntrySaved, e)
	return e, nil
}

// DeleteEntry removes an entry. Removing a saved entry changes its month's
// report, so that month is invalidated and announced.
func (s *TourService) DeleteEntry(ctx context.Context, id string) (core.InspectionEntry, error) {
	s.mu.Lock()
	at := s.session.IndexOf(id)
	removed, err := s.session.Delete(id)
	if err != nil {
		s.mu.Unlock()
		return core.InspectionEntry{}, err
	}
	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		s.session.Put(removed, at)
		s.mu.Unlock()
		return core.InspectionEntry{}, fmt.Errorf("delete entry %s: %w", id, err)
	}
	s.mu.Unlock()

	if removed.IsSaved() {
		s.reports.Delete(core.MonthKey(removed.Date.Year(), removed.Date.Month()))
		s.publish(ctx, ports.EntryDeleted, removed)
	}
	s.logger.InfoContext(ctx, "Entry deleted", log.NewFields().WithEntry(removed).WithOperation(log.OpDelete).ToSlice()...)
	return removed, nil
}

// editDraft applies a session edit and persists the resulting entry,
// restoring the previous version if storage rejects it.
func (s *TourService) editDraft(ctx context.Context, id string, edit func() (core.InspectionEntry, error)) (core.InspectionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.session.Entry(id)
	if err != nil {
		return core.InspectionEntry{}, err
	}
	after, err := edit()
	if err != nil {
		return core.InspectionEntry{}, err
	}
	if err := s.repo.UpsertEntry(ctx, after); err != nil {
		s.session.Put(before, 0)
		s.sl.LogError(ctx, "Failed to persist entry", err, log.OpPersist, log.NewFields().WithEntry(after))
		return core.InspectionEntry{}, fmt.Errorf("persist entry %s: %w", id, err)
	}
	return after, nil
}

// publish sends a change event. Failures are logged only: the change is
// already stored and the periodic sync republishes the month later.
func (s *TourService) publish(ctx context.Context, kind ports.EventKind, e core.InspectionEntry) {
	if s.events == nil {
		return
	}
	ev := ports.EntryEvent{
		Kind:      kind,
		EntryID:   e.ID,
		Year:      e.Date.Year(),
		Month:     e.Date.Month(),
		Timestamp: s.now(),
	}
	if err := s.events.PublishEntryEvent(ctx, ev); err != nil {
		s.sl.LogError(ctx, "Failed to publish entry event", err, log.OpPublish,
			log.NewFields().WithEntry(e).WithMonth(ev.Year, ev.Month))
	}
}

// MonthReport returns the assembled report for a month, cached until an
// entry of that month is saved or deleted.
func (s *TourService) MonthReport(ctx context.Context, year, month int) (report.Report, error) {
	if !core.ValidMonth(month) || year < 1 {
		return report.Report{}, fmt.Errorf("%w: %d-%d", core.ErrInvalidMonth, year, month)
	}
	if err := ctx.Err(); err != nil {
		return report.Report{}, err
	}
	return s.reports.GetOrLoad(core.MonthKey(year, month), func() (report.Report, error) {
		return report.Build(s.session.Snapshot(), s.session.Profile(), year, month), nil
	})
}

// ExportCSV renders a month as CSV and suggests a file name.
func (s *TourService) ExportCSV(ctx context.Context, year, month int) (string, []byte, error) {
	r, err := s.MonthReport(ctx, year, month)
	if err != nil {
		return "", nil, err
	}
	return report.Filename(r, "csv"), []byte(report.RenderCSV(r)), nil
}

// ExportPDF renders a month as a printable PDF.
func (s *TourService) ExportPDF(ctx context.Context, year, month int) (string, []byte, error) {
	r, err := s.MonthReport(ctx, year, month)
	if err != nil {
		return "", nil, err
	}
	var buf bytes.Buffer
	if err := report.RenderPDF(&buf, r); err != nil {
		return "", nil, fmt.Errorf("render pdf %s: %w", r.Key(), err)
	}
	return report.Filename(r, "pdf"), buf.Bytes(), nil
}

// SummaryText renders the aligned plain-text summary of a month.
func (s *TourService) SummaryText(ctx context.Context, year, month int) (string, error) {
	r, err := s.MonthReport(ctx, year, month)
	if err != nil {
		return "", err
	}
	return report.RenderText(r), nil
}

// Ping reports whether storage is reachable, for readiness checks.
func (s *TourService) Ping(ctx context.Context) error {
	if p, ok := s.repo.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes storage and the event publisher when they hold resources.
func (s *TourService) Close() error {
	var errs []error
	if c, ok := s.repo.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.events.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close tour service: %w", err)
	}
	return nil
}
