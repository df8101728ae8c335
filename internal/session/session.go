// Package session owns the mutable tour being edited: the entry list and the
// inspector profile. Every mutation goes through a Session, which serializes
// them and hands out deep copies so report code always sees a consistent
// snapshot.
package session

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tourreport/internal/core"
)

// EntryPatch carries the entry fields to change; nil fields are untouched.
type EntryPatch struct {
	Date           *core.Date
	Branch         *string
	DPCode         *string
	InspectionType *string
	DayStatus      *core.DayStatus
}

// JourneyPatch carries the journey item fields to change.
type JourneyPatch struct {
	From        *string
	To          *string
	StartTime   *string
	ArrivedTime *string
	Amount      *decimal.Decimal
}

// ExpensePatch carries the halting/lodging fields to change.
type ExpensePatch struct {
	Halting *decimal.Decimal
	Lodging *decimal.Decimal
}

// TourSettings are the tour-level fields editable apart from the entries.
type TourSettings struct {
	TourName  string    `json:"tourName"`
	StartDate core.Date `json:"startDate"`
	EndDate   core.Date `json:"endDate"`
	Currency  string    `json:"currency"`
}

type Option func(*Session)

// WithClock replaces time.Now for draft dates and save stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDFunc replaces the entry and item id generator.
func WithIDFunc(fn func() string) Option {
	return func(s *Session) { s.newID = fn }
}

type Session struct {
	mu      sync.Mutex
	tour    core.TourData
	profile core.UserProfile
	now     func() time.Time
	newID   func() string
}

func New(tour core.TourData, profile core.UserProfile, opts ...Option) *Session {
	s := &Session{
		tour:    tour.Clone(),
		profile: profile,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the whole tour.
func (s *Session) Snapshot() core.TourData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tour.Clone()
}

func (s *Session) Profile() core.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *Session) SetProfile(p core.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// Tour returns the tour-level settings.
func (s *Session) Tour() TourSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TourSettings{
		TourName:  s.tour.TourName,
		StartDate: s.tour.StartDate,
		EndDate:   s.tour.EndDate,
		Currency:  s.tour.Currency,
	}
}

// SetTour updates the tour-level settings and leaves the entries alone.
func (s *Session) SetTour(t TourSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tour.TourName = t.TourName
	s.tour.StartDate = t.StartDate
	s.tour.EndDate = t.EndDate
	s.tour.Currency = t.Currency
}

// Entry returns a copy of one entry.
func (s *Session) Entry(id string) (core.InspectionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.InspectionEntry{}, core.ErrEntryNotFound
	}
	return s.tour.Entries[i].Clone(), nil
}

// Drafts returns copies of the unsaved entries, oldest first.
func (s *Session) Drafts() []core.InspectionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	drafts := core.Drafts(s.tour.Entries)
	for i := range drafts {
		drafts[i] = drafts[i].Clone()
	}
	return drafts
}

// NewDraft creates an Inspection draft dated today, or on date when given.
func (s *Session) NewDraft(date *core.Date) core.InspectionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := core.DateOf(s.now())
	if date != nil && !date.IsZero() {
		d = *date
	}
	e := core.InspectionEntry{
		ID:            s.newID(),
		Date:          d,
		DayStatus:     core.Inspection,
		OnwardJourney: []core.JourneyItem{},
		ReturnJourney: []core.JourneyItem{},
		OtherExpenses: []core.ExpenseItem{},
	}
	s.tour.Entries = append(s.tour.Entries, e)
	return e.Clone()
}

// UpdateEntry applies a field patch to a draft.
func (s *Session) UpdateEntry(id string, p EntryPatch) (core.InspectionEntry, error) {
	return s.editDraft(id, func(e *core.InspectionEntry) error {
		if p.DayStatus != nil {
			if !p.DayStatus.IsValid() {
				return core.ErrInvalidDayStatus
			}
			e.DayStatus = *p.DayStatus
		}
		if p.Date != nil {
			if err := p.Date.Validate(); err != nil {
				return err
			}
			e.Date = *p.Date
		}
		if p.Branch != nil {
			e.Branch = *p.Branch
		}
		if p.DPCode != nil {
			e.DPCode = *p.DPCode
		}
		if p.InspectionType != nil {
			e.InspectionType = *p.InspectionType
		}
		return nil
	})
}

// SetDatePart edits the day, month or year of a draft's date on its own.
func (s *Session) SetDatePart(id string, part core.DatePart, value int) (core.InspectionEntry, error) {
	return s.editDraft(id, func(e *core.InspectionEntry) error {
		base := e.Date
		if base.IsZero() {
			base = core.DateOf(s.now())
		}
		d, err := base.WithPart(part, value)
		if err != nil {
			return err
		}
		e.Date = d
		return nil
	})
}

// AddItem appends an empty item to a section and returns its id.
func (s *Session) AddItem(id string, section core.Section) (core.InspectionEntry, string, error) {
	var itemID string
	e, err := s.editDraft(id, func(e *core.InspectionEntry) error {
		itemID = s.newID()
		if section == core.OtherExpenses {
			e.OtherExpenses = append(e.OtherExpenses, core.ExpenseItem{ID: itemID})
			return nil
		}
		list, err := e.Journey(section)
		if err != nil {
			return err
		}
		*list = append(*list, core.JourneyItem{ID: itemID})
		return nil
	})
	if err != nil {
		return core.InspectionEntry{}, "", err
	}
	return e, itemID, nil
}

// UpdateJourneyItem patches one leg of an onward or return journey.
func (s *Session) UpdateJourneyItem(id string, section core.Section, itemID string, p JourneyPatch) (core.InspectionEntry, error) {
	return s.editDraft(id, func(e *core.InspectionEntry) error {
		list, err := e.Journey(section)
		if err != nil {
			return err
		}
		i := slices.IndexFunc(*list, func(j core.JourneyItem) bool { return j.ID == itemID })
		if i < 0 {
			return core.ErrItemNotFound
		}
		item := &(*list)[i]
		if p.From != nil {
			item.From = *p.From
		}
		if p.To != nil {
			item.To = *p.To
		}
		if p.StartTime != nil {
			item.StartTime = *p.StartTime
		}
		if p.ArrivedTime != nil {
			item.ArrivedTime = *p.ArrivedTime
		}
		if p.Amount != nil {
			item.Amount = *p.Amount
		}
		return nil
	})
}

// UpdateExpenseItem patches one other-expenses record.
func (s *Session) UpdateExpenseItem(id, itemID string, p ExpensePatch) (core.InspectionEntry, error) {
	return s.editDraft(id, func(e *core.InspectionEntry) error {
		i := slices.IndexFunc(e.OtherExpenses, func(o core.ExpenseItem) bool { return o.ID == itemID })
		if i < 0 {
			return core.ErrItemNotFound
		}
		if p.Halting != nil {
			e.OtherExpenses[i].Halting = *p.Halting
		}
		if p.Lodging != nil {
			e.OtherExpenses[i].Lodging = *p.Lodging
		}
		return nil
	})
}

// RemoveItem deletes an item from any section.
func (s *Session) RemoveItem(id string, section core.Section, itemID string) (core.InspectionEntry, error) {
	return s.editDraft(id, func(e *core.InspectionEntry) error {
		if section == core.OtherExpenses {
			n := len(e.OtherExpenses)
			e.OtherExpenses = slices.DeleteFunc(e.OtherExpenses, func(o core.ExpenseItem) bool { return o.ID == itemID })
			if len(e.OtherExpenses) == n {
				return core.ErrItemNotFound
			}
			return nil
		}
		list, err := e.Journey(section)
		if err != nil {
			return err
		}
		n := len(*list)
		*list = slices.DeleteFunc(*list, func(j core.JourneyItem) bool { return j.ID == itemID })
		if len(*list) == n {
			return core.ErrItemNotFound
		}
		return nil
	})
}

// Save validates a draft and commits it to the report for its month.
func (s *Session) Save(id string) (core.InspectionEntry, error) {
	return s.editDraft(id, func(e *core.InspectionEntry) error {
		if err := e.Validate(); err != nil {
			return err
		}
		at := s.now()
		e.LastSavedAt = &at
		return nil
	})
}

// Delete removes an entry permanently, draft or saved, and returns it.
func (s *Session) Delete(id string) (core.InspectionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.InspectionEntry{}, core.ErrEntryNotFound
	}
	removed := s.tour.Entries[i]
	s.tour.Entries = slices.Delete(s.tour.Entries, i, i+1)
	return removed, nil
}

// Put stores e as is, replacing the entry with the same ID or inserting it
// at index at (clamped to the list). It bypasses the draft lock and exists
// so callers can undo a change they failed to persist.
func (s *Session) Put(e core.InspectionEntry, at int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e = e.Clone()
	if i := s.indexOf(e.ID); i >= 0 {
		s.tour.Entries[i] = e
		return
	}
	at = max(0, min(at, len(s.tour.Entries)))
	s.tour.Entries = slices.Insert(s.tour.Entries, at, e)
}

// IndexOf returns the position of an entry in the tour, or -1.
func (s *Session) IndexOf(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id)
}

// editDraft runs fn on a working copy of a draft and keeps the result only
// when fn succeeds, so a failed edit leaves the entry untouched.
func (s *Session) editDraft(id string, fn func(*core.InspectionEntry) error) (core.InspectionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return core.InspectionEntry{}, core.ErrEntryNotFound
	}
	if s.tour.Entries[i].IsSaved() {
		return core.InspectionEntry{}, fmt.Errorf("%w: %s", core.ErrEntryLocked, id)
	}
	work := s.tour.Entries[i].Clone()
	if err := fn(&work); err != nil {
		return core.InspectionEntry{}, err
	}
	s.tour.Entries[i] = work
	return work.Clone(), nil
}

func (s *Session) indexOf(id string) int {
	return slices.IndexFunc(s.tour.Entries, func(e core.InspectionEntry) bool { return e.ID == id })
}
