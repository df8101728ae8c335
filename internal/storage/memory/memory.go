package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"tourreport/internal/core"
	"tourreport/internal/ports"
)

var _ ports.TourRepository = (*Store)(nil)

// Store keeps the tour in process memory. Nothing survives a restart.
type Store struct {
	mu      sync.Mutex
	tour    core.TourData
	profile core.UserProfile
}

func New(tour core.TourData, profile core.UserProfile) *Store {
	return &Store{tour: tour.Clone(), profile: profile}
}

// NewFromFiles seeds the store from tour.json and profile.json under base.
// Missing files leave the matching part empty.
func NewFromFiles(base string) (*Store, error) {
	var tour core.TourData
	if err := readJSON(filepath.Join(base, "tour.json"), &tour); err != nil {
		return nil, err
	}
	var profile core.UserProfile
	if err := readJSON(filepath.Join(base, "profile.json"), &profile); err != nil {
		return nil, err
	}
	return New(tour, profile), nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read seed %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse seed %s: %w", path, err)
	}
	return nil
}

func (s *Store) LoadTour(_ context.Context) (core.TourData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tour.Clone(), nil
}

func (s *Store) SaveTour(_ context.Context, t core.TourData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tour.TourName = t.TourName
	s.tour.StartDate = t.StartDate
	s.tour.EndDate = t.EndDate
	s.tour.Currency = t.Currency
	return nil
}

func (s *Store) LoadProfile(_ context.Context) (core.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, nil
}

func (s *Store) SaveProfile(_ context.Context, p core.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return nil
}

func (s *Store) UpsertEntry(_ context.Context, e core.InspectionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e = e.Clone()
	i := slices.IndexFunc(s.tour.Entries, func(x core.InspectionEntry) bool { return x.ID == e.ID })
	if i < 0 {
		s.tour.Entries = append(s.tour.Entries, e)
		return nil
	}
	s.tour.Entries[i] = e
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tour.Entries = slices.DeleteFunc(s.tour.Entries, func(x core.InspectionEntry) bool { return x.ID == id })
	return nil
}
