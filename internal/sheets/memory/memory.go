package memory

import (
	"context"
	"slices"
	"sync"

	"tourreport/internal/ports"
)

// Publisher keeps the last published sheet per month in memory. It backs
// local runs without a spreadsheet and the worker tests.
type Publisher struct {
	mu     sync.Mutex
	sheets map[string]ports.MonthSheet
	count  int
}

var _ ports.ReportPublisher = (*Publisher)(nil)

func New() *Publisher {
	return &Publisher{sheets: make(map[string]ports.MonthSheet)}
}

// PublishMonth replaces the stored sheet for sheet.Key.
func (p *Publisher) PublishMonth(_ context.Context, sheet ports.MonthSheet) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sheets[sheet.Key] = copySheet(sheet)
	p.count++
	return nil
}

// Sheet returns the last sheet published for key.
func (p *Publisher) Sheet(key string) (ports.MonthSheet, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sheets[key]
	if !ok {
		return ports.MonthSheet{}, false
	}
	return copySheet(s), true
}

// Keys lists the published month keys in ascending order.
func (p *Publisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.sheets))
	for k := range p.sheets {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Publishes counts PublishMonth calls, including overwrites.
func (p *Publisher) Publishes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func copySheet(s ports.MonthSheet) ports.MonthSheet {
	s.Meta = copyRows(s.Meta)
	s.Rows = copyRows(s.Rows)
	s.Summary = copyRows(s.Summary)
	return s
}

func copyRows(rows [][]string) [][]string {
	if rows == nil {
		return nil
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}
