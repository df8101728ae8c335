package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"tourreport/internal/core"
	"tourreport/internal/ports"

	_ "modernc.org/sqlite"
)

var _ ports.TourRepository = (*SQLiteRepository)(nil)

// SQLiteRepository stores the tour in a single SQLite file. Amounts are kept
// as decimal text so nothing is lost to float conversion.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) LoadTour(ctx context.Context) (core.TourData, error) {
	var (
		t          core.TourData
		start, end string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT tour_name, start_date, end_date, currency FROM tour WHERE id = 1`,
	).Scan(&t.TourName, &start, &end, &t.Currency)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.TourData{}, fmt.Errorf("get tour: %w", err)
	}
	if t.StartDate, err = parseStoredDate(start); err != nil {
		return core.TourData{}, err
	}
	if t.EndDate, err = parseStoredDate(end); err != nil {
		return core.TourData{}, err
	}

	entries, err := r.loadEntries(ctx)
	if err != nil {
		return core.TourData{}, err
	}
	t.Entries = entries
	return t, nil
}

func (r *SQLiteRepository) SaveTour(ctx context.Context, t core.TourData) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tour (id, tour_name, start_date, end_date, currency, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			tour_name = excluded.tour_name,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			currency = excluded.currency,
			updated_at = CURRENT_TIMESTAMP`,
		t.TourName, t.StartDate.String(), t.EndDate.String(), t.Currency)
	if err != nil {
		return fmt.Errorf("save tour: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) LoadProfile(ctx context.Context) (core.UserProfile, error) {
	var p core.UserProfile
	err := r.db.QueryRowContext(ctx,
		`SELECT name, bio, home_currency, avatar, employee_id FROM profile WHERE id = 1`,
	).Scan(&p.Name, &p.Bio, &p.HomeCurrency, &p.Avatar, &p.EmployeeID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) SaveProfile(ctx context.Context, p core.UserProfile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profile (id, name, bio, home_currency, avatar, employee_id, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			bio = excluded.bio,
			home_currency = excluded.home_currency,
			avatar = excluded.avatar,
			employee_id = excluded.employee_id,
			updated_at = CURRENT_TIMESTAMP`,
		p.Name, p.Bio, p.HomeCurrency, p.Avatar, p.EmployeeID)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// UpsertEntry writes the entry row and replaces all of its items in one
// transaction. An existing entry keeps its original position.
func (r *SQLiteRepository) UpsertEntry(ctx context.Context, e core.InspectionEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var savedAt sql.NullString
	if e.LastSavedAt != nil {
		savedAt = sql.NullString{String: e.LastSavedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries (id, position, date, branch, dp_code, inspection_type, day_status, last_saved_at)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM entries), ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			branch = excluded.branch,
			dp_code = excluded.dp_code,
			inspection_type = excluded.inspection_type,
			day_status = excluded.day_status,
			last_saved_at = excluded.last_saved_at,
			updated_at = CURRENT_TIMESTAMP`,
		e.ID, e.Date.String(), e.Branch, e.DPCode, e.InspectionType, string(e.DayStatus), savedAt)
	if err != nil {
		return fmt.Errorf("upsert entry %s: %w", e.ID, err)
	}

	if err := deleteItems(ctx, tx, e.ID); err != nil {
		return err
	}
	for _, section := range []core.Section{core.OnwardJourney, core.ReturnJourney} {
		list, _ := e.Journey(section)
		for i, j := range *list {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO journey_items (entry_id, section, id, position, from_place, to_place, start_time, arrived_time, amount)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				e.ID, string(section), j.ID, i, j.From, j.To, j.StartTime, j.ArrivedTime, j.Amount.String())
			if err != nil {
				return fmt.Errorf("insert journey item %s: %w", j.ID, err)
			}
		}
	}
	for i, o := range e.OtherExpenses {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expense_items (entry_id, id, position, halting, lodging)
			VALUES (?, ?, ?, ?, ?)`,
			e.ID, o.ID, i, o.Halting.String(), o.Lodging.String())
		if err != nil {
			return fmt.Errorf("insert expense item %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entry %s: %w", e.ID, err)
	}

	slog.DebugContext(ctx, "Entry stored in SQLite",
		"entry_id", e.ID,
		"date", e.Date.String(),
		"saved", e.IsSaved())
	return nil
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := deleteItems(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete %s: %w", id, err)
	}
	return nil
}

func deleteItems(ctx context.Context, tx *sql.Tx, entryID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM journey_items WHERE entry_id = ?`, entryID); err != nil {
		return fmt.Errorf("delete journey items of %s: %w", entryID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_items WHERE entry_id = ?`, entryID); err != nil {
		return fmt.Errorf("delete expense items of %s: %w", entryID, err)
	}
	return nil
}

func (r *SQLiteRepository) loadEntries(ctx context.Context) ([]core.InspectionEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, branch, dp_code, inspection_type, day_status, last_saved_at
		FROM entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var (
		entries []core.InspectionEntry
		index   = map[string]int{}
	)
	for rows.Next() {
		var (
			e       core.InspectionEntry
			date    string
			status  string
			savedAt sql.NullString
		)
		if err := rows.Scan(&e.ID, &date, &e.Branch, &e.DPCode, &e.InspectionType, &status, &savedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.Date, err = parseStoredDate(date); err != nil {
			return nil, err
		}
		e.DayStatus = core.DayStatus(status)
		if savedAt.Valid {
			at, err := time.Parse(time.RFC3339Nano, savedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parse last_saved_at of %s: %w", e.ID, err)
			}
			e.LastSavedAt = &at
		}
		e.OnwardJourney = []core.JourneyItem{}
		e.ReturnJourney = []core.JourneyItem{}
		e.OtherExpenses = []core.ExpenseItem{}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	if err := r.loadJourneyItems(ctx, entries, index); err != nil {
		return nil, err
	}
	if err := r.loadExpenseItems(ctx, entries, index); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *SQLiteRepository) loadJourneyItems(ctx context.Context, entries []core.InspectionEntry, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entry_id, section, id, from_place, to_place, start_time, arrived_time, amount
		FROM journey_items ORDER BY entry_id, section, position`)
	if err != nil {
		return fmt.Errorf("list journey items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entryID, section, amount string
			j                        core.JourneyItem
		)
		if err := rows.Scan(&entryID, &section, &j.ID, &j.From, &j.To, &j.StartTime, &j.ArrivedTime, &amount); err != nil {
			return fmt.Errorf("scan journey item: %w", err)
		}
		i, ok := index[entryID]
		if !ok {
			continue
		}
		if j.Amount, err = decimal.NewFromString(amount); err != nil {
			return fmt.Errorf("parse amount of journey item %s: %w", j.ID, err)
		}
		list, err := entries[i].Journey(core.Section(section))
		if err != nil {
			return fmt.Errorf("journey item %s: %w", j.ID, err)
		}
		*list = append(*list, j)
	}
	return rows.Err()
}

func (r *SQLiteRepository) loadExpenseItems(ctx context.Context, entries []core.InspectionEntry, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entry_id, id, halting, lodging
		FROM expense_items ORDER BY entry_id, position`)
	if err != nil {
		return fmt.Errorf("list expense items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entryID, halting, lodging string
			o                         core.ExpenseItem
		)
		if err := rows.Scan(&entryID, &o.ID, &halting, &lodging); err != nil {
			return fmt.Errorf("scan expense item: %w", err)
		}
		i, ok := index[entryID]
		if !ok {
			continue
		}
		if o.Halting, err = decimal.NewFromString(halting); err != nil {
			return fmt.Errorf("parse halting of %s: %w", o.ID, err)
		}
		if o.Lodging, err = decimal.NewFromString(lodging); err != nil {
			return fmt.Errorf("parse lodging of %s: %w", o.ID, err)
		}
		entries[i].OtherExpenses = append(entries[i].OtherExpenses, o)
	}
	return rows.Err()
}

func parseStoredDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}
