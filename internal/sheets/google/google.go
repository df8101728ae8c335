package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"tourreport/internal/ports"
)

// Publisher writes monthly tour reports to a spreadsheet, one sheet per month.
type Publisher struct {
	svc           *gsheet.Service
	spreadsheetID string
	prefix        string
}

var _ ports.ReportPublisher = (*Publisher)(nil)

// New wraps an existing Sheets service. An empty prefix defaults to "Report".
func New(svc *gsheet.Service, spreadsheetID, prefix string) *Publisher {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "Report"
	}
	return &Publisher{svc: svc, spreadsheetID: spreadsheetID, prefix: prefix}
}

// NewFromEnv creates a Publisher using Service Account credentials from the
// environment. spreadsheetID is required.
func NewFromEnv(ctx context.Context, spreadsheetID, prefix string) (*Publisher, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(svc, spreadsheetID, prefix), nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// SheetName returns the sheet title used for a month key such as "2024-03".
func (p *Publisher) SheetName(key string) string {
	return p.prefix + " " + key
}

// PublishMonth replaces the content of the month's sheet, creating the sheet
// on first use.
func (p *Publisher) PublishMonth(ctx context.Context, sheet ports.MonthSheet) error {
	if p.svc == nil {
		return errors.New("sheets service not initialized")
	}
	name := p.SheetName(sheet.Key)

	if err := p.ensureSheet(ctx, name); err != nil {
		return err
	}

	rng := quoteSheet(name)
	if _, err := p.svc.Spreadsheets.Values.Clear(p.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", name, err)
	}

	values := sheetValues(sheet)
	vr := &gsheet.ValueRange{Values: values}
	if _, err := p.svc.Spreadsheets.Values.Update(p.spreadsheetID, rng+"!A1", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write sheet %s: %w", name, err)
	}

	slog.InfoContext(ctx, "Published month report",
		"sheet", name,
		"rows", len(sheet.Rows))
	return nil
}

func (p *Publisher) ensureSheet(ctx context.Context, name string) error {
	ss, err := p.svc.Spreadsheets.Get(p.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", p.spreadsheetID, err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == name {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: name},
			},
		}},
	}
	if _, err := p.svc.Spreadsheets.BatchUpdate(p.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	slog.InfoContext(ctx, "Created month sheet", "sheet", name)
	return nil
}

// sheetValues lays a month out top to bottom: title, metadata, the entry
// table and the totals, separated by blank rows.
func sheetValues(sheet ports.MonthSheet) [][]any {
	var out [][]any
	if sheet.Title != "" {
		out = append(out, []any{sheet.Title}, []any{})
	}
	for _, block := range [][][]string{sheet.Meta, sheet.Rows, sheet.Summary} {
		if len(block) == 0 {
			continue
		}
		for _, row := range block {
			out = append(out, toCells(row))
		}
		out = append(out, []any{})
	}
	if n := len(out); n > 0 && len(out[n-1]) == 0 {
		out = out[:n-1]
	}
	return out
}

func toCells(row []string) []any {
	cells := make([]any, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// quoteSheet quotes a sheet title for use in A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
