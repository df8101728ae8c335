package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"tourreport/internal/backend"
	"tourreport/internal/core"
	"tourreport/internal/log"
	"tourreport/internal/report"
	"tourreport/internal/worker"
)

var (
	successSymbol = "✓"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
	headingStyle = lipgloss.NewStyle().Bold(true)
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render(successSymbol), message)
}

func printInfof(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", infoStyle.Render(infoSymbol), fmt.Sprintf(format, args...))
}

// Globals defines global flags available to all commands.
type Globals struct {
	Backend string `help:"Storage backend." enum:"sqlite,memory" default:"sqlite" env:"DATA_BACKEND"`
	DB      string `help:"SQLite database path." default:"./data/tourreport.db" env:"SQLITE_DB_PATH"`
	Seed    string `help:"Directory with tour.json and profile.json for the memory backend." env:"MEMORY_SEED_DIR"`
	Verbose bool   `help:"Log backend activity to stderr." short:"v"`
}

func (g *Globals) logger(w io.Writer) *log.Logger {
	if !g.Verbose {
		return log.Discard()
	}
	return log.New(log.Config{Format: "text", Component: log.ComponentCLI, Output: w})
}

func (g *Globals) backendConfig() backend.Config {
	return backend.Config{
		Type:          backend.BackendType(g.Backend),
		SQLiteDBPath:  g.DB,
		SeedDirectory: g.Seed,
	}
}

// load reads the tour and profile from the configured backend.
func (g *Globals) load(ctx context.Context, stderr io.Writer) (core.TourData, core.UserProfile, error) {
	result, err := backend.NewFactory(g.logger(stderr)).CreateRepository(ctx, g.backendConfig())
	if err != nil {
		return core.TourData{}, core.UserProfile{}, err
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}
	tour, err := result.Repository.LoadTour(ctx)
	if err != nil {
		return core.TourData{}, core.UserProfile{}, fmt.Errorf("load tour: %w", err)
	}
	profile, err := result.Repository.LoadProfile(ctx)
	if err != nil {
		return core.TourData{}, core.UserProfile{}, fmt.Errorf("load profile: %w", err)
	}
	return tour, profile, nil
}

func (g *Globals) monthReport(ctx context.Context, stderr io.Writer, key string) (report.Report, error) {
	year, month, err := core.ParseMonthKey(key)
	if err != nil {
		return report.Report{}, err
	}
	tour, profile, err := g.load(ctx, stderr)
	if err != nil {
		return report.Report{}, err
	}
	return report.Build(tour, profile, year, month), nil
}

type MonthsCmd struct{}

func (cmd *MonthsCmd) Run(ctx *kong.Context, globals *Globals) error {
	tour, _, err := globals.load(context.Background(), ctx.Stderr)
	if err != nil {
		return err
	}
	months := core.SavedMonths(tour.Entries)
	if len(months) == 0 {
		printInfof(ctx.Stdout, "No saved entries")
		return nil
	}
	_, _ = fmt.Fprintln(ctx.Stdout, headingStyle.Render("Saved months"))
	for _, m := range months {
		_, _ = fmt.Fprintf(ctx.Stdout, "  %s  %s\n", pathStyle.Render(core.MonthKey(m[0], m[1])), core.MonthLabel(m[0], m[1]))
	}
	return nil
}

type SummaryCmd struct {
	Month string `help:"Report month as YYYY-MM." arg:""`
}

func (cmd *SummaryCmd) Run(ctx *kong.Context, globals *Globals) error {
	r, err := globals.monthReport(context.Background(), ctx.Stderr, cmd.Month)
	if err != nil {
		return err
	}
	_, err = io.WriteString(ctx.Stdout, report.RenderText(r))
	return err
}

type ExportCmd struct {
	Month  string `help:"Report month as YYYY-MM." arg:""`
	Format string `help:"Output format." enum:"csv,pdf" default:"csv" short:"f"`
	Out    string `help:"Output file; '-' writes to stdout. Defaults to tour-report-YYYY-MM.<format>." short:"o"`
}

func (cmd *ExportCmd) Run(ctx *kong.Context, globals *Globals) error {
	r, err := globals.monthReport(context.Background(), ctx.Stderr, cmd.Month)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch cmd.Format {
	case "pdf":
		if err := report.RenderPDF(&buf, r); err != nil {
			return err
		}
	default:
		buf.WriteString(report.RenderCSV(r))
	}

	if cmd.Out == "-" {
		_, err := ctx.Stdout.Write(buf.Bytes())
		return err
	}
	out := cmd.Out
	if out == "" {
		out = report.Filename(r, cmd.Format)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("Wrote %s (%d entries)", pathStyle.Render(out), len(r.Rows)))
	return nil
}

type PublishCmd struct {
	Month         string `help:"Report month as YYYY-MM; omit to publish every saved month." arg:"" optional:""`
	Sheets        string `help:"Where to publish." enum:"google,memory" default:"google" env:"SHEETS_BACKEND"`
	SpreadsheetID string `help:"Target spreadsheet." env:"GOOGLE_SPREADSHEET_ID"`
	Prefix        string `help:"Sheet name prefix." default:"Report" env:"GOOGLE_SHEET_PREFIX"`
}

func (cmd *PublishCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx := context.Background()

	cfg := globals.backendConfig()
	cfg.Sheets = backend.SheetsType(cmd.Sheets)
	cfg.GoogleSpreadsheetID = cmd.SpreadsheetID
	cfg.GoogleSheetPrefix = cmd.Prefix

	factory := backend.NewFactory(globals.logger(ctx.Stderr))
	result, err := factory.CreateRepository(runCtx, cfg)
	if err != nil {
		return err
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}
	publisher, err := factory.CreateReportPublisher(runCtx, cfg)
	if err != nil {
		return err
	}
	w := worker.NewReportSyncWorker(result.Repository, publisher)

	if cmd.Month == "" {
		n, err := w.SyncAll(runCtx)
		if err != nil {
			return err
		}
		printSuccess(ctx.Stdout, fmt.Sprintf("Published %d month(s)", n))
		return nil
	}

	year, month, err := core.ParseMonthKey(cmd.Month)
	if err != nil {
		return err
	}
	if err := w.SyncMonth(runCtx, year, month); err != nil {
		return err
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("Published %s", core.MonthLabel(year, month)))
	return nil
}

type Commands struct {
	Globals

	Months  MonthsCmd  `cmd:"" help:"List the months that have saved entries."`
	Summary SummaryCmd `cmd:"" help:"Print a month's report as aligned text."`
	Export  ExportCmd  `cmd:"" help:"Write a month's report as CSV or PDF."`
	Publish PublishCmd `cmd:"" help:"Publish saved months to a spreadsheet."`
}
