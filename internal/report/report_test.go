package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourreport/internal/core"
)

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func marchTour() (core.TourData, core.UserProfile) {
	saved := time.Date(2024, 3, 31, 18, 0, 0, 0, time.UTC)
	tour := core.TourData{
		TourName: "North Circle",
		Entries: []core.InspectionEntry{
			{
				ID:        "leave",
				Date:      core.MustParseDate("2024-03-05"),
				DayStatus: core.Leave,
				Branch:    "ignored",
				OnwardJourney: []core.JourneyItem{
					{ID: "j1", Amount: amt("40")},
				},
				OtherExpenses: []core.ExpenseItem{{ID: "o1", Halting: amt("10")}},
				LastSavedAt:   &saved,
			},
			{
				ID:             "saturday",
				Date:           core.MustParseDate("2024-03-02"),
				DayStatus:      core.Inspection,
				Branch:         "X",
				DPCode:         "DP1",
				InspectionType: core.InspectionTypeRBIA,
				OnwardJourney: []core.JourneyItem{
					{ID: "j1", From: "A", To: "B", StartTime: "09:00", ArrivedTime: "11:00", Amount: amt("100")},
				},
				LastSavedAt: &saved,
			},
			{
				ID:             "monday",
				Date:           core.MustParseDate("2024-03-04"),
				DayStatus:      core.Inspection,
				Branch:         `Main "North"`,
				InspectionType: core.InspectionTypeRBIA,
				ReturnJourney: []core.JourneyItem{
					{ID: "r1", From: "C", To: "D", StartTime: "14:00", ArrivedTime: "16:00", Amount: amt("25.5")},
				},
				OtherExpenses: []core.ExpenseItem{
					{ID: "o1", Halting: amt("50"), Lodging: amt("30")},
					{ID: "o2", Halting: amt("20"), Lodging: amt("0")},
				},
				LastSavedAt: &saved,
			},
			{
				ID:        "draft",
				Date:      core.MustParseDate("2024-03-06"),
				DayStatus: core.Inspection,
				OnwardJourney: []core.JourneyItem{
					{ID: "j1", Amount: amt("999")},
				},
			},
			{
				ID:          "april",
				Date:        core.MustParseDate("2024-04-01"),
				DayStatus:   core.Inspection,
				LastSavedAt: &saved,
			},
		},
	}
	profile := core.UserProfile{Name: "Asha Rao", EmployeeID: "E42", HomeCurrency: "INR"}
	return tour, profile
}

func TestBuild(t *testing.T) {
	tour, profile := marchTour()
	r := Build(tour, profile, 2024, 3)

	assert.Equal(t, "March 2024", r.Label)
	assert.Equal(t, "INR", r.Currency)
	assert.Equal(t, MonthRef{Year: 2024, Month: 2}, r.Prev)
	assert.Equal(t, MonthRef{Year: 2024, Month: 4}, r.Next)
	require.Len(t, r.Rows, 3)
	assert.Equal(t, "saturday", r.Rows[0].Entry.ID)
	assert.Equal(t, "monday", r.Rows[1].Entry.ID)
	assert.Equal(t, "leave", r.Rows[2].Entry.ID)
	assert.True(t, r.Totals.Consistent())
	assert.Equal(t, "2024-03", r.Key())
}

func TestRenderCSV(t *testing.T) {
	tour, profile := marchTour()
	got := RenderCSV(Build(tour, profile, 2024, 3))

	want := strings.Join([]string{
		"TOUR EXPENSE REPORT - March 2024",
		`"Tour Name","North Circle"`,
		`"Inspector","Asha Rao"`,
		`"Employee ID","E42"`,
		"",
		"Date,Status,Branch,DP Code,Category,Onward From,Onward To,Onward Start,Onward Arrived,Onward Amount,Return From,Return To,Return Start,Return Arrived,Return Amount,Halting,Lodging,Day Total",
		`02/03/2024,Holiday,"Holiday","DP1","Holiday","A","B",09:00,11:00,100.00,"","",,,0.00,0.00,0.00,100.00`,
		`04/03/2024,Inspection,"Main "North"","","RBIA","","",,,0.00,"C","D",14:00,16:00,25.50,70.00,30.00,125.50`,
		`05/03/2024,Leave,"Leave","","Leave","","",,,40.00,"","",,,0.00,10.00,0.00,50.00`,
		"",
		"SUMMARY TOTALS",
		"Halting Allowance,70.00 INR",
		"Lodging Allowance,30.00 INR",
		"Travel Expenses,125.50 INR",
		"Total Claim,225.50 INR",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderCSVLedgerVersusClaims(t *testing.T) {
	tour, profile := marchTour()
	r := Build(tour, profile, 2024, 3)

	// The Leave row still shows its stray amounts...
	leave := r.Rows[2]
	assert.True(t, leave.Amounts.Total().Equal(amt("50")))
	assert.Contains(t, RenderCSV(r), ",50.00\n")

	// ...while the claim totals leave it out.
	assert.True(t, r.Totals.Total.Equal(amt("225.50")))
}

func TestRenderCSVEmpty(t *testing.T) {
	got := RenderCSV(Build(core.TourData{}, core.UserProfile{}, 2024, 3))

	want := strings.Join([]string{
		"TOUR EXPENSE REPORT - March 2024",
		`"Tour Name",""`,
		`"Inspector",""`,
		`"Employee ID",""`,
		"",
		strings.Join(Columns, ","),
		"",
		"SUMMARY TOTALS",
		"Halting Allowance,0.00 INR",
		"Lodging Allowance,0.00 INR",
		"Travel Expenses,0.00 INR",
		"Total Claim,0.00 INR",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRecords(t *testing.T) {
	tour, profile := marchTour()
	recs := Records(Build(tour, profile, 2024, 3))

	require.Len(t, recs, 4)
	assert.Equal(t, Columns, recs[0])
	for _, rec := range recs {
		assert.Len(t, rec, len(Columns))
	}
	assert.Equal(t, `Main "North"`, recs[2][2])
	assert.Equal(t, "Holiday", recs[1][1])
}

func TestRenderPDF(t *testing.T) {
	tour, profile := marchTour()
	var buf bytes.Buffer
	require.NoError(t, RenderPDF(&buf, Build(tour, profile, 2024, 3)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, RenderPDF(&buf, Build(core.TourData{}, core.UserProfile{}, 2030, 1)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderText(t *testing.T) {
	tour, profile := marchTour()
	out := RenderText(Build(tour, profile, 2024, 3))

	assert.True(t, strings.HasPrefix(out, "March 2024 | North Circle\n"))
	assert.Contains(t, out, "Total Claim        ₹225.50")
	assert.Contains(t, out, "Travel Expenses    ₹125.50")

	empty := RenderText(Build(core.TourData{}, core.UserProfile{}, 2024, 3))
	assert.Contains(t, empty, "No saved entries.")
	assert.Contains(t, empty, "₹0.00")
}

func TestFilename(t *testing.T) {
	r := Build(core.TourData{}, core.UserProfile{}, 2024, 3)
	assert.Equal(t, "tour-report-2024-03.csv", Filename(r, "csv"))
}
