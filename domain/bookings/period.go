package bookings

import (
	"fmt"
	"strings"
)

// Period identifies one reporting sheet of the workbook
type Period string

const (
	PeriodJan Period = "Jan"
	PeriodFeb Period = "Feb"
	PeriodYTD Period = "YTD"
)

func (p Period) String() string { return string(p) }

// PeriodLayout describes where a period lives in the workbook and how its
// three figure columns are labelled there.
type PeriodLayout struct {
	Period         Period
	DisplayName    string
	Heading        string
	Sheet          string
	BudgetColumn   string
	ForecastColumn string
	ActualColumn   string
	ArtifactFile   string
	// ExcludedBrands are dropped after reshaping; they are reported under
	// another period.
	ExcludedBrands []string
}

var layouts = []PeriodLayout{
	{
		Period:         PeriodJan,
		DisplayName:    "January",
		Heading:        "Data for January",
		Sheet:          "Jan Final by Product",
		BudgetColumn:   "Jan Bookings Budget",
		ForecastColumn: "Jan Bookings Forecast",
		ActualColumn:   "Jan Final Bookings Actual",
		ArtifactFile:   "jan_cleaned.csv",
		ExcludedBrands: []string{"Procentive", "Billcare"},
	},
	{
		Period:         PeriodFeb,
		DisplayName:    "February",
		Heading:        "Data for February",
		Sheet:          "Feb Final by Product",
		BudgetColumn:   "Feb Bookings Budget",
		ForecastColumn: "Feb Bookings Forecast",
		ActualColumn:   "Feb MM Bookings Actual",
		ArtifactFile:   "feb_cleaned.csv",
	},
	{
		Period:         PeriodYTD,
		DisplayName:    "Year-to-Date",
		Heading:        "Year-to-Date Data",
		Sheet:          "Con YTD Final by Prod DET",
		BudgetColumn:   "Cons Bookings Budget",
		ForecastColumn: "Cons Bookings Forecast",
		ActualColumn:   "Cons Final Bookings Actual",
		ArtifactFile:   "ytd_cleaned.csv",
	},
}

// Layouts returns the period layouts in display order
func Layouts() []PeriodLayout {
	out := make([]PeriodLayout, len(layouts))
	copy(out, layouts)
	return out
}

// LayoutFor returns the layout for p
func LayoutFor(p Period) (PeriodLayout, bool) {
	for _, l := range layouts {
		if l.Period == p {
			return l, true
		}
	}
	return PeriodLayout{}, false
}

// ParsePeriod accepts a period tag or display name in any case
// ("jan", "January", "ytd", "Year-to-Date").
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	for _, l := range layouts {
		if strings.EqualFold(s, string(l.Period)) || strings.EqualFold(s, l.DisplayName) {
			return l.Period, nil
		}
	}
	return "", fmt.Errorf("unknown period %q", s)
}
