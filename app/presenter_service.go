package app

import (
	"fmt"

	"bookingsdash/domain/bookings"
	"bookingsdash/internal/errors"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// AllBrands is the brand selector value that disables brand filtering
const AllBrands = "All"

// Variance sign classes used by the dashboard colours
const (
	VarianceNegative    = "negative"
	VarianceNonNegative = "non-negative"
)

// ComparePoint is one bar pair of the forecast vs actual chart
type ComparePoint struct {
	Brand    string  `json:"brand"`
	Forecast float64 `json:"forecast"`
	Actual   float64 `json:"actual"`
}

// VariancePoint is one bar of the variance chart
type VariancePoint struct {
	Brand   string  `json:"brand"`
	Percent float64 `json:"percent"`
	Class   string  `json:"class"`
}

// VarianceSeries holds the variance bars plus the brands left out because
// their budget is zero.
type VarianceSeries struct {
	Points   []VariancePoint `json:"points"`
	Excluded []string        `json:"excluded"`
}

// ShareSlice is one slice of the actual-share donut
type ShareSlice struct {
	Brand   string  `json:"brand"`
	Actual  float64 `json:"actual"`
	Percent float64 `json:"percent"`
}

// ShareSeries is the donut data; Total is the sum of the included actuals
type ShareSeries struct {
	Slices []ShareSlice `json:"slices"`
	Total  float64      `json:"total"`
}

// Summary totals one category of a view
type Summary struct {
	Category       bookings.Category `json:"category"`
	Brands         int               `json:"brands"`
	Totals         bookings.Figures  `json:"totals"`
	MeanVariance   float64           `json:"mean_variance"`
	MedianVariance float64           `json:"median_variance"`
}

// PresenterService derives dashboard series from a loaded snapshot. It only
// reads the snapshot and is safe for concurrent use.
type PresenterService struct {
	snapshot *bookings.Snapshot
}

// NewPresenterService creates a presenter over snapshot
func NewPresenterService(snapshot *bookings.Snapshot) *PresenterService {
	return &PresenterService{snapshot: snapshot}
}

// Snapshot returns the snapshot being presented
func (s *PresenterService) Snapshot() *bookings.Snapshot {
	return s.snapshot
}

// Periods returns the period layouts in display order
func (s *PresenterService) Periods() []bookings.PeriodLayout {
	return bookings.Layouts()
}

// Brands returns AllBrands followed by the period's brands in table order
func (s *PresenterService) Brands(period bookings.Period) ([]string, error) {
	rows, err := s.table(period)
	if err != nil {
		return nil, err
	}

	brands := []string{AllBrands}
	seen := make(map[string]bool)
	for _, row := range rows {
		if !seen[row.Brand] {
			seen[row.Brand] = true
			brands = append(brands, row.Brand)
		}
	}
	return brands, nil
}

// Filter returns the period's rows for brand; AllBrands keeps every row
func (s *PresenterService) Filter(period bookings.Period, brand string) ([]bookings.NormalizedRow, error) {
	rows, err := s.table(period)
	if err != nil {
		return nil, err
	}
	if brand == "" || brand == AllBrands {
		return rows, nil
	}

	out := make([]bookings.NormalizedRow, 0, len(bookings.Categories))
	for _, row := range rows {
		if row.Brand == brand {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *PresenterService) table(period bookings.Period) ([]bookings.NormalizedRow, error) {
	if s.snapshot == nil {
		return nil, errors.NotFound("snapshot")
	}
	rows, ok := s.snapshot.Table(period)
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("period %s", period))
	}
	return rows, nil
}

// Compare returns forecast and actual per brand for category, dropping
// brands where both are zero.
func (s *PresenterService) Compare(view []bookings.NormalizedRow, category bookings.Category) []ComparePoint {
	points := []ComparePoint{}
	for _, row := range ofCategory(view, category) {
		if row.Forecast == 0 && row.Actual == 0 {
			continue
		}
		points = append(points, ComparePoint{Brand: row.Brand, Forecast: row.Forecast, Actual: row.Actual})
	}
	return points
}

// Variance returns (Actual - Budget) / Budget * 100 per brand. Brands with
// a zero budget have no defined variance and are listed in Excluded.
func (s *PresenterService) Variance(view []bookings.NormalizedRow, category bookings.Category) VarianceSeries {
	series := VarianceSeries{Points: []VariancePoint{}, Excluded: []string{}}
	for _, row := range ofCategory(view, category) {
		if row.Budget == 0 {
			series.Excluded = append(series.Excluded, row.Brand)
			continue
		}
		pct := (row.Actual - row.Budget) / row.Budget * 100
		class := VarianceNonNegative
		if pct < 0 {
			class = VarianceNegative
		}
		series.Points = append(series.Points, VariancePoint{Brand: row.Brand, Percent: pct, Class: class})
	}
	return series
}

// Share returns each brand's part of the total actual for category. Only
// brands with a positive actual take part.
func (s *PresenterService) Share(view []bookings.NormalizedRow, category bookings.Category) ShareSeries {
	var included []bookings.NormalizedRow
	var actuals []float64
	for _, row := range ofCategory(view, category) {
		if row.Actual > 0 {
			included = append(included, row)
			actuals = append(actuals, row.Actual)
		}
	}

	series := ShareSeries{Slices: []ShareSlice{}}
	if len(actuals) == 0 {
		return series
	}
	series.Total = floats.Sum(actuals)

	percents := make([]float64, len(actuals))
	copy(percents, actuals)
	floats.Scale(100/series.Total, percents)

	for i, row := range included {
		series.Slices = append(series.Slices, ShareSlice{Brand: row.Brand, Actual: row.Actual, Percent: percents[i]})
	}
	return series
}

// Summary totals the category and describes the spread of its variances
func (s *PresenterService) Summary(view []bookings.NormalizedRow, category bookings.Category) Summary {
	rows := ofCategory(view, category)
	summary := Summary{Category: category, Brands: len(rows)}
	for _, row := range rows {
		summary.Totals = summary.Totals.Add(row.Figures)
	}

	variance := s.Variance(view, category)
	if len(variance.Points) == 0 {
		return summary
	}
	data := make(stats.Float64Data, len(variance.Points))
	for i, p := range variance.Points {
		data[i] = p.Percent
	}
	if mean, err := data.Mean(); err == nil {
		summary.MeanVariance = mean
	}
	if median, err := data.Median(); err == nil {
		summary.MedianVariance = median
	}
	return summary
}

func ofCategory(view []bookings.NormalizedRow, category bookings.Category) []bookings.NormalizedRow {
	out := make([]bookings.NormalizedRow, 0, len(view))
	for _, row := range view {
		if row.Category == category {
			out = append(out, row)
		}
	}
	return out
}
