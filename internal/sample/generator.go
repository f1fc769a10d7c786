package sample

import (
	"fmt"
	"math"
	"math/rand"

	"bookingsdash/domain/bookings"
)

// WorkbookGeneratorConfig configures synthetic bookings workbooks
type WorkbookGeneratorConfig struct {
	BrandCount       int     `json:"brand_count"`
	MissingRate      float64 `json:"missing_rate"`       // chance a category row is left out of a block
	DuplicateRate    float64 `json:"duplicate_rate"`     // chance a brand gets a second block
	ForecastNoise    float64 `json:"forecast_noise"`     // relative spread of forecast around budget
	ActualNoise      float64 `json:"actual_noise"`       // relative spread of actual around budget
	IncludeOtherRows bool    `json:"include_other_rows"` // add an "Other" block per sheet
	Seed             int64   `json:"seed"`
}

// DefaultWorkbookConfig returns sensible defaults for workbook generation
func DefaultWorkbookConfig() WorkbookGeneratorConfig {
	return WorkbookGeneratorConfig{
		BrandCount:       12,
		MissingRate:      0.15,
		DuplicateRate:    0.1,
		ForecastNoise:    0.1,
		ActualNoise:      0.25,
		IncludeOtherRows: true,
		Seed:             42,
	}
}

// WorkbookGenerator produces deterministic three-period workbooks
type WorkbookGenerator struct {
	config WorkbookGeneratorConfig
	rng    *rand.Rand
}

// NewWorkbookGenerator creates a generator seeded from config
func NewWorkbookGenerator(config WorkbookGeneratorConfig) *WorkbookGenerator {
	return &WorkbookGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var categoryScale = map[bookings.Category]float64{
	bookings.CategoryMQLs:    400,
	bookings.CategoryUnits:   60,
	bookings.CategoryDollars: 250000,
}

// Generate returns one sheet per period. The same seed yields the same
// workbook.
func (g *WorkbookGenerator) Generate() []Sheet {
	brands := make([]string, g.config.BrandCount)
	for i := range brands {
		brands[i] = fmt.Sprintf("Brand %02d", i+1)
	}

	var sheets []Sheet
	for _, layout := range bookings.Layouts() {
		var body [][]interface{}
		for _, brand := range brands {
			body = append(body, g.block(brand)...)
			if g.rng.Float64() < g.config.DuplicateRate {
				body = append(body, g.block(brand)...)
			}
		}
		if g.config.IncludeOtherRows {
			body = append(body, []interface{}{bookings.BrandOther})
			body = append(body, []interface{}{nil, 1, 1, 1})
		}
		sheets = append(sheets, PeriodSheet(layout.Period, body...))
	}
	return sheets
}

func (g *WorkbookGenerator) block(brand string) [][]interface{} {
	rows := [][]interface{}{{brand}}
	for _, c := range bookings.Categories {
		if g.rng.Float64() < g.config.MissingRate {
			continue
		}
		label := string(c)
		if c == bookings.CategoryMQLs && g.rng.Float64() < 0.2 {
			label = bookings.BrandMQLsAlias
		}
		budget := math.Round(categoryScale[c] * (0.5 + g.rng.Float64()))
		forecast := math.Round(budget * (1 + g.config.ForecastNoise*g.rng.NormFloat64()))
		actual := math.Round(budget * (1 + g.config.ActualNoise*g.rng.NormFloat64()))
		rows = append(rows, []interface{}{label, budget, forecast, actual})
	}
	return rows
}
