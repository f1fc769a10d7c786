// Package coercer turns spreadsheet figure cells into numbers.
package coercer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"bookingsdash/internal/errors"
)

// FigureCoercer parses bookings figures with a fixed set of formatting rules
type FigureCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines which placeholder cells read as zero
type CoercionConfig struct {
	ZeroTokens      []string `json:"zero_tokens"`      // cells that mean "nothing booked"
	CurrencySymbols []string `json:"currency_symbols"` // stripped before parsing
}

// DefaultCoercionConfig returns the rules used for the bookings workbook
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		ZeroTokens:      []string{"", "-", "–"},
		CurrencySymbols: []string{"$", "€", "£", "USD"},
	}
}

// NewFigureCoercer creates a coercer with the given config
func NewFigureCoercer(config CoercionConfig) *FigureCoercer {
	return &FigureCoercer{config: config}
}

var defaultCoercer = NewFigureCoercer(DefaultCoercionConfig())

// ParseFigure parses raw with the default rules
func ParseFigure(raw string) (float64, error) {
	return defaultCoercer.Parse(raw)
}

// Parse converts a figure cell to float64.
// Accepts thousands separators, currency symbols, a trailing percent sign and
// accounting negatives "(123)". Any other text is INVALID_INPUT.
func (c *FigureCoercer) Parse(raw string) (float64, error) {
	cleanVal := strings.TrimSpace(raw)
	for _, zero := range c.config.ZeroTokens {
		if cleanVal == zero {
			return 0, nil
		}
	}

	// Handle parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range c.config.CurrencySymbols {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSuffix(strings.TrimSpace(cleanVal), "%")
	cleanVal = strings.ReplaceAll(cleanVal, ",", "")
	cleanVal = strings.ReplaceAll(cleanVal, " ", "")

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, errors.InvalidInput(fmt.Sprintf("non-numeric figure %q", raw))
	}
	return val, nil
}
