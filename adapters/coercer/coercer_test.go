package coercer

import (
	"testing"

	"bookingsdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFigure(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
	}{
		{name: "plain integer", raw: "100", expected: 100},
		{name: "decimal", raw: "12.5", expected: 12.5},
		{name: "blank is zero", raw: "", expected: 0},
		{name: "whitespace is zero", raw: "   ", expected: 0},
		{name: "dash placeholder is zero", raw: "-", expected: 0},
		{name: "thousands separators", raw: "1,234,567", expected: 1234567},
		{name: "currency", raw: "$45,000", expected: 45000},
		{name: "accounting negative", raw: "(250)", expected: -250},
		{name: "accounting negative currency", raw: "($1,250.50)", expected: -1250.5},
		{name: "leading minus", raw: "-3", expected: -3},
		{name: "percent sign", raw: "15%", expected: 15},
		{name: "scientific notation", raw: "1.5E3", expected: 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFigure(tt.raw)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestParseFigureRejectsText(t *testing.T) {
	for _, raw := range []string{"n/a", "TBD", "12abc", "NaN", "Inf"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseFigure(raw)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
			assert.Contains(t, err.Error(), raw)
		})
	}
}

func TestCustomZeroTokens(t *testing.T) {
	c := NewFigureCoercer(CoercionConfig{ZeroTokens: []string{"", "n/a"}})

	got, err := c.Parse("n/a")
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = c.Parse("-")
	assert.Error(t, err, "dash is not a zero token in this config")
}
