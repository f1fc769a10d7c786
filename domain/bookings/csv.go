package bookings

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookingsdash/domain/core"
	"bookingsdash/internal/errors"
)

// EncodeCSV writes rows in the artifact layout: a header of Columns, then
// one record per row with figures in shortest round-trip form.
func EncodeCSV(w io.Writer, rows []NormalizedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Brand,
			string(row.Category),
			formatFigure(row.Budget),
			formatFigure(row.Forecast),
			formatFigure(row.Actual),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeCSV reads a table written by EncodeCSV
func DecodeCSV(r io.Reader) ([]NormalizedRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.InvalidInput("empty table file")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read table header")
	}
	for i, name := range Columns {
		if strings.TrimSpace(header[i]) != name {
			return nil, errors.New(errors.CodeMissingColumn, fmt.Sprintf("table column %d is %q, want %q", i+1, header[i], name))
		}
	}

	var rows []NormalizedRow
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read table line %d", line)
		}
		category, err := ParseCategory(record[1])
		if err != nil {
			return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "table line %d", line)
		}
		row := NormalizedRow{Brand: record[0], Category: category}
		for i, dst := range []*float64{&row.Budget, &row.Forecast, &row.Actual} {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[2+i]), 64)
			if err != nil {
				return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "table line %d column %q", line, Columns[2+i])
			}
			*dst = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Fingerprint hashes the CSV encoding of rows
func Fingerprint(rows []NormalizedRow) (core.Hash, error) {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, rows); err != nil {
		return "", err
	}
	return core.NewHash(buf.Bytes()), nil
}

func formatFigure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
