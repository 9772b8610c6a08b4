package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// CSVExporter renders datasets as CSV for spreadsheet import.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes the header row followed by every row. Title and subtitle are
// not written; spreadsheets expect the header row first. Free-text cells that
// a spreadsheet would evaluate as a formula are quoted with a leading
// apostrophe, numbers (including negative balances) are left alone.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(sanitizeRecord(data.Headers)); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for i, row := range data.Rows {
		if err := writer.Write(sanitizeRecord(data.Record(row))); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func sanitizeRecord(record []string) []string {
	out := make([]string, len(record))
	for i, cell := range record {
		out[i] = sanitizeCell(cell)
	}
	return out
}

// sanitizeCell neutralises cells starting with a spreadsheet formula trigger.
func sanitizeCell(cell string) string {
	if cell == "" || !strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return cell
	}
	if _, err := strconv.ParseFloat(cell, 64); err == nil {
		return cell
	}
	return "'" + cell
}
