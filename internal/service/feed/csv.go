package feed

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"FinGauge/pkg/timeseries"
	"FinGauge/pkg/util"
)

// parseRows reads CSV bytes into rows, tolerating ragged records and
// vendor preamble lines.
func parseRows(b []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// normalizeHeader lowercases, trims and underscores column names, the
// same normalization every vendor file goes through.
func normalizeHeader(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.ReplaceAll(strings.TrimSpace(strings.ToLower(c)), " ", "_")
	}
	return out
}

// columnIndex returns the index of the first wanted column name, or -1.
func columnIndex(header []string, want ...string) int {
	for _, w := range want {
		for i, c := range header {
			if c == w {
				return i
			}
		}
	}
	return -1
}

// columnContaining returns the index of the first column whose name
// contains substr, or -1.
func columnContaining(header []string, substr string) int {
	for i, c := range header {
		if strings.Contains(c, substr) {
			return i
		}
	}
	return -1
}

// parseNumber parses a vendor numeric cell. Thousands separators and a
// trailing percent sign are tolerated; empty cells and the usual
// missing-value markers report false.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "." || s == "-" || strings.EqualFold(s, "na") || strings.EqualFold(s, "nan") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// seriesColumn builds a series from one date column and one value
// column, skipping rows where either fails to parse.
func seriesColumn(rows [][]string, dateIdx, valueIdx int) timeseries.Series {
	var pts []timeseries.Point
	for _, row := range rows {
		if dateIdx >= len(row) || valueIdx >= len(row) {
			continue
		}
		t, ok := util.ParseDate(row[dateIdx])
		if !ok {
			continue
		}
		v, ok := parseNumber(row[valueIdx])
		if !ok {
			continue
		}
		pts = append(pts, timeseries.Point{Time: t, Value: v})
	}
	return timeseries.New(pts)
}
