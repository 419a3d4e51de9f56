// Package csvimport parses tabular transaction exports and reconciles them
// against a user's existing accounts and categories, producing transaction
// drafts. It performs no I/O beyond reading the input; persistence belongs
// to the caller.
package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// Row is one parsed line of an import file. Amount stays a raw display
// string until reconciliation, where the sign is re-derived from the
// inferred transaction type.
type Row struct {
	Date         time.Time
	RawDate      string
	RawAmount    string
	Description  string
	CategoryName string
	Shared       bool
	SharedWith   []string
}

// Date layouts accepted in import files, tried in order.
var dateLayouts = []string{"2006-01-02", "01/02/2006", "1/2/2006", time.RFC3339}

// Parse reads a CSV stream with a header row of at least
// date,amount,description and optional categoryName,shared,sharedWith
// columns. Column order is taken from the header. Rows whose date cannot
// be parsed are skipped and counted; amount parsing is deferred to
// reconciliation so the skip policy lives in one place per concern.
func Parse(r io.Reader) ([]Row, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, 0, fmt.Errorf("empty import file")
		}
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "amount", "description"} {
		if _, ok := col[required]; !ok {
			return nil, 0, fmt.Errorf("import header missing required column %q", required)
		}
	}

	var rows []Row
	skipped := 0
	for {
		rec, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return rows, skipped, fmt.Errorf("read csv row: %w", err)
		}

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		rawDate := field("date")
		rawAmount := field("amount")
		if rawDate == "" && rawAmount == "" && field("description") == "" {
			continue // blank line
		}

		date, ok := parseDate(rawDate)
		if !ok {
			skipped++
			continue
		}

		row := Row{
			Date:         date,
			RawDate:      rawDate,
			RawAmount:    rawAmount,
			Description:  field("description"),
			CategoryName: field("categoryname"),
			Shared:       strings.EqualFold(field("shared"), "true"),
		}
		if sw := field("sharedwith"); sw != "" {
			for _, id := range strings.Split(sw, ",") {
				if id = strings.TrimSpace(id); id != "" {
					row.SharedWith = append(row.SharedWith, id)
				}
			}
		}
		rows = append(rows, row)
	}

	return rows, skipped, nil
}

// AccountNameFromFile derives the target account name from an import file
// name: the extension is stripped and the last whitespace-delimited token
// wins ("2024 statements Checking.csv" targets "Checking"). Resolved once
// per batch, never per row.
func AccountNameFromFile(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	fields := strings.Fields(base)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
