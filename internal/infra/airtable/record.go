package airtable

import (
	"time"

	"github.com/shopspring/decimal"
)

// record is the raw envelope the record store returns. Fields are untyped
// key/value pairs; linked records arrive inconsistently as a bare id or a
// single-element array. Nothing outside this package sees a record — the
// field helpers below normalize everything into the typed domain structs.
type record struct {
	ID          string         `json:"id"`
	CreatedTime time.Time      `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

// recordList is a page of records. Offset is non-empty while more pages
// remain.
type recordList struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

func fieldString(f map[string]any, key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

func fieldBool(f map[string]any, key string) bool {
	v, ok := f[key].(bool)
	return ok && v
}

// fieldDecimal reads a numeric field that may arrive as a JSON number or a
// formatted string.
func fieldDecimal(f map[string]any, key string) decimal.Decimal {
	switch v := f[key].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// fieldLink reads a single linked-record id. The store wraps links in a
// one-element array on some tables and returns a bare string on others.
func fieldLink(f map[string]any, key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// fieldLinks reads a multi-link field, tolerating the same inconsistent
// wrapping.
func fieldLinks(f map[string]any, key string) []string {
	switch v := f[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// fieldTime parses a date field stored either as RFC3339 or a bare
// calendar date.
func fieldTime(f map[string]any, key string) time.Time {
	s := fieldString(f, key)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}
