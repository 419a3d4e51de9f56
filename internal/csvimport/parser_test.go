package csvimport_test

import (
	"strings"
	"testing"

	"github.com/dmelton/splitbook/internal/csvimport"
)

func TestParse_HeaderOrderIndependent(t *testing.T) {
	input := strings.Join([]string{
		"description,amount,date,categoryName",
		"Weekly shop,\"$1,234.56\",2024-03-01,Groceries",
		"Coffee,(4.50),2024-03-02,",
	}, "\n")

	rows, skipped, err := csvimport.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Description != "Weekly shop" || rows[0].RawAmount != "$1,234.56" {
		t.Errorf("row 0 mismatch: %+v", rows[0])
	}
	if rows[0].CategoryName != "Groceries" {
		t.Errorf("row 0 category = %q", rows[0].CategoryName)
	}
	if rows[0].Date.Format("2006-01-02") != "2024-03-01" {
		t.Errorf("row 0 date = %s", rows[0].Date)
	}
}

func TestParse_SharedColumns(t *testing.T) {
	input := strings.Join([]string{
		"date,amount,description,shared,sharedWith",
		"2024-03-01,-60.00,Dinner,TRUE,\"u2, u3\"",
		"2024-03-02,-10.00,Snacks,false,",
	}, "\n")

	rows, _, err := csvimport.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if !rows[0].Shared {
		t.Error("row 0 should be shared")
	}
	if len(rows[0].SharedWith) != 2 || rows[0].SharedWith[0] != "u2" || rows[0].SharedWith[1] != "u3" {
		t.Errorf("row 0 sharedWith = %v", rows[0].SharedWith)
	}
	if rows[1].Shared {
		t.Error("row 1 should not be shared")
	}
}

func TestParse_BadDateSkipped(t *testing.T) {
	input := strings.Join([]string{
		"date,amount,description",
		"not-a-date,5.00,Broken",
		"2024-03-01,5.00,Fine",
	}, "\n")

	rows, skipped, err := csvimport.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(rows) != 1 || rows[0].Description != "Fine" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestParse_MissingRequiredColumn(t *testing.T) {
	input := "date,description\n2024-03-01,No amount column"
	if _, _, err := csvimport.Parse(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for missing amount column")
	}
}

func TestParse_EmptyFile(t *testing.T) {
	if _, _, err := csvimport.Parse(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestAccountNameFromFile(t *testing.T) {
	cases := map[string]string{
		"2024 statements Checking.csv":  "Checking",
		"Checking.csv":                  "Checking",
		"/tmp/uploads/march Savings.CSV": "Savings",
		"export.csv":                    "export",
		"":                              "",
	}
	for in, want := range cases {
		if got := csvimport.AccountNameFromFile(in); got != want {
			t.Errorf("AccountNameFromFile(%q) = %q, want %q", in, got, want)
		}
	}
}
