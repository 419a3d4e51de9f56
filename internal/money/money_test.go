package money_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dmelton/splitbook/internal/domain"
	"github.com/dmelton/splitbook/internal/money"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"80", "80"},
		{"80.00", "80"},
		{"$80.00", "80"},
		{"$1,234.56", "1234.56"},
		{"-45.00", "-45"},
		{"-$45.00", "-45"},
		{"(80.00)", "-80"},
		{"($1,234.56)", "-1234.56"},
		{" 12.5 ", "12.5"},
	}

	for _, c := range cases {
		got, err := money.Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error %v", c.in, err)
		}
		if !got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("Parse(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "$", "()", "-", "12.3.4"} {
		_, err := money.Parse(in)
		if err == nil {
			t.Errorf("Parse(%q): expected error, got none", in)
			continue
		}
		var invalid *domain.ErrInvalidAmount
		if !errors.As(err, &invalid) {
			t.Errorf("Parse(%q): expected ErrInvalidAmount, got %T", in, err)
		}
	}
}

func TestNormalize_SignRule(t *testing.T) {
	cases := []struct {
		txType string
		in     string
		want   string
	}{
		{domain.TypeExpense, "-$45.00", "-45"},
		{domain.TypeExpense, "45.00", "-45"},
		{domain.TypeExpense, "(45.00)", "-45"},
		{domain.TypePayment, "100", "-100"},
		{domain.TypeIncome, "100", "100"},
		{domain.TypeIncome, "-100", "100"},
		{domain.TypeCharge, "(60.00)", "60"},
	}

	for _, c := range cases {
		got, err := money.Normalize(c.txType, c.in)
		if err != nil {
			t.Fatalf("Normalize(%s, %q): unexpected error %v", c.txType, c.in, err)
		}
		if !got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("Normalize(%s, %q) = %s, want %s", c.txType, c.in, got, c.want)
		}
	}
}

// Same-type inputs in different representations must normalize to the same
// signed value.
func TestNormalize_RepresentationIndependent(t *testing.T) {
	inputs := []string{"80", "$80.00", "80.00", "(80.00)", "-80"}
	for _, txType := range []string{domain.TypeIncome, domain.TypeExpense, domain.TypeCharge, domain.TypePayment} {
		first, err := money.Normalize(txType, inputs[0])
		if err != nil {
			t.Fatal(err)
		}
		for _, in := range inputs[1:] {
			got, err := money.Normalize(txType, in)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(first) {
				t.Errorf("Normalize(%s, %q) = %s, want %s", txType, in, got, first)
			}
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, txType := range []string{domain.TypeIncome, domain.TypeExpense, domain.TypeCharge, domain.TypePayment} {
		once, err := money.Normalize(txType, "$1,234.56")
		if err != nil {
			t.Fatal(err)
		}
		twice, err := money.Normalize(txType, once.String())
		if err != nil {
			t.Fatal(err)
		}
		if !twice.Equal(once) {
			t.Errorf("%s: normalize twice = %s, once = %s", txType, twice, once)
		}
	}
}

func TestNormalizeDecimal_UnknownType(t *testing.T) {
	_, err := money.NormalizeDecimal("Transfer", decimal.NewFromInt(10))
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation for unknown type, got %v", err)
	}
}
