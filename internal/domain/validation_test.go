package domain

import (
	"errors"
	"slices"
	"testing"
)

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrency("eur"); err != nil {
		t.Fatalf("expected uppercase conversion to succeed, got %v", err)
	}

	if err := ValidateCurrency("XYZ"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}

	if err := ValidateCurrency(""); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency for empty code, got %v", err)
	}
}

func TestKnownCurrenciesSorted(t *testing.T) {
	t.Parallel()

	codes := KnownCurrencies()
	if len(codes) != len(knownCurrencies) {
		t.Fatalf("expected %d codes, got %d", len(knownCurrencies), len(codes))
	}
	if !slices.IsSorted(codes) {
		t.Fatalf("expected alphabetical order, got %v", codes)
	}
}

func TestRankCurrencies(t *testing.T) {
	t.Parallel()

	ranked := RankCurrencies([]string{"chf", "EUR", "XYZ", "CHF"})

	if ranked[0] != "CHF" || ranked[1] != "EUR" {
		t.Fatalf("expected preferred codes first, got %v", ranked[:2])
	}
	if len(ranked) != len(knownCurrencies) {
		t.Fatalf("expected every known code exactly once, got %d entries", len(ranked))
	}
	if !slices.IsSorted(ranked[2:]) {
		t.Fatalf("expected remaining codes in alphabetical order, got %v", ranked[2:])
	}
	if slices.Contains(ranked, "XYZ") {
		t.Fatal("expected unknown code to be skipped")
	}
}
