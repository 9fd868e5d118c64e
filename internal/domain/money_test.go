package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyString(t *testing.T) {
	tests := []struct {
		name     string
		money    Money
		contains []string
	}{
		{
			name:     "known currency uses symbol",
			money:    NewMoney(decimal.NewFromInt(1000), "EUR"),
			contains: []string{"€", "1,000.00"},
		},
		{
			name:     "missing currency falls back to plain amount",
			money:    NewMoney(decimal.RequireFromString("12.5"), ""),
			contains: []string{"12.50"},
		},
		{
			name:     "unknown currency keeps the code",
			money:    NewMoney(decimal.NewFromInt(3), "XYZ"),
			contains: []string{"3.00 XYZ"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.money.String()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Fatalf("expected %q to contain %q", got, want)
				}
			}
		})
	}
}

func TestMoneyEqual(t *testing.T) {
	a := NewMoney(decimal.RequireFromString("10.00"), "EUR")
	b := NewMoney(decimal.NewFromInt(10), "EUR")
	c := NewMoney(decimal.NewFromInt(10), "USD")

	if !a.Equal(b) {
		t.Fatal("expected numerically equal amounts to be equal")
	}
	if a.Equal(c) {
		t.Fatal("expected different currencies to differ")
	}
}
