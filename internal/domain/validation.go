package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Rhymond/go-money"
)

// Validation errors
var (
	ErrInvalidCurrency = errors.New("invalid currency code")
)

// Currencies offered when a ledger entity has none. Every code must be known
// to the money formatter.
var knownCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
	"DKK": true, "PLN": true, "CZK": true, "HUF": true,
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !knownCurrencies[currency] || money.GetCurrency(currency) == nil {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// KnownCurrencies returns the currency catalogue in alphabetical order.
func KnownCurrencies() []string {
	out := make([]string, 0, len(knownCurrencies))
	for code := range knownCurrencies {
		out = append(out, code)
	}
	slices.Sort(out)
	return out
}

// RankCurrencies returns preferred codes first, in the given order, followed
// by the rest of the catalogue alphabetically. Invalid or duplicate preferred
// codes are skipped.
func RankCurrencies(preferred []string) []string {
	seen := make(map[string]bool, len(knownCurrencies))
	out := make([]string, 0, len(knownCurrencies))

	for _, code := range preferred {
		code = strings.ToUpper(strings.TrimSpace(code))
		if seen[code] || ValidateCurrency(code) != nil {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}

	for _, code := range KnownCurrencies() {
		if !seen[code] {
			out = append(out, code)
		}
	}
	return out
}
