package domain

import (
	"strings"

	dErrors "propex/pkg/domain-errors"
)

// Currency is an upper-case asset or fiat code such as "EUR" or "BTC".
// Invariant: 3 to 5 ASCII letters.
//
// Construct via ParseCurrency at trust boundaries; direct casting is reserved
// for constants and values read back from storage.
type Currency string

const (
	CurrencyEUR  Currency = "EUR"
	CurrencyBTC  Currency = "BTC"
	CurrencyETH  Currency = "ETH"
	CurrencyUSDT Currency = "USDT"
	CurrencyUSDC Currency = "USDC"
)

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) < 3 || len(code) > 5 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "currency must be 3 to 5 letters")
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "currency must contain letters only")
		}
	}
	return Currency(code), nil
}

// ParseCurrencies parses a list separated by commas or semicolons, dropping
// duplicates.
func ParseCurrencies(list string) ([]Currency, error) {
	var out []Currency
	seen := make(map[Currency]struct{})
	parts := strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ';' })
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCurrency(part)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func (c Currency) String() string {
	return string(c)
}
