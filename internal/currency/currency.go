// Package currency converts and formats storefront prices. Rates are a
// fixed table relative to USD, matching the web client's converter.
package currency

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Code is a supported display currency.
type Code string

// Supported currencies.
const (
	USD Code = "USD"
	CNY Code = "CNY"
	UZS Code = "UZS"
)

var rates = map[Code]decimal.Decimal{
	USD: decimal.NewFromInt(1),
	CNY: decimal.NewFromFloat(7.24),
	UZS: decimal.NewFromInt(12450),
}

var symbols = map[Code]string{
	USD: "$",
	CNY: "¥",
	UZS: "сўм",
}

var printer = message.NewPrinter(language.English)

// ErrUnsupported is returned for unknown currency codes.
var ErrUnsupported = fmt.Errorf("currency: unsupported code")

// Rates returns the exchange table relative to USD.
func Rates() map[Code]decimal.Decimal {
	out := make(map[Code]decimal.Decimal, len(rates))
	for code, rate := range rates {
		out[code] = rate
	}
	return out
}

// Convert applies the exchange rate for the target currency.
func Convert(amount decimal.Decimal, to Code) (decimal.Decimal, error) {
	rate, ok := rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupported, to)
	}
	return amount.Mul(rate), nil
}

// Format converts and renders an amount the way the storefront displays it:
// symbol-prefixed with two decimals, except UZS which shows a grouped whole
// number with the symbol suffixed.
func Format(amount decimal.Decimal, to Code) (string, error) {
	converted, err := Convert(amount, to)
	if err != nil {
		return "", err
	}
	if to == UZS {
		whole := converted.Round(0).InexactFloat64()
		return printer.Sprintf("%v %s", number.Decimal(whole, number.MaxFractionDigits(0)), symbols[to]), nil
	}
	return symbols[to] + converted.StringFixed(2), nil
}
