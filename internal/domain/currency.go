package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currencies converts base-currency catalog prices into an order currency
// using a fixed rate table. Conversion rounds to cents after multiplying.
type Currencies struct {
	base  string
	rates map[string]decimal.Decimal
}

func NewCurrencies(base string, rates map[string]string) (*Currencies, error) {
	base = NormalizeCurrency(base)
	if base == "" {
		return nil, fmt.Errorf("base currency is required")
	}
	if zeroDecimal[base] {
		return nil, fmt.Errorf("zero-decimal currency %s is not supported", base)
	}
	c := &Currencies{base: base, rates: map[string]decimal.Decimal{base: decimal.NewFromInt(1)}}
	for code, raw := range rates {
		if zeroDecimal[NormalizeCurrency(code)] {
			return nil, fmt.Errorf("zero-decimal currency %s is not supported", code)
		}
		r, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", code, err)
		}
		if !r.IsPositive() {
			return nil, fmt.Errorf("rate for %s must be positive", code)
		}
		c.rates[NormalizeCurrency(code)] = r
	}
	return c, nil
}

func (c *Currencies) Base() string { return c.base }

// Resolve returns the currency to use for an order; empty means base.
func (c *Currencies) Resolve(code string) (string, error) {
	code = NormalizeCurrency(code)
	if code == "" {
		return c.base, nil
	}
	if _, ok := c.rates[code]; !ok {
		return "", NewValidationError("unsupported currency", map[string]string{"currency": fmt.Sprintf("no exchange rate configured for %q", code)})
	}
	return code, nil
}

func (c *Currencies) Convert(amount decimal.Decimal, code string) (decimal.Decimal, error) {
	code, err := c.Resolve(code)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(c.rates[code]).Round(2), nil
}

func NormalizeCurrency(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
}

// zeroDecimal currencies have no minor unit; MinorUnits would overcharge them
// by a factor of 100, so they are refused at configuration time.
var zeroDecimal = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// CurrencySymbol falls back to the upper-cased code plus a space.
func CurrencySymbol(code string) string {
	if s, ok := currencySymbols[NormalizeCurrency(code)]; ok {
		return s
	}
	return strings.ToUpper(code) + " "
}

// FormatMoney renders an amount with two decimals and the currency symbol.
func FormatMoney(amount decimal.Decimal, code string) string {
	return CurrencySymbol(code) + amount.StringFixed(2)
}

// MinorUnits converts an amount to cents for the payment processor.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
