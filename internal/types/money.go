// README: Common money value object used across modules.
package types

import "github.com/shopspring/decimal"

// DefaultCurrency is the currency every fee and price is quoted in.
const DefaultCurrency = "PHP"

// Money is an amount in whole currency units (no fractional centavos).
type Money struct {
	Amount   int64
	Currency string
}

func NewMoney(amount int64) Money {
	return Money{Amount: amount, Currency: DefaultCurrency}
}

// Decimal returns the amount as a decimal for arithmetic with item prices.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.Amount)
}
