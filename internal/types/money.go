// README: Common money value object used across modules.
package types

import (
	"fmt"
	"math"
)

// Money holds an amount in hundredths of the currency unit.
type Money struct {
	Amount   int64  `json:"amount_minor"`
	Currency string `json:"currency"`
}

// MoneyFromFloat rounds v to two decimals.
func MoneyFromFloat(v float64, currency string) Money {
	return Money{Amount: int64(math.Round(v * 100)), Currency: currency}
}

func (m Money) Float64() float64 {
	return float64(m.Amount) / 100
}

func (m Money) String() string {
	sign := ""
	amt := m.Amount
	if amt < 0 {
		sign = "-"
		amt = -amt
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amt/100, amt%100, m.Currency)
}
