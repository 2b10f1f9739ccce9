// Package money provides currency-tagged amounts, described costs and
// currency conversion backed by the European Central Bank daily
// reference-rate feed.
package money

import (
	"fmt"
	"math"

	"github.com/corriander/channelhop/pkg/errors"
)

// Common currency codes.
const (
	GBP = "GBP"
	EUR = "EUR"
)

// Amount is a monetary value in a named currency.
type Amount struct {
	Value    float64 `json:"value" bson:"value" toml:"value"`
	Currency string  `json:"currency" bson:"currency" toml:"currency"`
}

// Pounds returns a GBP amount.
func Pounds(v float64) Amount { return Amount{Value: v, Currency: GBP} }

// Euros returns a EUR amount.
func Euros(v float64) Amount { return Amount{Value: v, Currency: EUR} }

// Add sums two amounts of the same currency.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, errors.New(errors.ErrCodeInternal,
			"cannot add %s to %s without conversion", b.Currency, a.Currency)
	}
	return Amount{Value: a.Value + b.Value, Currency: a.Currency}, nil
}

// Div divides the amount by n.
func (a Amount) Div(n float64) Amount {
	return Amount{Value: a.Value / n, Currency: a.Currency}
}

// Neg returns the amount with the sign flipped.
func (a Amount) Neg() Amount {
	return Amount{Value: -a.Value, Currency: a.Currency}
}

// Abs returns the amount with a non-negative value.
func (a Amount) Abs() Amount {
	return Amount{Value: math.Abs(a.Value), Currency: a.Currency}
}

func (a Amount) String() string {
	switch a.Currency {
	case GBP:
		return fmt.Sprintf("£%.2f", a.Value)
	case EUR:
		return fmt.Sprintf("€%.2f", a.Value)
	default:
		return fmt.Sprintf("%.2f %s", a.Value, a.Currency)
	}
}

// Cost is a described monetary amount. Costs are abstract: an estimated
// fuel bill or an unbooked hotel room, not a transaction that happened.
type Cost struct {
	Description string `json:"description" bson:"description"`
	Amount      Amount `json:"amount" bson:"amount"`
}

// NewCost creates a cost with a description.
func NewCost(description string, amount Amount) Cost {
	return Cost{Description: description, Amount: amount}
}

// Split divides the cost equally between n parties. The description is
// annotated with the share.
func (c Cost) Split(n int) Cost {
	return Cost{
		Description: fmt.Sprintf("%s / %d people", c.Description, n),
		Amount:      c.Amount.Div(float64(n)),
	}
}

func (c Cost) String() string {
	return fmt.Sprintf("%s | %s", c.Amount, c.Description)
}

// Expense is an incurred cost: an actual transaction paid by someone.
// Expenses always carry a negative value (money out).
func Expense(description string, amount Amount) Cost {
	return Cost{Description: description, Amount: amount.Abs().Neg()}
}
