// Package ledger tracks trip participants, their bills and vehicle fuel
// costs, and apportions shared expenses across whoever was present for
// each stage of a trip.
package ledger

import (
	"fmt"
	"strings"

	"github.com/corriander/channelhop/pkg/money"
)

// Person is a trip participant with an itemised bill.
//
// A positive bill entry is a projected cost the person owes a share of; a
// negative entry is an expense they have already paid. A positive balance
// means they have underpaid.
type Person struct {
	Name string `json:"name"`

	bill []money.Cost
}

// NewPerson creates a participant with an empty bill.
func NewPerson(name string) *Person {
	return &Person{Name: name}
}

// AddCost adds a projected cost to the person's bill. Costs are stored
// positive regardless of the sign passed in.
func (p *Person) AddCost(description string, amount money.Amount) money.Cost {
	c := money.NewCost(description, amount.Abs())
	p.bill = append(p.bill, c)
	return c
}

// AddExpense adds an incurred expense to the person's bill. Expenses are
// stored negative regardless of the sign passed in.
func (p *Person) AddExpense(description string, amount money.Amount) money.Cost {
	c := money.Expense(description, amount)
	p.bill = append(p.bill, c)
	return c
}

// Bill returns the itemised bill.
func (p *Person) Bill() []money.Cost { return p.bill }

// Balance sums the bill in GBP, converting entries in other currencies
// with the given rate table.
func (p *Person) Balance(rates money.Rates) (money.Amount, error) {
	total := money.Pounds(0)
	for _, c := range p.bill {
		amt, err := rates.Convert(c.Amount, money.GBP)
		if err != nil {
			return money.Amount{}, err
		}
		total, _ = total.Add(amt)
	}
	return total, nil
}

// FormatBill renders the itemised bill with a GBP total.
func (p *Person) FormatBill(rates money.Rates) (string, error) {
	total, err := p.Balance(rates)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(p.Name + "\n")
	for _, c := range p.bill {
		fmt.Fprintf(&b, "  %s\n", c)
	}
	fmt.Fprintf(&b, "  %s | TOTAL", total)
	return b.String(), nil
}
