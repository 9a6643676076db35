// Package analytics derives totals and distributions from a set of accounts.
// Every function is pure; callers pass in the accounts they want summarized.
package analytics

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/montra-dev/montra/internal/model"
)

// Filter is a dashboard category filter. Its spellings are plural where the
// account categories are singular.
type Filter string

const (
	FilterAll         Filter = "All"
	FilterWallets     Filter = "Wallets"
	FilterLoans       Filter = "Loans"
	FilterCredit      Filter = "Credit"
	FilterInvestments Filter = "Investments"
)

// Filters returns every filter in display order.
func Filters() []Filter {
	return []Filter{FilterAll, FilterWallets, FilterLoans, FilterCredit, FilterInvestments}
}

// Category returns the account category f selects. ok is false for FilterAll.
func (f Filter) Category() (c model.Category, ok bool) {
	switch f {
	case FilterWallets:
		return model.CategoryWallet, true
	case FilterLoans:
		return model.CategoryLoan, true
	case FilterCredit:
		return model.CategoryCredit, true
	case FilterInvestments:
		return model.CategoryInvestments, true
	}
	return "", false
}

// ParseFilter parses a filter name, ignoring case. The singular category
// names are accepted as well.
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	for _, f := range Filters() {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	if c, err := model.ParseCategory(s); err == nil {
		return FilterFor(c), nil
	}
	return "", &model.ValidationError{Field: "filter", Value: s, Reason: fmt.Sprintf("expected one of %v", Filters())}
}

// FilterFor returns the filter selecting category c.
func FilterFor(c model.Category) Filter {
	switch c {
	case model.CategoryWallet:
		return FilterWallets
	case model.CategoryLoan:
		return FilterLoans
	case model.CategoryCredit:
		return FilterCredit
	case model.CategoryInvestments:
		return FilterInvestments
	}
	return FilterAll
}

// FilterByCategory returns the accounts f selects, keeping their order.
func FilterByCategory(accounts []model.Account, f Filter) []model.Account {
	c, ok := f.Category()
	if !ok {
		return append([]model.Account{}, accounts...)
	}
	result := []model.Account{}
	for _, a := range accounts {
		if a.Category == c {
			result = append(result, a)
		}
	}
	return result
}

// TotalBalance sums the balances of accounts.
func TotalBalance(accounts []model.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

var hundred = decimal.NewFromInt(100)

// PercentageOf returns a's share of total as a percentage rounded to one
// decimal place, or zero when total is zero.
func PercentageOf(a model.Account, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return a.Balance.Div(total).Mul(hundred).Round(1)
}

// Slice is one account's share of a distribution chart.
type Slice struct {
	ID      model.ID
	Name    string
	Balance decimal.Decimal
	Color   string
	Percent decimal.Decimal
}

// Distribution returns one slice per account in account order, with
// percentages relative to the accounts' combined balance.
func Distribution(accounts []model.Account) []Slice {
	total := TotalBalance(accounts)
	slices := make([]Slice, 0, len(accounts))
	for _, a := range accounts {
		slices = append(slices, Slice{
			ID:      a.ID,
			Name:    a.Name,
			Balance: a.Balance,
			Color:   a.Color,
			Percent: PercentageOf(a, total),
		})
	}
	return slices
}

// Subtotal is the combined balance of one category.
type Subtotal struct {
	Category model.Category
	Count    int
	Total    decimal.Decimal
}

// Subtotals returns a subtotal for every category, in category order,
// including categories with no accounts.
func Subtotals(accounts []model.Account) []Subtotal {
	cats := model.Categories()
	out := make([]Subtotal, len(cats))
	for i, c := range cats {
		out[i] = Subtotal{Category: c, Total: decimal.Zero}
		for _, a := range accounts {
			if a.Category == c {
				out[i].Count++
				out[i].Total = out[i].Total.Add(a.Balance)
			}
		}
	}
	return out
}

// Summary is everything the analytics view shows for one filter.
type Summary struct {
	Filter    Filter
	NetWorth  decimal.Decimal // all accounts, unfiltered
	Total     decimal.Decimal // filtered accounts
	Subtotals []Subtotal
	Slices    []Slice
}

// Summarize computes the analytics view of accounts under filter f.
func Summarize(accounts []model.Account, f Filter) Summary {
	filtered := FilterByCategory(accounts, f)
	return Summary{
		Filter:    f,
		NetWorth:  TotalBalance(accounts),
		Total:     TotalBalance(filtered),
		Subtotals: Subtotals(accounts),
		Slices:    Distribution(filtered),
	}
}
