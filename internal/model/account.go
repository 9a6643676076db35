package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category classifies an account.
type Category string

const (
	CategoryWallet      Category = "Wallet"
	CategoryLoan        Category = "Loan"
	CategoryCredit      Category = "Credit"
	CategoryInvestments Category = "Investments"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{CategoryWallet, CategoryLoan, CategoryCredit, CategoryInvestments}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory parses a singular category name, ignoring case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", &ValidationError{Field: "category", Value: s, Reason: "unknown category"}
}

// Palette is the fixed set of account colors.
var Palette = []string{
	"#6366f1",
	"#8b5cf6",
	"#ec4899",
	"#f59e0b",
	"#10b981",
	"#3b82f6",
	"#ef4444",
	"#06b6d4",
	"#84cc16",
	"#f97316",
}

// ColorFor returns the palette color for the n-th account created.
func ColorFor(n int) string {
	if n < 0 {
		n = -n
	}
	return Palette[n%len(Palette)]
}

// Icons lists the glyphs offered when creating an account.
var Icons = []string{"💳", "🏦", "💵", "💰", "📱", "🎯", "💎", "🏪", "🎨", "⭐"}

// DefaultIcon is used when an account is created without an icon.
const DefaultIcon = "💳"

// Account is one tracked financial holding.
type Account struct {
	ID       ID              `json:"id"`
	Name     string          `json:"name"`
	Category Category        `json:"category"`
	Balance  decimal.Decimal `json:"balance"`
	Icon     string          `json:"icon"`
	Color    string          `json:"color"` // assigned once at creation
}

func (a Account) String() string {
	return fmt.Sprintf("%s %s (%s) %s", a.Icon, a.Name, a.Category, a.Balance.StringFixed(2))
}

// CloneAccounts returns an independent copy of accounts. A nil input stays nil.
func CloneAccounts(accounts []Account) []Account {
	if accounts == nil {
		return nil
	}
	out := make([]Account, len(accounts))
	copy(out, accounts)
	return out
}
