package commands

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

// moneyFormatter renders amounts in one currency, optionally masked.
type moneyFormatter struct {
	cur  money.Currency
	hide bool
}

func newMoneyFormatter(code string, hide bool) moneyFormatter {
	// money.New never returns a nil currency, even for unknown codes.
	return moneyFormatter{cur: *money.New(0, code).Currency(), hide: hide}
}

// Format renders d, e.g. "₱1,500.00" or "-$20.00".
func (f moneyFormatter) Format(d decimal.Decimal) string {
	if f.hide {
		return f.cur.Grapheme + "••••"
	}
	minor := d.Shift(int32(f.cur.Fraction)).Round(0)
	return f.cur.Formatter().Format(minor.IntPart())
}

// Signed is Format with an explicit "+" on positive amounts.
func (f moneyFormatter) Signed(d decimal.Decimal) string {
	s := f.Format(d)
	if !f.hide && d.IsPositive() {
		return "+" + s
	}
	return s
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
)

// newTable returns a table with the house border and header style.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

// bar renders a horizontal bar of width proportional to percent.
func bar(percent decimal.Decimal, color string, width int) string {
	n := int(percent.Div(decimal.NewFromInt(100)).Mul(decimal.NewFromInt(int64(width))).Round(0).IntPart())
	if n < 0 {
		n = 0
	}
	if n > width {
		n = width
	}
	filled := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(strings.Repeat("█", n))
	return filled + mutedStyle.Render(strings.Repeat("░", width-n))
}
