package transfer

import (
	"fmt"
	"strings"

	"github.com/montra-dev/montra/internal/model"
)

// Issue describes one invalid entry in a backup.
type Issue struct {
	Collection string // "accounts" or "transactions"
	Index      int
	Reason     string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s[%d]: %s", i.Collection, i.Index, i.Reason)
}

// Validate checks every entry of the collections present in doc.
func Validate(doc Document) []Issue {
	var issues []Issue

	seen := make(map[model.ID]bool, len(doc.Accounts))
	for i, a := range doc.Accounts {
		add := func(reason string) {
			issues = append(issues, Issue{Collection: "accounts", Index: i, Reason: reason})
		}
		if a.ID == 0 {
			add("missing id")
		} else if seen[a.ID] {
			add(fmt.Sprintf("duplicate id %s", a.ID))
		}
		seen[a.ID] = true
		if strings.TrimSpace(a.Name) == "" {
			add("missing name")
		}
		if !a.Category.Valid() {
			add(fmt.Sprintf("unknown category %q", a.Category))
		}
	}

	seen = make(map[model.ID]bool, len(doc.Transactions))
	for i, t := range doc.Transactions {
		add := func(reason string) {
			issues = append(issues, Issue{Collection: "transactions", Index: i, Reason: reason})
		}
		if t.ID == 0 {
			add("missing id")
		} else if seen[t.ID] {
			add(fmt.Sprintf("duplicate id %s", t.ID))
		}
		seen[t.ID] = true
		if !t.Kind.Valid() {
			add(fmt.Sprintf("unknown kind %q", t.Kind))
		}
	}

	return issues
}

func issuesError(issues []Issue) error {
	msgs := make([]string, len(issues))
	for i, is := range issues {
		msgs[i] = is.Error()
	}
	return &FormatError{Reason: fmt.Sprintf("%d invalid entries: %s", len(issues), strings.Join(msgs, "; "))}
}
