package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ID identifies accounts, transactions and snapshots. IDs are creation-time
// based and increase monotonically, so they double as a sort key.
type ID int64

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a decimal ID as printed by ID.String.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing id %q: %w", s, err)
	}
	return ID(n), nil
}
