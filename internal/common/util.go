package common

import (
	"strings"

	"golang.org/x/text/cases"
)

// WipeByteArray overwrites b with zeros. Used for passwords read from the
// terminal once they have been sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ContainsFold reports whether substr is within s under Unicode case
// folding, so "STRASSE" finds "Straße". An empty substr matches everything.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}
