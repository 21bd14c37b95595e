package model

import (
	"strings"

	"github.com/maruel/natural"
)

// NameLess orders entry names naturally ("file2" before "file10"), ignoring
// case first and falling back to a byte comparison so the order is total.
func NameLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return natural.Less(la, lb)
	}
	return a < b
}
