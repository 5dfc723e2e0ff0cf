// Package evaluation scores individuals from the observations collected over an epoch.
package evaluation

import "strings"

// Instinct is one axis of behavioural scoring.
type Instinct uint8

const (
	Nomadic Instinct = iota
	Explorer
	Basking
)

// AllInstincts lists every instinct.
var AllInstincts = []Instinct{Nomadic, Explorer, Basking}

func (i Instinct) String() string {
	switch i {
	case Nomadic:
		return "nomadic"
	case Explorer:
		return "explorer"
	case Basking:
		return "basking"
	}
	return "unknown"
}

// ParseInstinct parses an instinct name. Unknown names return false.
func ParseInstinct(s string) (Instinct, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, i := range AllInstincts {
		if i.String() == s {
			return i, true
		}
	}
	return 0, false
}
