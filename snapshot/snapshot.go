// Package snapshot defines the flags that select which fields a key-value
// projection of a simulation entity contains.
package snapshot

// Flags selects static and/or dynamic fields.
type Flags uint8

const (
	// Static fields never change after construction (genome, body plan).
	Static Flags = 1 << iota
	// Dynamic fields change while the simulation runs (position, scores).
	Dynamic

	All = Static | Dynamic
)

// Has reports whether every bit of o is set in f.
func (f Flags) Has(o Flags) bool {
	return f&o == o
}
