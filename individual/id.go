package individual

// IDGenerator hands out individual identities. Implementations must never
// return 0 and must not repeat a value.
type IDGenerator interface {
	Next() uint64
}

// Counter is a sequential IDGenerator. The zero value starts at 1.
type Counter struct {
	last uint64
}

// NewCounter returns a counter whose first identity is start+1.
func NewCounter(start uint64) *Counter {
	return &Counter{last: start}
}

// Next returns the next identity.
func (c *Counter) Next() uint64 {
	c.last++
	return c.last
}

// Last returns the most recently issued identity.
func (c *Counter) Last() uint64 {
	return c.last
}
