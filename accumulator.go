package uvpaint

// MaxBrushCount is the maximum number of live stamps. Reaching it flattens the canvas.
const MaxBrushCount = 10000

// Accumulator keeps the stamps placed since the last flatten, in the order they were added.
type Accumulator struct {
	stamps []Stamp
	gen    uint64 // incremented on every Clear
}

// NewAccumulator returns an empty stamp accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add appends a stamp. The caller is responsible for the capacity check.
func (a *Accumulator) Add(s Stamp) {
	a.stamps = append(a.stamps, s)
}

// Count returns the number of live stamps.
func (a *Accumulator) Count() int {
	return len(a.stamps)
}

// Clear removes every stamp.
func (a *Accumulator) Clear() {
	clear(a.stamps)
	a.stamps = a.stamps[:0]
	a.gen++
}

// Stamps returns the live stamps in add order. The slice must not be modified.
func (a *Accumulator) Stamps() []Stamp {
	return a.stamps
}

// Generation changes every time the accumulator is cleared.
func (a *Accumulator) Generation() uint64 {
	return a.gen
}
