package oscillator

import "math"

// HalfBinShifter produces the cyclic factor sequence e^{±i*pi*n/nch}
// for n = 0, 1, 2, ..., a frequency shift of half a channel spacing whose
// sign is chosen by NewHalfBinShifter's upward flag. The
// sequence has period 2*nch, so the full table is precomputed once and
// indexed by a running counter modulo 2*nch rather than recomputed sample
// by sample.
type HalfBinShifter struct {
	table []complex128
	idx   int
}

// NewHalfBinShifter builds a shifter for nch channels. upward selects the
// sign of the shift: upward=true yields e^{+i*pi*n/nch}, upward=false
// yields e^{-i*pi*n/nch}.
func NewHalfBinShifter(nch int, upward bool) *HalfBinShifter {
	if nch <= 0 {
		panic("oscillator: NewHalfBinShifter requires nch > 0")
	}

	period := 2 * nch
	sign := -1.0
	if upward {
		sign = 1.0
	}

	dphi := sign * math.Pi / float64(nch)
	table := make([]complex128, period)
	phi := 0.0

	for n := range table {
		table[n] = complex(math.Cos(phi), math.Sin(phi))
		phi += dphi
	}

	return &HalfBinShifter{table: table}
}

// Next returns the next factor in the cyclic sequence and advances the
// internal counter.
func (h *HalfBinShifter) Next() complex128 {
	v := h.table[h.idx]
	h.idx++

	if h.idx >= len(h.table) {
		h.idx = 0
	}

	return v
}

// Period returns the length of the cyclic factor table (2*nch).
func (h *HalfBinShifter) Period() int {
	return len(h.table)
}

// Reset rewinds the shifter to its initial phase.
func (h *HalfBinShifter) Reset() {
	h.idx = 0
}
