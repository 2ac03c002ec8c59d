// Package oscillator provides the minimal complex-exponential generators
// used by the channelizer core: a constant-step phasor and a precomputed
// half-channel frequency shifter.
package oscillator

import "math"

// Phasor generates e^{i(phi0 + n*dphi)} for n = 0, 1, 2, ...
//
// Phase is tracked directly rather than recomputed from n on every call,
// so successive calls remain phase-continuous across arbitrarily many
// Next invocations without accumulating floating point error from a
// growing n.
type Phasor struct {
	phi  float64
	dphi float64
}

// NewPhasor returns a Phasor starting at phi0 with phase increment dphi
// radians per sample.
func NewPhasor(phi0, dphi float64) *Phasor {
	return &Phasor{phi: phi0, dphi: dphi}
}

// Next returns the current phasor value and advances the phase.
func (p *Phasor) Next() complex128 {
	v := complex(math.Cos(p.phi), math.Sin(p.phi))
	p.phi += p.dphi
	if p.phi > math.Pi {
		p.phi -= 2 * math.Pi
	} else if p.phi < -math.Pi {
		p.phi += 2 * math.Pi
	}
	return v
}

// Fill writes n consecutive phasor values into dst, which must have
// length n.
func (p *Phasor) Fill(dst []complex128) {
	for i := range dst {
		dst[i] = p.Next()
	}
}

// Reset sets the phase back to phi0 and the step to dphi.
func (p *Phasor) Reset(phi0, dphi float64) {
	p.phi = phi0
	p.dphi = dphi
}
