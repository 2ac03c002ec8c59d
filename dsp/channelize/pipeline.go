package channelize

import "fmt"

// Pipeline couples one OSPFB with one Cascade into the full two-stage
// analysis path described by the channelizer: samples in, coarse
// channels via OSPFB, a selected subset re-analyzed into fine
// channels via Cascade.
type Pipeline struct {
	OSPFB   *OSPFB
	Cascade *Cascade
}

// NewPipeline builds a Pipeline from an already-constructed OSPFB and
// Cascade. The cascade's selected channel indices must be valid
// indices into the OSPFB's NChTotal() channels.
func NewPipeline(ospfb *OSPFB, cascade *Cascade) (*Pipeline, error) {
	for _, ch := range cascade.selected {
		if ch < 0 || ch >= ospfb.NChTotal() {
			return nil, fmt.Errorf("channelize: pipeline channel index %d out of range [0,%d)", ch, ospfb.NChTotal())
		}
	}

	return &Pipeline{OSPFB: ospfb, Cascade: cascade}, nil
}

// Analyze runs one signal block through the OSPFB and then the
// cascade, returning both the full coarse matrix and the fine
// cascade output.
func (p *Pipeline) Analyze(signal []complex128) (coarse, fine [][]complex128, err error) {
	coarse, err = p.OSPFB.Analyze(signal)
	if err != nil {
		return nil, nil, err
	}

	fine, err = p.Cascade.Analyze(coarse)
	if err != nil {
		return nil, nil, err
	}

	return coarse, fine, nil
}

// Reset clears both stages' state.
func (p *Pipeline) Reset() {
	p.OSPFB.Reset()
	p.Cascade.Reset()
}
