package sweep

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-pfb/dsp/channelize"
	"github.com/cwbudde/algo-pfb/dsp/oscillator"
	"github.com/cwbudde/algo-pfb/dsp/spectrum"
)

// Errors returned by Config.Validate.
var (
	ErrFrequencyOrder  = errors.New("sweep: FMin must be less than FMax")
	ErrTooFewFreqs     = errors.New("sweep: NFreq must be >= 2")
	ErrInvalidBlockLen = errors.New("sweep: BlockLen must be > 0")
	ErrInvalidIter     = errors.New("sweep: NIter must be >= 1")
	ErrNoFactory       = errors.New("sweep: NewPipeline must be set")
)

// PipelineFactory builds a fresh, independently stateful Pipeline.
// Run calls this once per frequency so the outer sweep loop has no
// shared mutable state between goroutines.
type PipelineFactory func() (*channelize.Pipeline, error)

// Config parameterizes an amplitude-response sweep.
type Config struct {
	// FMin, FMax bound the swept frequency range in units of pi
	// radians/sample (e.g. FMin=-1, FMax=1 spans the full baseband).
	FMin, FMax float64
	// NFreq is the number of frequency points, evenly spaced over
	// [FMin, FMax].
	NFreq int
	// BlockLen is the number of complex samples generated per
	// iteration.
	BlockLen int
	// NIter is the number of iterations run per frequency; all but
	// the last are discarded cold-start flushing iterations.
	NIter int
	// SelectedCoarseChannels names which OSPFB coarse channel indices
	// to report energy for (independent of, but normally identical
	// to, the cascade's own selected channels).
	SelectedCoarseChannels []int
	// NewPipeline constructs one fresh Pipeline per frequency.
	NewPipeline PipelineFactory
}

// Validate checks that the Config's parameters are usable.
func (c *Config) Validate() error {
	if c.FMin >= c.FMax {
		return ErrFrequencyOrder
	}
	if c.NFreq < 2 {
		return ErrTooFewFreqs
	}
	if c.BlockLen <= 0 {
		return ErrInvalidBlockLen
	}
	if c.NIter < 1 {
		return ErrInvalidIter
	}
	if c.NewPipeline == nil {
		return ErrNoFactory
	}
	return nil
}

// Result holds the per-frequency amplitude response.
type Result struct {
	// Freq holds the n_freq swept frequencies, in units of pi
	// radians/sample.
	Freq []float64
	// Coarse holds, for each frequency, the summed squared magnitude
	// of each selected coarse channel's time-axis output on the final
	// iteration: shape n_freq x len(SelectedCoarseChannels).
	Coarse [][]float64
	// Fine holds, for each frequency, the summed squared magnitude of
	// each cascade output row on the final iteration: shape
	// n_freq x cascade.OutputRows().
	Fine [][]float64
}

// Run sweeps a complex tone across cfg.NFreq frequencies in
// [cfg.FMin, cfg.FMax]*pi, building one independent pipeline per
// frequency and running them concurrently.
func Run(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		Freq:   make([]float64, cfg.NFreq),
		Coarse: make([][]float64, cfg.NFreq),
		Fine:   make([][]float64, cfg.NFreq),
	}

	step := (cfg.FMax - cfg.FMin) / float64(cfg.NFreq-1)

	var g errgroup.Group
	for i := 0; i < cfg.NFreq; i++ {
		i := i
		freq := cfg.FMin + float64(i)*step

		g.Go(func() error {
			coarseE, fineE, err := runOne(cfg, freq)
			if err != nil {
				return fmt.Errorf("sweep: frequency index %d (f=%v): %w", i, freq, err)
			}
			res.Freq[i] = freq
			res.Coarse[i] = coarseE
			res.Fine[i] = fineE
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return res, nil
}

func runOne(cfg Config, freq float64) (coarseEnergy, fineEnergy []float64, err error) {
	pipe, err := cfg.NewPipeline()
	if err != nil {
		return nil, nil, fmt.Errorf("building pipeline: %w", err)
	}

	osc := oscillator.NewPhasor(0, math.Pi*freq)
	signal := make([]complex128, cfg.BlockLen)

	for iter := 0; iter < cfg.NIter; iter++ {
		osc.Fill(signal)

		coarse, fine, err := pipe.Analyze(signal)
		if err != nil {
			return nil, nil, fmt.Errorf("analyze iteration %d: %w", iter, err)
		}

		if iter != cfg.NIter-1 {
			continue
		}

		coarseEnergy = make([]float64, len(cfg.SelectedCoarseChannels))
		for j, ch := range cfg.SelectedCoarseChannels {
			if ch < 0 || ch >= len(coarse) {
				return nil, nil, fmt.Errorf("coarse channel index %d out of range [0,%d)", ch, len(coarse))
			}
			coarseEnergy[j] = sumPower(coarse[ch])
		}

		fineEnergy = make([]float64, len(fine))
		for r := range fine {
			fineEnergy[r] = sumPower(fine[r])
		}
	}

	return coarseEnergy, fineEnergy, nil
}

// sumPower returns the sum, over the time axis, of |x[n]|^2.
func sumPower(row []complex128) float64 {
	var total float64
	for _, p := range spectrum.Power(row) {
		total += p
	}
	return total
}
