package channelize

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-pfb/dsp/prototype"
	"github.com/cwbudde/algo-pfb/internal/testutil"
)

func designOrFatal(t *testing.T, nch, tap int, k float64) []float64 {
	t.Helper()
	c, err := prototype.Design(nch, tap, k)
	if err != nil {
		t.Fatalf("prototype.Design: %v", err)
	}
	return c
}

// S1: zero input vector of length N through CSPFB gives an N x 1
// matrix of zeros.
func TestS1_CSPFBZeroInput(t *testing.T) {
	const n, tap = 8, 4
	proto := designOrFatal(t, n, tap, 1.1)
	c, err := NewCSPFBReal(n, tap, proto)
	if err != nil {
		t.Fatalf("NewCSPFBReal: %v", err)
	}

	out, err := c.Analyze(make([]float64, n))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(out) != n || len(out[0]) != 1 {
		t.Fatalf("shape = %dx%d, want %dx1", len(out), len(out[0]), n)
	}
	for ch := range out {
		for _, v := range out[ch] {
			if v != 0 {
				t.Fatalf("channel %d: got %v, want 0", ch, v)
			}
		}
	}
}

// S2: an impulse followed by zeros yields per-tap polyphase branch
// contributions in the first two output columns, and near-silence
// afterward.
func TestS2_CSPFBImpulseResponse(t *testing.T) {
	const n, tap = 8, 4
	proto := designOrFatal(t, n, tap, 1.1)
	c, err := NewCSPFBReal(n, tap, proto)
	if err != nil {
		t.Fatalf("NewCSPFBReal: %v", err)
	}

	signal := make([]float64, 24)
	signal[0] = 1

	out, err := c.Analyze(signal)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(out[0]) < 3 {
		t.Fatalf("expected >= 3 columns, got %d", len(out[0]))
	}

	var col2Energy float64
	for ch := range out {
		col2Energy += math.Pow(cmplx.Abs(out[ch][2]), 2)
	}
	if col2Energy > 1e-6 {
		t.Errorf("|column 2| energy = %v, want ~0", col2Energy)
	}
}

// S3: OSPFB with a single complex tone concentrates >= 99% of output
// energy (after discarding the first tap columns) in one channel.
func TestS3_OSPFBChannelDoubling(t *testing.T) {
	const nchTotal, tap = 32, 16
	n := nchTotal / 2
	proto := designOrFatal(t, n, tap, 1.1)

	o, err := NewOSPFB(nchTotal, tap, proto)
	if err != nil {
		t.Fatalf("NewOSPFB: %v", err)
	}

	const numSamples = 65536
	signal := testutil.DeterministicTone(math.Pi/8, numSamples)

	out, err := o.Analyze(signal)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(out) != nchTotal {
		t.Fatalf("rows = %d, want %d", len(out), nchTotal)
	}

	energy := make([]float64, nchTotal)
	var total float64
	for ch := range out {
		cols := out[ch]
		if len(cols) <= tap {
			t.Fatalf("not enough output columns (%d) to discard %d warm-up columns", len(cols), tap)
		}
		for _, v := range cols[tap:] {
			e := math.Pow(cmplx.Abs(v), 2)
			energy[ch] += e
			total += e
		}
	}

	maxCh, maxE := 0, 0.0
	for ch, e := range energy {
		if e > maxE {
			maxE = e
			maxCh = ch
		}
	}

	want := 18 // N_total*(1/8)/2 + N_total/2 = 32/16 + 16 = 2+16
	if maxCh != want {
		t.Errorf("loudest channel = %d, want %d", maxCh, want)
	}
	if maxE/total < 0.99 {
		t.Errorf("loudest channel energy fraction = %v, want >= 0.99", maxE/total)
	}
}

// S4: cascade on zero coarse input produces an all-zero (3*M/2) x D
// matrix after warm-up.
func TestS4_CascadeZeroInput(t *testing.T) {
	const nchTotal, tapCoarse = 32, 16
	const nchFine, tapFine = 32, 16
	m := nchFine * 2

	coarseProto := designOrFatal(t, nchTotal/2, tapCoarse, 1.1)
	fineProto := designOrFatal(t, m, tapFine, 1.1)

	o, err := NewOSPFB(nchTotal, tapCoarse, coarseProto)
	if err != nil {
		t.Fatalf("NewOSPFB: %v", err)
	}

	selected := []int{15, 16, 17}
	cascade, err := NewCascade(selected, m, tapFine, fineProto)
	if err != nil {
		t.Fatalf("NewCascade: %v", err)
	}

	p, err := NewPipeline(o, cascade)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	signal := make([]complex128, 8192)
	_, fine, err := p.Analyze(signal)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	wantRows := len(selected) * m / 2
	if len(fine) != wantRows {
		t.Fatalf("rows = %d, want %d", len(fine), wantRows)
	}

	const warmup = 20
	for ch := range fine {
		cols := fine[ch]
		if len(cols) <= warmup {
			continue
		}
		for _, v := range cols[warmup:] {
			if cmplx.Abs(v) > 1e-9 {
				t.Fatalf("channel %d: got %v after warm-up, want ~0", ch, v)
			}
		}
	}
}

// S6: CS-PFB columns 0 and 1 are bit-identical whether 16 samples are
// fed in one call or split across two calls.
func TestS6_StreamingEquivalence(t *testing.T) {
	const n, tap = 8, 4
	proto := designOrFatal(t, n, tap, 1.1)

	signal := make([]float64, 16)
	for i := range signal {
		signal[i] = math.Sin(float64(i) * 0.3)
	}

	cWhole, _ := NewCSPFBReal(n, tap, proto)
	whole, err := cWhole.Analyze(signal)
	if err != nil {
		t.Fatalf("Analyze whole: %v", err)
	}

	cSplit, _ := NewCSPFBReal(n, tap, proto)
	part1, err := cSplit.Analyze(signal[:7])
	if err != nil {
		t.Fatalf("Analyze part1: %v", err)
	}
	part2, err := cSplit.Analyze(signal[7:])
	if err != nil {
		t.Fatalf("Analyze part2: %v", err)
	}

	split := make([][]complex128, n)
	for ch := range split {
		split[ch] = append(append([]complex128{}, part1[ch]...), part2[ch]...)
	}

	for ch := 0; ch < n; ch++ {
		for col := 0; col < 2; col++ {
			if whole[ch][col] != split[ch][col] {
				t.Fatalf("channel %d column %d: whole=%v split=%v", ch, col, whole[ch][col], split[ch][col])
			}
		}
	}
}

func TestFFTShiftInvolution(t *testing.T) {
	rows := make([][]complex128, 8)
	for i := range rows {
		rows[i] = []complex128{complex(float64(i), 0)}
	}

	once := fftshiftRows(rows)
	twice := fftshiftRows(once)

	for i := range rows {
		if twice[i][0] != rows[i][0] {
			t.Fatalf("row %d: fftshift(fftshift(x)) = %v, want %v", i, twice[i][0], rows[i][0])
		}
	}
}

func TestFFTShiftPanicsOnOddRows(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on odd row count")
		}
	}()
	fftshiftRows(make([][]complex128, 7))
}

func TestCascadeRejectsBadWidth(t *testing.T) {
	_, err := NewCascade([]int{0}, 5, 4, make([]float64, 5*4))
	if err == nil {
		t.Fatal("expected error for M not divisible by 4")
	}
}

func TestOSPFBRejectsOddChannelCount(t *testing.T) {
	_, err := NewOSPFB(15, 4, make([]float64, 7*4))
	if err == nil {
		t.Fatal("expected error for odd nchTotal")
	}
}

func TestCSPFB_EnergyOnBinSelectivity(t *testing.T) {
	const n, tap = 16, 8
	proto := designOrFatal(t, n, tap, 1.0)
	c, err := NewCSPFBComplex(n, tap, proto)
	if err != nil {
		t.Fatalf("NewCSPFBComplex: %v", err)
	}

	const k = 3
	const samples = 4096
	signal := testutil.DeterministicTone(2*math.Pi*float64(k)/float64(n), samples)

	out, err := c.Analyze(signal)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	energy := make([]float64, n)
	for ch := range out {
		for _, v := range out[ch][tap:] {
			energy[ch] += math.Pow(cmplx.Abs(v), 2)
		}
	}

	onBin := energy[k]
	maxOther := 0.0
	for ch, e := range energy {
		if ch == k {
			continue
		}
		if e > maxOther {
			maxOther = e
		}
	}

	if maxOther == 0 {
		return
	}

	dB := 10 * math.Log10(onBin/maxOther)
	if dB < 40 {
		t.Errorf("on-bin selectivity = %.1f dB, want >= 40 dB", dB)
	}
}
