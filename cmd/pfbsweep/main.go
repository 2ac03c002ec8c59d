// Command pfbsweep measures the amplitude response of a two-stage
// polyphase channelizer cascade across a swept complex tone.
//
// Usage:
//
//	pfbsweep -cfg cascade.yaml -out response.txt
//	pfbsweep -cfg cascade.yaml -fmin -0.5 -fmax 0.5 -nfreq 256 -out response.txt
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-pfb/dsp/channelize"
	"github.com/cwbudde/algo-pfb/dsp/prototype"
	"github.com/cwbudde/algo-pfb/measure/sweep"
)

func main() {
	cfgPath := flag.String("cfg", "", "path to a two-stage YAML config (required)")
	fmin := flag.Float64("fmin", -1, "sweep start frequency, units of pi radians/sample")
	fmax := flag.Float64("fmax", 1, "sweep end frequency, units of pi radians/sample")
	nfreq := flag.Int("nfreq", 1024, "number of swept frequency points")
	niter := flag.Int("niter", 2, "iterations per frequency (all but the last are warm-up)")
	out := flag.String("out", "", "output file for the response table (required)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pfbsweep -cfg <path> -out <path> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Measures the amplitude response of a two-stage PFB cascade.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *cfgPath == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*cfgPath, *fmin, *fmax, *nfreq, *niter, *out); err != nil {
		log.Fatalf("pfbsweep: %v", err)
	}
}

func run(cfgPath string, fmin, fmax float64, nfreq, niter int, outPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	nchTotal := cfg.Coarse.NCh
	tapCoarse := cfg.Coarse.taps()
	nchFine := cfg.Fine.NCh
	tapFine := cfg.Fine.taps()
	m := nchFine * 2

	log.Printf("pfbsweep: building coarse prototype (nch=%d tap=%d k=%v)", nchTotal/2, tapCoarse, cfg.Coarse.K)
	coarseProto, err := prototype.Design(nchTotal/2, tapCoarse, cfg.Coarse.K)
	if err != nil {
		return fmt.Errorf("coarse prototype: %w", err)
	}

	log.Printf("pfbsweep: building fine prototype (nch=%d tap=%d k=%v)", m, tapFine, cfg.Fine.K)
	fineProto, err := prototype.Design(m, tapFine, cfg.Fine.K)
	if err != nil {
		return fmt.Errorf("fine prototype: %w", err)
	}

	selected := cfg.SelectedCoarseChannels
	blockLen := len(coarseProto) + len(fineProto)*(nchTotal/2)

	sweepCfg := sweep.Config{
		FMin:                   fmin,
		FMax:                   fmax,
		NFreq:                  nfreq,
		BlockLen:               blockLen,
		NIter:                  niter,
		SelectedCoarseChannels: selected,
		NewPipeline: func() (*channelize.Pipeline, error) {
			o, err := channelize.NewOSPFB(nchTotal, tapCoarse, coarseProto)
			if err != nil {
				return nil, err
			}
			c, err := channelize.NewCascade(selected, m, tapFine, fineProto)
			if err != nil {
				return nil, err
			}
			return channelize.NewPipeline(o, c)
		},
	}

	log.Printf("pfbsweep: sweeping %d frequencies in [%v, %v]*pi, block length %d", nfreq, fmin, fmax, blockLen)

	res, err := sweep.Run(sweepCfg)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output %s: %w", outPath, err)
	}
	defer f.Close()

	if err := writeTable(f, selected, res); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	log.Printf("pfbsweep: wrote %s", outPath)

	return nil
}

func writeTable(w *os.File, selected []int, res *sweep.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := "freq"
	for _, ch := range selected {
		header += fmt.Sprintf("\tcoarse[%d]", ch)
	}
	for i := range res.Fine[0] {
		header += fmt.Sprintf("\tfine[%d]", i)
	}
	if _, err := fmt.Fprintln(tw, header); err != nil {
		return err
	}

	for i, f := range res.Freq {
		row := fmt.Sprintf("%.6f", f)
		for _, v := range res.Coarse[i] {
			row += fmt.Sprintf("\t%.9g", v)
		}
		for _, v := range res.Fine[i] {
			row += fmt.Sprintf("\t%.9g", v)
		}
		if _, err := fmt.Fprintln(tw, row); err != nil {
			return err
		}
	}

	return tw.Flush()
}
