package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PfbConfig describes one stage's channel/tap/bandwidth parameters.
type PfbConfig struct {
	NCh       int     `yaml:"nch"`
	Tap       int     `yaml:"tap"`
	TapPerCh  int     `yaml:"tap_per_ch"`
	K         float64 `yaml:"k"`
}

func (c PfbConfig) taps() int {
	if c.Tap > 0 {
		return c.Tap
	}
	return c.TapPerCh
}

// TwoStageConfig is the YAML-loadable description of a full coarse +
// fine cascade pipeline.
type TwoStageConfig struct {
	Coarse                 PfbConfig `yaml:"coarse_cfg"`
	Fine                   PfbConfig `yaml:"fine_cfg"`
	SelectedCoarseChannels []int     `yaml:"selected_coarse_ch"`
}

// loadConfig reads and parses a TwoStageConfig from a YAML file.
func loadConfig(path string) (*TwoStageConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pfbsweep: reading config %s: %w", path, err)
	}

	var cfg TwoStageConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("pfbsweep: parsing config %s: %w", path, err)
	}

	if cfg.Coarse.NCh <= 0 || cfg.Coarse.taps() <= 0 {
		return nil, fmt.Errorf("pfbsweep: config %s: coarse_cfg is incomplete", path)
	}
	if cfg.Fine.NCh <= 0 || cfg.Fine.taps() <= 0 {
		return nil, fmt.Errorf("pfbsweep: config %s: fine_cfg is incomplete", path)
	}
	if len(cfg.SelectedCoarseChannels) == 0 {
		return nil, fmt.Errorf("pfbsweep: config %s: selected_coarse_ch is empty", path)
	}

	return &cfg, nil
}
