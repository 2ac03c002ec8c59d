// Package sweep drives a two-stage channelizer pipeline with a swept
// complex tone and records the per-channel amplitude response.
//
// Each frequency in the sweep gets its own freshly constructed
// pipeline and oscillator, so the outer loop over frequencies has no
// shared mutable state and can run concurrently.
package sweep
