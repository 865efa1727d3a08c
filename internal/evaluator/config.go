package evaluator

import (
	"os"
	"runtime"
)

// EvalConfig holds evaluation parameters
type EvalConfig struct {
	Parallel   bool // compute independent chunks of a grouped pass concurrently
	MaxWorkers int  // upper bound on concurrent chunk computations
}

// DefaultEvalConfig returns default configuration. The parallel grouped path
// is opt-in, via config or the HYBRIDEVAL_PARALLEL environment variable.
func DefaultEvalConfig() *EvalConfig {
	cfg := &EvalConfig{
		Parallel:   false,
		MaxWorkers: runtime.NumCPU(),
	}
	if os.Getenv("HYBRIDEVAL_PARALLEL") == "1" {
		cfg.Parallel = true
	}
	return cfg
}
