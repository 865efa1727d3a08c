package main

import (
	"log/slog"
	"os"

	"github.com/leengari/hybrideval/internal/evaluator"
	"github.com/leengari/hybrideval/internal/logging"
	"github.com/leengari/hybrideval/internal/repl"
)

func main() {
	logger, closeFn := logging.SetupLogger()
	defer closeFn()
	slog.SetDefault(logger)

	session := evaluator.NewSession(repl.SampleTable())

	if os.Getenv("HYBRIDEVAL_TRACE") == "1" {
		session.AddObserver(evaluator.NewLoggingObserver())
	}

	// Start grouped by carrier so the demo shows per-group aggregation
	// immediately; 'ungroup' switches to whole-table evaluation.
	if err := session.GroupBy("carrier"); err != nil {
		logger.Error("failed to group sample table", "error", err)
		closeFn()
		os.Exit(1)
	}

	repl.Start(session)
}
