package main

import (
	"errors"
	"log/slog"
	"os"

	"doc-splitter/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		reportFailure(slog.Default(), err)
		os.Exit(1)
	}
}

// reportFailure logs err unless the run's logger already reported it.
func reportFailure(log *slog.Logger, err error) {
	if errors.Is(err, config.ErrInvalid) {
		return
	}
	log.Error("splitter failed", "err", err)
}
