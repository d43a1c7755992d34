package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"gradebench/internal/backend"
	"gradebench/internal/evaluate"
	"gradebench/internal/runner"
	"gradebench/internal/spec"
	"gradebench/internal/ui/live"
)

// modelBackend is the backend surface the run command needs.
type modelBackend interface {
	backend.Backend
	HasModel(ctx context.Context) (bool, error)
}

// liveUI is a run observer that owns the terminal until closed.
type liveUI interface {
	runner.RunObserver
	Close()
	Wait()
}

// newBackend is a test seam for the model backend.
var newBackend = func(cfg spec.BackendConfig, logger *zerolog.Logger) modelBackend {
	return backend.NewOpenAI(cfg, logger)
}

// newEmbedder is a test seam for the embeddings client.
var newEmbedder = func(cfg spec.BackendConfig) evaluate.Embedder {
	return backend.NewOpenAIEmbedder(cfg)
}

// startLiveUI is a test seam for the live table.
var startLiveUI = func(stdout io.Writer) liveUI {
	return live.Start(stdout, live.Options{})
}

// runDeps is a test seam for run ids and clocks.
var runDeps runner.RunDependencies

// commandContext returns the context commands run under. It is cancelled on
// SIGINT or SIGTERM.
var commandContext = func() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
