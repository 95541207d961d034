package gis

import (
	"context"
	"os"
	"os/exec"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hydrosift/watershed/internal/model"
)

// SAGAEngine delegates geoprocessing operations to the SAGA command-line
// toolkit. Each Run is a single blocking saga_cmd invocation; no retries,
// no timeouts beyond context cancellation.
type SAGAEngine struct {
	session  *Session
	registry *AlgorithmRegistry
	log      zerolog.Logger
	// runCommand is swappable so tests can intercept tool invocations
	runCommand func(ctx context.Context, bin string, args []string) ([]byte, error)
}

// NewSAGAEngine creates a SAGA-backed engine bound to an acquired session
func NewSAGAEngine(session *Session, log zerolog.Logger) *SAGAEngine {
	return &SAGAEngine{
		session:  session,
		registry: DefaultRegistry(),
		log:      log.With().Str("component", "saga_engine").Logger(),
		runCommand: func(ctx context.Context, bin string, args []string) ([]byte, error) {
			return exec.CommandContext(ctx, bin, args...).CombinedOutput()
		},
	}
}

// Has reports whether the engine supports an optional capability
func (e *SAGAEngine) Has(capability Capability) bool {
	switch capability {
	case CapZonalStatistics:
		_, ok := e.registry.Lookup(model.AlgZonalStatistics)
		return ok
	default:
		return false
	}
}

// Run executes a single geoprocessing operation. The produced output paths
// are verified to exist and be non-empty before they are returned; a tool
// that succeeds without producing its outputs is still a failure.
func (e *SAGAEngine) Run(ctx context.Context, req model.AlgorithmRequest) (Results, error) {
	if !e.session.Active() {
		return nil, errors.New("engine session has been released")
	}

	binding, ok := e.registry.Lookup(req.Algorithm())
	if !ok {
		return nil, errors.Errorf("unknown algorithm: %s", req.Algorithm())
	}

	params := req.Params()
	args, err := binding.Args(params)
	if err != nil {
		return nil, errors.Wrap(err, "marshal parameters")
	}

	e.log.Debug().
		Str("algorithm", string(req.Algorithm())).
		Strs("args", args).
		Msg("running geoprocessing tool")

	out, err := e.runCommand(ctx, e.session.BinPath(), args)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s: %s", binding.Library, binding.Tool, out)
	}

	results := make(Results, len(binding.Outputs))
	for param, key := range binding.Outputs {
		path := params[param]
		info, statErr := os.Stat(path)
		if statErr != nil {
			return nil, errors.Wrapf(statErr, "algorithm %s produced no usable output at %s", req.Algorithm(), path)
		}
		if info.Size() == 0 {
			return nil, errors.Errorf("algorithm %s produced an empty output at %s", req.Algorithm(), path)
		}
		results[key] = path
	}

	return results, nil
}
