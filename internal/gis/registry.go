package gis

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hydrosift/watershed/internal/model"
)

// ToolBinding maps an algorithm identifier to a concrete toolkit tool and
// translates the engine-neutral parameter keys into command-line flags.
type ToolBinding struct {
	Algorithm model.AlgorithmID
	Library   string
	Tool      string
	// Flags maps parameter keys to command-line flag names
	Flags map[string]string
	// Outputs maps the parameter keys that name produced datasets to the
	// keys they are returned under in the result mapping
	Outputs map[string]string
}

// Args renders the command-line arguments for a parameter mapping. Flags are
// emitted in sorted order so invocations are deterministic.
func (b ToolBinding) Args(params map[string]string) ([]string, error) {
	args := []string{b.Library, b.Tool}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		flag, ok := b.Flags[key]
		if !ok {
			return nil, fmt.Errorf("no flag binding for parameter %s on algorithm %s", key, b.Algorithm)
		}
		args = append(args, fmt.Sprintf("-%s=%s", flag, params[key]))
	}

	return args, nil
}

// AlgorithmRegistry keeps track of the tool bindings available to the engine
type AlgorithmRegistry struct {
	bindings map[model.AlgorithmID]ToolBinding
	mutex    sync.RWMutex
}

// NewAlgorithmRegistry creates an empty algorithm registry
func NewAlgorithmRegistry() *AlgorithmRegistry {
	return &AlgorithmRegistry{
		bindings: make(map[model.AlgorithmID]ToolBinding),
	}
}

// Register adds a tool binding to the registry. Registering the same
// algorithm twice fails.
func (r *AlgorithmRegistry) Register(binding ToolBinding) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.bindings[binding.Algorithm]; exists {
		return false
	}

	r.bindings[binding.Algorithm] = binding
	return true
}

// Lookup returns the binding for an algorithm identifier
func (r *AlgorithmRegistry) Lookup(id model.AlgorithmID) (ToolBinding, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	binding, exists := r.bindings[id]
	return binding, exists
}

// Algorithms returns the registered algorithm identifiers in sorted order
func (r *AlgorithmRegistry) Algorithms() []model.AlgorithmID {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]model.AlgorithmID, 0, len(r.bindings))
	for id := range r.bindings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// DefaultRegistry returns the SAGA tool bindings for the delineation
// workflow. Tool numbers follow the SAGA command-line tool chooser.
func DefaultRegistry() *AlgorithmRegistry {
	registry := NewAlgorithmRegistry()

	registry.Register(ToolBinding{
		Algorithm: model.AlgFillSinks,
		Library:   "ta_preprocessor",
		Tool:      "4",
		Flags: map[string]string{
			model.ParamDEM:        "ELEV",
			model.ResultKeyResult: "FILLED",
		},
		Outputs: map[string]string{
			model.ResultKeyResult: model.ResultKeyResult,
		},
	})

	registry.Register(ToolBinding{
		Algorithm: model.AlgFlowDirection,
		Library:   "ta_channels",
		Tool:      "4",
		Flags: map[string]string{
			model.ParamElevation:     "ELEVATION",
			model.ResultKeyDirection: "DIRECTION",
		},
		Outputs: map[string]string{
			model.ResultKeyDirection: model.ResultKeyDirection,
		},
	})

	registry.Register(ToolBinding{
		Algorithm: model.AlgFlowAccumulation,
		Library:   "ta_hydrology",
		Tool:      "0",
		Flags: map[string]string{
			model.ParamDirection:        "SINKROUTE",
			model.ResultKeyAccumulation: "FLOW",
		},
		Outputs: map[string]string{
			model.ResultKeyAccumulation: model.ResultKeyAccumulation,
		},
	})

	registry.Register(ToolBinding{
		Algorithm: model.AlgStreamNetwork,
		Library:   "ta_channels",
		Tool:      "0",
		Flags: map[string]string{
			model.ParamInput:      "INIT_GRID",
			model.ParamThreshold:  "INIT_VALUE",
			model.ResultKeyOutput: "CHNLNTWRK",
		},
		Outputs: map[string]string{
			model.ResultKeyOutput: model.ResultKeyOutput,
		},
	})

	registry.Register(ToolBinding{
		Algorithm: model.AlgWatershedBasins,
		Library:   "ta_channels",
		Tool:      "1",
		Flags: map[string]string{
			model.ParamDirection:  "DIRECTION",
			model.ParamPoints:     "POINTS",
			model.ResultKeyBasins: "BASINS",
		},
		Outputs: map[string]string{
			model.ResultKeyBasins: model.ResultKeyBasins,
		},
	})

	registry.Register(ToolBinding{
		Algorithm: model.AlgZonalStatistics,
		Library:   "shapes_grid",
		Tool:      "2",
		Flags: map[string]string{
			model.ParamPolygons: "POLYGONS",
			model.ParamRaster:   "GRIDS",
			model.ParamPrefix:   "NAMING",
		},
		Outputs: map[string]string{
			model.ParamPolygons: model.ResultKeyStatistics,
		},
	})

	return registry
}
