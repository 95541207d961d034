package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hydrosift/watershed/internal/gis"
	"github.com/hydrosift/watershed/internal/model"
	"github.com/hydrosift/watershed/internal/report"
	"github.com/hydrosift/watershed/internal/stats"
)

// Fixed artifact names inside the configured output directory
const (
	FilledDEMFile        = "filled_dem.tif"
	FlowDirectionFile    = "flow_direction.tif"
	FlowAccumulationFile = "flow_accumulation.tif"
	StreamNetworkFile    = "stream_network.tif"
	WatershedsFile       = "watersheds.shp"
	StatisticsFile       = "watershed_statistics.txt"
)

// RunSpec carries the inputs of a single pipeline run. It is immutable once
// the run starts.
type RunSpec struct {
	DEMPath         string  `json:"dem_path"`
	PourPointsPath  string  `json:"pour_points_path"`
	OutputDir       string  `json:"output_dir"`
	StreamThreshold float64 `json:"stream_threshold"`
}

// stageOrder is the fixed execution sequence. Control flow is strictly
// linear: no branching, no retries, no parallel stages.
var stageOrder = []model.StageID{
	model.StageLoadDEM,
	model.StageLoadPourPoints,
	model.StageFillSinks,
	model.StageFlowDirection,
	model.StageFlowAccumulation,
	model.StageStreamNetwork,
	model.StageWatershedBasins,
	model.StageStatistics,
}

// stageDeps declares which earlier stages each stage consumes output from
var stageDeps = map[model.StageID][]model.StageID{
	model.StageFillSinks:        {model.StageLoadDEM},
	model.StageFlowDirection:    {model.StageFillSinks},
	model.StageFlowAccumulation: {model.StageFlowDirection},
	model.StageStreamNetwork:    {model.StageFlowAccumulation},
	model.StageWatershedBasins:  {model.StageFlowDirection, model.StageLoadPourPoints},
	model.StageStatistics:       {model.StageWatershedBasins, model.StageLoadDEM},
}

// Driver executes the fixed eight-step delineation sequence, passing each
// stage's output path as the next stage's input.
type Driver struct {
	engine     gis.Engine
	aggregator *stats.Aggregator
	reporter   *report.Writer
	publisher  model.EventPublisher
	log        zerolog.Logger
}

// NewDriver creates a pipeline driver. The declared stage sequence is
// validated against the stage dependency graph: the graph must be acyclic
// and every dependency must come earlier in the sequence.
func NewDriver(engine gis.Engine, aggregator *stats.Aggregator, reporter *report.Writer, publisher model.EventPublisher, log zerolog.Logger) (*Driver, error) {
	if engine == nil {
		return nil, errors.New("engine must be set")
	}
	if aggregator == nil {
		return nil, errors.New("aggregator must be set")
	}
	if reporter == nil {
		return nil, errors.New("reporter must be set")
	}

	if err := validateStageGraph(); err != nil {
		return nil, errors.Wrap(err, "stage graph")
	}

	return &Driver{
		engine:     engine,
		aggregator: aggregator,
		reporter:   reporter,
		publisher:  publisher,
		log:        log.With().Str("component", "pipeline_driver").Logger(),
	}, nil
}

// validateStageGraph builds the stage dependency graph and confirms the
// fixed execution order respects it
func validateStageGraph() error {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	for _, id := range stageOrder {
		if err := g.AddVertex(string(id)); err != nil {
			return errors.Wrapf(err, "add stage %s", id)
		}
	}
	for stage, deps := range stageDeps {
		for _, dep := range deps {
			if err := g.AddEdge(string(dep), string(stage)); err != nil {
				return errors.Wrapf(err, "add dependency %s -> %s", dep, stage)
			}
		}
	}

	if _, err := graph.TopologicalSort(g); err != nil {
		return errors.Wrap(err, "topological sort")
	}

	position := make(map[model.StageID]int, len(stageOrder))
	for i, id := range stageOrder {
		position[id] = i
	}
	for stage, deps := range stageDeps {
		for _, dep := range deps {
			if position[dep] >= position[stage] {
				return errors.Errorf("stage %s runs before its dependency %s", stage, dep)
			}
		}
	}

	return nil
}

// Stages returns the fixed execution sequence
func Stages() []model.StageID {
	out := make([]model.StageID, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// Run executes the full delineation workflow. The first error at any stage
// aborts the remaining stages, is logged with stage context, and propagates
// to the caller. Pre-existing artifacts in the output directory are silently
// overwritten.
func (d *Driver) Run(ctx context.Context, spec RunSpec) (*model.RunResult, error) {
	d.publish(model.EventRunStarted, spec)
	d.log.Info().
		Str("dem", spec.DEMPath).
		Str("pour_points", spec.PourPointsPath).
		Str("output_dir", spec.OutputDir).
		Float64("threshold", spec.StreamThreshold).
		Msg("starting watershed delineation")

	// Both inputs are validated before any geoprocessing call is made.
	d.stageStarted(model.StageLoadDEM)
	dem, err := gis.OpenRaster(spec.DEMPath)
	if err != nil {
		return nil, d.fail(model.StageLoadDEM, spec.DEMPath, err)
	}
	d.stageCompleted(model.StageLoadDEM, dem.Path)

	d.stageStarted(model.StageLoadPourPoints)
	points, err := gis.OpenShapefile(spec.PourPointsPath)
	if err != nil {
		return nil, d.fail(model.StageLoadPourPoints, spec.PourPointsPath, err)
	}
	d.stageCompleted(model.StageLoadPourPoints, points.Path())

	if err := os.MkdirAll(spec.OutputDir, 0o755); err != nil {
		err = errors.Wrapf(err, "create output directory %s", spec.OutputDir)
		d.log.Error().Err(err).Msg("run aborted")
		d.publish(model.EventError, err)
		return nil, err
	}

	filledDEM := filepath.Join(spec.OutputDir, FilledDEMFile)
	flowDirection := filepath.Join(spec.OutputDir, FlowDirectionFile)
	flowAccumulation := filepath.Join(spec.OutputDir, FlowAccumulationFile)
	streamNetwork := filepath.Join(spec.OutputDir, StreamNetworkFile)
	watersheds := filepath.Join(spec.OutputDir, WatershedsFile)
	reportPath := filepath.Join(spec.OutputDir, StatisticsFile)

	filledDEM, err = d.runGeoprocessing(ctx, model.StageFillSinks, model.FillSinksRequest{
		DEM:    dem.Path,
		Result: filledDEM,
	}, model.ResultKeyResult)
	if err != nil {
		return nil, err
	}

	flowDirection, err = d.runGeoprocessing(ctx, model.StageFlowDirection, model.FlowDirectionRequest{
		Elevation: filledDEM,
		Direction: flowDirection,
	}, model.ResultKeyDirection)
	if err != nil {
		return nil, err
	}

	flowAccumulation, err = d.runGeoprocessing(ctx, model.StageFlowAccumulation, model.FlowAccumulationRequest{
		Direction:    flowDirection,
		Accumulation: flowAccumulation,
	}, model.ResultKeyAccumulation)
	if err != nil {
		return nil, err
	}

	streamNetwork, err = d.runGeoprocessing(ctx, model.StageStreamNetwork, model.StreamNetworkRequest{
		Accumulation: flowAccumulation,
		Threshold:    spec.StreamThreshold,
		Output:       streamNetwork,
	}, model.ResultKeyOutput)
	if err != nil {
		return nil, err
	}

	watersheds, err = d.runGeoprocessing(ctx, model.StageWatershedBasins, model.WatershedBasinsRequest{
		Direction: flowDirection,
		Points:    points.Path(),
		Basins:    watersheds,
	}, model.ResultKeyBasins)
	if err != nil {
		return nil, err
	}

	d.stageStarted(model.StageStatistics)
	statistics, err := d.aggregator.Aggregate(ctx, watersheds, dem.Path)
	if err != nil {
		return nil, d.fail(model.StageStatistics, watersheds, &model.StageExecutionError{Stage: model.StageStatistics, Err: err})
	}
	if err := d.reporter.Write(reportPath, statistics); err != nil {
		return nil, d.fail(model.StageStatistics, reportPath, &model.StageExecutionError{Stage: model.StageStatistics, Err: err})
	}
	d.stageCompleted(model.StageStatistics, reportPath)

	result := &model.RunResult{
		Artifacts: map[model.StageID]string{
			model.StageFillSinks:        filledDEM,
			model.StageFlowDirection:    flowDirection,
			model.StageFlowAccumulation: flowAccumulation,
			model.StageStreamNetwork:    streamNetwork,
			model.StageWatershedBasins:  watersheds,
			model.StageStatistics:       reportPath,
		},
		Statistics: statistics,
		ReportPath: reportPath,
	}

	d.publish(model.EventRunCompleted, result)
	d.log.Info().Str("output_dir", spec.OutputDir).Msg("watershed delineation completed")

	return result, nil
}

// runGeoprocessing executes one delegated engine operation and validates the
// artifact it claims to have produced before the next stage may consume it
func (d *Driver) runGeoprocessing(ctx context.Context, stage model.StageID, req model.AlgorithmRequest, resultKey string) (string, error) {
	d.stageStarted(stage)
	d.log.Info().Str("stage", string(stage)).Msg("running stage")

	results, err := d.engine.Run(ctx, req)
	if err != nil {
		return "", d.fail(stage, "", &model.StageExecutionError{Stage: stage, Err: err})
	}

	output, ok := results[resultKey]
	if !ok {
		return "", d.fail(stage, "", &model.StageExecutionError{
			Stage: stage,
			Err:   errors.Errorf("engine returned no %s output", resultKey),
		})
	}

	if err := validateArtifact(output); err != nil {
		return "", d.fail(stage, output, err)
	}

	d.stageCompleted(stage, output)
	return output, nil
}

// validateArtifact checks a produced dataset with the loader matching its
// format hint
func validateArtifact(path string) error {
	if filepath.Ext(path) == ".shp" {
		_, err := gis.OpenShapefile(path)
		return err
	}
	_, err := gis.OpenRaster(path)
	return err
}

// fail logs a stage failure with context and publishes it before returning
// the error unchanged
func (d *Driver) fail(stage model.StageID, path string, err error) error {
	d.log.Error().
		Str("stage", string(stage)).
		Str("path", path).
		Err(err).
		Msg("stage failed")
	d.publish(model.EventError, err)
	return err
}

func (d *Driver) stageStarted(stage model.StageID) {
	d.publish(model.EventStageStarted, stage)
}

func (d *Driver) stageCompleted(stage model.StageID, output string) {
	d.log.Info().Str("stage", string(stage)).Str("output", output).Msg("stage completed")
	d.publish(model.EventStageCompleted, stage)
}

func (d *Driver) publish(eventType model.EventType, data interface{}) {
	if d.publisher == nil {
		return
	}
	d.publisher.Publish(model.NewEvent(eventType, "pipeline_driver", data))
}
