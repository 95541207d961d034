package model

import "time"

// ComponentStatus represents the current status of a component
type ComponentStatus string

const (
	// StatusUninitialized indicates the component has not been initialized
	StatusUninitialized ComponentStatus = "UNINITIALIZED"
	// StatusInitialized indicates the component has been initialized but not started
	StatusInitialized ComponentStatus = "INITIALIZED"
	// StatusRunning indicates the component is currently running
	StatusRunning ComponentStatus = "RUNNING"
	// StatusStopped indicates the component has been stopped
	StatusStopped ComponentStatus = "STOPPED"
	// StatusError indicates the component is in an error state
	StatusError ComponentStatus = "ERROR"
)

// StageID identifies a single step of the delineation workflow
type StageID string

const (
	// StageLoadDEM validates the input elevation raster
	StageLoadDEM StageID = "load_dem"
	// StageLoadPourPoints validates the input pour point layer
	StageLoadPourPoints StageID = "load_pour_points"
	// StageFillSinks removes spurious depressions from the DEM
	StageFillSinks StageID = "fill_sinks"
	// StageFlowDirection derives per-cell downslope directions
	StageFlowDirection StageID = "flow_direction"
	// StageFlowAccumulation derives per-cell contributing area
	StageFlowAccumulation StageID = "flow_accumulation"
	// StageStreamNetwork extracts the stream raster above a threshold
	StageStreamNetwork StageID = "stream_network"
	// StageWatershedBasins delineates one basin polygon per pour point
	StageWatershedBasins StageID = "watershed_basins"
	// StageStatistics aggregates per-watershed statistics and writes the report
	StageStatistics StageID = "statistics"
)

// AlgorithmID identifies a geoprocessing operation delegated to the engine
type AlgorithmID string

const (
	// AlgFillSinks fills depressions in an elevation raster
	AlgFillSinks AlgorithmID = "fill_sinks"
	// AlgFlowDirection computes a flow direction raster
	AlgFlowDirection AlgorithmID = "flow_direction"
	// AlgFlowAccumulation computes a flow accumulation raster
	AlgFlowAccumulation AlgorithmID = "flow_accumulation"
	// AlgStreamNetwork thresholds flow accumulation into a stream raster
	AlgStreamNetwork AlgorithmID = "stream_network"
	// AlgWatershedBasins delineates basin polygons from pour points
	AlgWatershedBasins AlgorithmID = "watershed_basins"
	// AlgZonalStatistics aggregates raster values within polygon zones
	AlgZonalStatistics AlgorithmID = "zonal_statistics"
)

// EventType represents the type of system event
type EventType string

const (
	// EventComponentStatusChange indicates a component status has changed
	EventComponentStatusChange EventType = "COMPONENT_STATUS_CHANGE"
	// EventRunStarted indicates a pipeline run has begun
	EventRunStarted EventType = "RUN_STARTED"
	// EventStageStarted indicates a pipeline stage has begun
	EventStageStarted EventType = "STAGE_STARTED"
	// EventStageCompleted indicates a pipeline stage has finished
	EventStageCompleted EventType = "STAGE_COMPLETED"
	// EventRunCompleted indicates a pipeline run has finished
	EventRunCompleted EventType = "RUN_COMPLETED"
	// EventError indicates an error has occurred
	EventError EventType = "ERROR"
)

// HealthStatus represents the health status of the system or a component
type HealthStatus struct {
	Status     ComponentStatus         `json:"status"`
	Timestamp  time.Time               `json:"timestamp"`
	Message    string                  `json:"message,omitempty"`
	Components map[string]HealthStatus `json:"components,omitempty"`
}
