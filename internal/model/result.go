package model

import "time"

// ElevationStats holds zonal elevation statistics for a single watershed,
// read back from the attribute table the engine augments. Present only when
// the engine reports the zonal statistics capability.
type ElevationStats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// WatershedStats holds the derived statistics for a single watershed polygon
type WatershedStats struct {
	AreaM2     float64         `json:"area_m2"`
	AreaKM2    float64         `json:"area_km2"`
	PerimeterM float64         `json:"perimeter_m"`
	Elevation  *ElevationStats `json:"elevation,omitempty"`
}

// RunResult maps each pipeline stage to its output artifact, plus the
// per-watershed statistics keyed by positional identifier (watershed_<i>).
// Feature ordering is whatever the underlying iterator yields; no stable
// feature identifier is carried through the pipeline.
type RunResult struct {
	Artifacts  map[StageID]string        `json:"artifacts"`
	Statistics map[string]WatershedStats `json:"statistics"`
	ReportPath string                    `json:"report_path"`
}

// RunStatus represents the lifecycle state of a pipeline run
type RunStatus string

const (
	// RunPending indicates the run has been accepted but not started
	RunPending RunStatus = "PENDING"
	// RunRunning indicates the run is executing
	RunRunning RunStatus = "RUNNING"
	// RunCompleted indicates the run finished successfully
	RunCompleted RunStatus = "COMPLETED"
	// RunFailed indicates the run aborted with an error
	RunFailed RunStatus = "FAILED"
)

// RunRecord tracks a single pipeline run triggered through the API
type RunRecord struct {
	ID         string           `json:"id"`
	Status     RunStatus        `json:"status"`
	Stages     map[StageID]bool `json:"stages"`
	Result     *RunResult       `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}
