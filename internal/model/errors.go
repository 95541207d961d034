package model

import "fmt"

// MissingInputError indicates a configured input path does not exist. It is
// raised before any geoprocessing call is made for the affected stage.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input dataset not found: %s", e.Path)
}

// InvalidDatasetError indicates a path was opened but the dataset was
// reported invalid (empty or corrupt).
type InvalidDatasetError struct {
	Path   string
	Reason string
}

func (e *InvalidDatasetError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid dataset: %s", e.Path)
	}
	return fmt.Sprintf("invalid dataset: %s: %s", e.Path, e.Reason)
}

// StageExecutionError indicates a geoprocessing call failed or returned no
// usable output. The first stage error aborts the remaining pipeline steps.
type StageExecutionError struct {
	Stage StageID
	Err   error
}

func (e *StageExecutionError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As
func (e *StageExecutionError) Unwrap() error {
	return e.Err
}
