// internal/pipeline/errors.go
package pipeline

import (
	"errors"
	"fmt"
)

// Stage identifies where in the ingestion flow a failure happened.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageHarvest   Stage = "harvest"
	StageClassify  Stage = "classify"
	StageNormalize Stage = "normalize"
	StageResolve   Stage = "resolve"
	StageStore     Stage = "store"
)

// StageError is the structured error every failed ingestion surfaces.
type StageError struct {
	Stage     Stage
	URL       string
	Err       error
	Retryable bool
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed for %s: %v", e.Stage, e.URL, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// AsStageError extracts a StageError from an error chain.
func AsStageError(err error) (*StageError, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func stageErr(stage Stage, url string, err error, retryable bool) *StageError {
	return &StageError{Stage: stage, URL: url, Err: err, Retryable: retryable}
}
