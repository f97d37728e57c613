package pipeline

import (
	"errors"
	"fmt"

	"github.com/enn-tee/agentic-job-search/internal/model"
)

// ErrNoCandidates means the resume pool was empty: there is nothing to
// select from and nothing the pipeline can do about it.
var ErrNoCandidates = errors.New("no candidate resumes in pool")

// GenerationError marks a stage failure. The stage name tells the
// operator which cached artifacts are still valid: everything upstream
// of the failed stage was either a hit or was persisted before the
// failure.
type GenerationError struct {
	Stage model.StageKind
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func stageErr(stage model.StageKind, err error) error {
	return &GenerationError{Stage: stage, Err: err}
}
