package summarizer

import "fmt"

// Stage names the pipeline step that failed
type Stage string

// Pipeline stages
const (
	StageFetch    Stage = "fetch"
	StageExtract  Stage = "extract"
	StageGenerate Stage = "generate"
	StageParse    Stage = "parse"
)

// StageError wraps the error of a failed pipeline stage
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
