package pipeline

import "fmt"

// Pipeline stages, used to attribute failures.
const (
	StageScrape   = "scrape"
	StageClassify = "classify"
	StagePersist  = "persist"
)

// StageError wraps a failure with the stage it occurred in, so batch
// summaries can report where profiles fell over.
type StageError struct {
	Stage string
	URL   string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: %s failed for %s: %v", e.Stage, e.URL, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
