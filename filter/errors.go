package filter

import "fmt"

// Stage names the step of message processing in which a failure occurred.
type Stage string

const (
	// StageParse covers reading the raw message and building its part tree.
	StageParse Stage = "parse"

	// StageFilter covers the payload rewriting pass.
	StageFilter Stage = "filter"

	// StagePrune covers the child list rebuilding pass.
	StagePrune Stage = "prune"

	// StageSerialize covers writing the rewritten message back out.
	StageSerialize Stage = "serialize"
)

// StageError describes the failure of a single message, naming the message
// and the processing stage that raised the underlying error. A StageError is
// scoped to one message: the caller decides whether to skip the message or
// stop the whole run.
type StageError struct {
	ID    string // identifier of the message that failed
	Stage Stage  // processing stage that raised the error
	Err   error  // the underlying failure
}

// Error returns the error message.
func (e *StageError) Error() string {
	return fmt.Sprintf("scrubbing message %s: %s: %v", e.ID, e.Stage, e.Err)
}

// Unwrap returns the underlying failure.
func (e *StageError) Unwrap() error {
	return e.Err
}
