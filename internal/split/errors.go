package split

import (
	"fmt"
	"strings"
)

// PreconditionError means the partition refused to start. Nothing has been
// written when it is returned.
type PreconditionError struct {
	Root   string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed for %s: %s", e.Root, e.Reason)
}

// VersionControlError records a failed version-control command. It is
// reported but never aborts a partition.
type VersionControlError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *VersionControlError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.ExitCode, msg)
}

func (e *VersionControlError) Unwrap() error { return e.Err }
