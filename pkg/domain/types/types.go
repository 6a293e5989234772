package types

// Version is the application version, overridden at build time via ldflags.
var Version = "dev"

// RunID identifies a single workflow run.
type RunID string

// JobID identifies a single job within a run.
type JobID string

func (x RunID) String() string { return string(x) }
func (x JobID) String() string { return string(x) }
