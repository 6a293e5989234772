package model

// CheckoutResult represents a source tree materialized for one job
type CheckoutResult struct {
	Dir   string   // Root directory of the extracted source
	Files []string // List of extracted files
	Size  int64    // Total size in bytes
}

// CommitStatus is a per-job status reported back to the triggering commit.
type CommitStatus struct {
	State       string // pending, success, failure, error
	Context     string // Status context, one per expanded job
	Description string
}
