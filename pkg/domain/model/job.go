package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/loom/pkg/domain/types"
)

// Axis and field names with fixed meaning in a job matrix.
const (
	AxisOS   = "os"
	AxisTest = "test"

	FieldDistro    = "distro"
	FieldToolchain = "toolchain"
	FieldFlag      = "flag"
)

// JobSpec is one concrete, fully resolved combination of matrix variants.
// It is created once at trigger time and never mutated.
type JobSpec struct {
	OS        string `json:"os"`         // OS variant name (e.g. Linux, Windows, macOS)
	Distro    string `json:"distro"`     // Platform-specific execution image identifier
	Test      string `json:"test"`       // Test variant name (e.g. "Stable with all features")
	Toolchain string `json:"toolchain"`  // Toolchain release channel to provision
	ExtraFlag string `json:"extra_flag"` // Optional flag appended to the test invocation
}

// NewJobSpec resolves a matrix combination into a JobSpec. The "os" and
// "test" axes carry the variant names; remaining fields come from variant
// fields regardless of which axis declared them.
func NewJobSpec(c Combination) JobSpec {
	var spec JobSpec
	if v, ok := c.VariantOf(AxisOS); ok {
		spec.OS = v.Name
	}
	if v, ok := c.VariantOf(AxisTest); ok {
		spec.Test = v.Name
	}
	spec.Distro, _ = c.Field(FieldDistro)
	spec.Toolchain, _ = c.Field(FieldToolchain)
	spec.ExtraFlag, _ = c.Field(FieldFlag)
	return spec
}

// JobStatus represents the execution state of a job
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Job is one scheduled execution of a JobSpec within a run.
type Job struct {
	ID         types.JobID `json:"id"`
	RunID      types.RunID `json:"run_id"`
	Name       string      `json:"name"`
	Spec       JobSpec     `json:"spec"`
	Status     JobStatus   `json:"status"`
	Error      string      `json:"error,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	StartedAt  *time.Time  `json:"started_at,omitempty"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// JobName builds the display name of an expanded job from the variant names
// present in its spec, e.g. "test (Linux, Stable)" or "test (Linux)".
func JobName(template string, spec JobSpec) string {
	var parts []string
	if spec.OS != "" {
		parts = append(parts, spec.OS)
	}
	if spec.Test != "" {
		parts = append(parts, spec.Test)
	}
	if len(parts) == 0 {
		return template
	}
	return fmt.Sprintf("%s (%s)", template, strings.Join(parts, ", "))
}
