package model

// Workflow is a fully loaded workflow definition. It is immutable after
// loading; validation happens in the loader, not here.
type Workflow struct {
	Name     string
	Triggers []EventType
	Jobs     []JobTemplate
}

// JobTemplate is one named job entry of a workflow. Its matrix axes expand
// into concrete JobSpecs at trigger time.
type JobTemplate struct {
	Name string
	Axes []Axis

	// Run is the test invocation executed as the final step of every
	// expanded job. An expanded job's ExtraFlag is appended to it.
	Run string
}

// Axis is one independent dimension of a job matrix, an ordered sequence of
// named variants. Declaration order is significant: expansion enumerates
// variants in this order.
type Axis struct {
	Name     string
	Variants []Variant
}

// Variant is a single named entry of an axis with arbitrary extra fields
// (e.g. distro, toolchain, flag).
type Variant struct {
	Name   string
	Fields map[string]string
}

// Field returns a named extra field of the variant.
func (v Variant) Field(key string) (string, bool) {
	val, ok := v.Fields[key]
	return val, ok
}

// Triggered reports whether the workflow reacts to the given event type.
func (w *Workflow) Triggered(ev EventType) bool {
	for _, t := range w.Triggers {
		if t == ev {
			return true
		}
	}
	return false
}
