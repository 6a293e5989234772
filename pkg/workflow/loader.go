// Package workflow loads and validates declarative workflow definitions.
package workflow

import (
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/loom/pkg/domain/model"
	"gopkg.in/yaml.v3"
)

// DefaultRun is the test invocation used when a job omits "run".
const DefaultRun = "cargo test"

type workflowFile struct {
	Name string    `yaml:"name"`
	On   triggers  `yaml:"on"`
	Jobs yaml.Node `yaml:"jobs"`
}

type jobFile struct {
	Strategy struct {
		Matrix yaml.Node `yaml:"matrix"`
	} `yaml:"strategy"`
	Run string `yaml:"run"`
}

// triggers accepts both scalar and sequence forms of "on":
// "on: push" and "on: [push, pull_request]".
type triggers []model.EventType

func (t *triggers) UnmarshalYAML(node *yaml.Node) error {
	var names []string

	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		names = []string{name}
	case yaml.SequenceNode:
		if err := node.Decode(&names); err != nil {
			return err
		}
	default:
		return goerr.New("invalid trigger definition: expected string or list",
			goerr.V("line", node.Line))
	}

	for _, name := range names {
		*t = append(*t, model.EventType(name))
	}
	return nil
}

// Load reads and validates a workflow definition file.
func Load(path string) (*model.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read workflow file", goerr.V("path", path))
	}

	wf, err := Parse(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load workflow", goerr.V("path", path))
	}
	return wf, nil
}

// Parse parses and validates workflow YAML. All malformed-definition faults
// surface here, at load time; expansion and execution assume a valid model.
func Parse(data []byte) (*model.Workflow, error) {
	var file workflowFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse workflow YAML")
	}

	wf := &model.Workflow{
		Name: file.Name,
	}
	if wf.Name == "" {
		wf.Name = "CI"
	}

	if len(file.On) == 0 {
		return nil, goerr.New("workflow has no trigger events (\"on\" is empty)")
	}
	for _, trigger := range file.On {
		switch trigger {
		case model.EventTypePush, model.EventTypePullRequest:
			wf.Triggers = append(wf.Triggers, trigger)
		default:
			return nil, goerr.New("unsupported trigger event",
				goerr.V("event", string(trigger)))
		}
	}

	jobs, err := parseJobs(&file.Jobs)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, goerr.New("workflow has no jobs")
	}
	wf.Jobs = jobs

	return wf, nil
}

// parseJobs decodes the "jobs" mapping, preserving declaration order. A
// plain map would lose it, and enumeration order of expanded jobs must be
// deterministic.
func parseJobs(node *yaml.Node) ([]model.JobTemplate, error) {
	if node.IsZero() {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, goerr.New("invalid jobs definition: expected mapping",
			goerr.V("line", node.Line))
	}

	var templates []model.JobTemplate
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]

		var job jobFile
		if err := valNode.Decode(&job); err != nil {
			return nil, goerr.Wrap(err, "invalid job definition",
				goerr.V("job", keyNode.Value))
		}

		axes, err := parseMatrix(&job.Strategy.Matrix)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid matrix definition",
				goerr.V("job", keyNode.Value))
		}

		template := model.JobTemplate{
			Name: keyNode.Value,
			Axes: axes,
			Run:  job.Run,
		}
		if template.Run == "" {
			template.Run = DefaultRun
		}

		templates = append(templates, template)
	}

	return templates, nil
}

func parseMatrix(node *yaml.Node) ([]model.Axis, error) {
	if node.IsZero() {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, goerr.New("expected mapping of axis name to variants",
			goerr.V("line", node.Line))
	}

	var axes []model.Axis
	seen := map[string]bool{}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]

		if seen[keyNode.Value] {
			return nil, goerr.New("duplicate axis", goerr.V("axis", keyNode.Value))
		}
		seen[keyNode.Value] = true

		axis, err := parseAxis(keyNode.Value, valNode)
		if err != nil {
			return nil, err
		}
		axes = append(axes, axis)
	}

	return axes, nil
}

func parseAxis(name string, node *yaml.Node) (model.Axis, error) {
	axis := model.Axis{Name: name}

	var variants []map[string]any
	if err := node.Decode(&variants); err != nil {
		return axis, goerr.Wrap(err, "expected list of variants", goerr.V("axis", name))
	}

	seen := map[string]bool{}
	for idx, raw := range variants {
		variant := model.Variant{Fields: map[string]string{}}
		for key, val := range raw {
			if key == "name" {
				variant.Name = fmt.Sprintf("%v", val)
				continue
			}
			variant.Fields[key] = fmt.Sprintf("%v", val)
		}

		if variant.Name == "" {
			return axis, goerr.New("variant has no name",
				goerr.V("axis", name), goerr.V("index", idx))
		}
		if seen[variant.Name] {
			return axis, goerr.New("duplicate variant",
				goerr.V("axis", name), goerr.V("variant", variant.Name))
		}
		seen[variant.Name] = true

		axis.Variants = append(axis.Variants, variant)
	}

	return axis, nil
}
