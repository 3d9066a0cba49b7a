// Package workflow implements the declarative project manifest: named
// workflows of shell tasks, environment module and package declarations,
// and the deployment run command, plus an executor that runs workflows
// as OS processes.
package workflow

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Workflow execution modes.
const (
	ModeSequential = "sequential"
	ModeParallel   = "parallel"
)

// Manifest is the top-level project configuration: environment modules,
// system packages, named workflows, and the deployment command.
type Manifest struct {
	Modules    []string   `mapstructure:"modules"`
	Packages   []string   `mapstructure:"packages"`
	Workflows  []Workflow `mapstructure:"workflows" validate:"dive"`
	Deployment Deployment `mapstructure:"deployment"`
}

// Workflow is a named group of tasks executed sequentially or in
// parallel.
type Workflow struct {
	Name  string `mapstructure:"name" validate:"required"`
	Mode  string `mapstructure:"mode" validate:"oneof=sequential parallel"`
	Tasks []Task `mapstructure:"tasks" validate:"min=1,dive"`
}

// Task is one step of a workflow: either a shell command (Exec) or a
// reference to another workflow (Run). Exactly one must be set.
type Task struct {
	Exec string `mapstructure:"exec"`
	Run  string `mapstructure:"run"`
}

// Deployment declares the single command executed on deployment, as an
// argv vector.
type Deployment struct {
	Run []string `mapstructure:"run" validate:"required,min=1"`
}

// Workflow returns the named workflow.
func (m *Manifest) Workflow(name string) (*Workflow, error) {
	for i := range m.Workflows {
		if m.Workflows[i].Name == name {
			return &m.Workflows[i], nil
		}
	}
	return nil, fmt.Errorf("workflow %q not found", name)
}

// Load reads and validates a TOML manifest.
func Load(path string) (*Manifest, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := v.Unmarshal(&manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	for i := range manifest.Workflows {
		if manifest.Workflows[i].Mode == "" {
			manifest.Workflows[i].Mode = ModeSequential
		}
	}

	if err := Validate(&manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &manifest, nil
}

// Validate checks structural validity: field constraints, unique workflow
// names, exactly one action per task, resolvable references, and the
// absence of reference cycles.
func Validate(m *Manifest) error {
	if err := validator.New().Struct(m); err != nil {
		return fmt.Errorf("manifest validation failed: %w", err)
	}

	names := make(map[string]bool, len(m.Workflows))
	for _, wf := range m.Workflows {
		if names[wf.Name] {
			return fmt.Errorf("duplicate workflow name %q", wf.Name)
		}
		names[wf.Name] = true
	}

	for _, wf := range m.Workflows {
		for i, task := range wf.Tasks {
			hasExec := strings.TrimSpace(task.Exec) != ""
			hasRun := strings.TrimSpace(task.Run) != ""
			if hasExec == hasRun {
				return fmt.Errorf("workflow %q task %d must set exactly one of exec or run", wf.Name, i+1)
			}
			if hasRun && !names[task.Run] {
				return fmt.Errorf("workflow %q task %d references unknown workflow %q", wf.Name, i+1, task.Run)
			}
		}
	}

	return checkCycles(m)
}

// checkCycles rejects workflow reference cycles via depth-first search.
func checkCycles(m *Manifest) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(m.Workflows))

	var visit func(name string, trail []string) error
	visit = func(name string, trail []string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("workflow reference cycle: %s", strings.Join(append(trail, name), " -> "))
		case done:
			return nil
		}
		state[name] = visiting

		wf, err := m.Workflow(name)
		if err != nil {
			return err
		}
		for _, task := range wf.Tasks {
			if task.Run == "" {
				continue
			}
			if err := visit(task.Run, append(trail, name)); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for _, wf := range m.Workflows {
		if err := visit(wf.Name, nil); err != nil {
			return err
		}
	}
	return nil
}
