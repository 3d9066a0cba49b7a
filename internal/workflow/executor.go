package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"
)

// ExitError reports a workflow command that finished with a non-zero
// exit code.
type ExitError struct {
	Command  string
	ExitCode int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Command, e.ExitCode)
}

// Executor runs workflows from a manifest as OS processes.
type Executor struct {
	manifest *Manifest
	logger   *slog.Logger
	workDir  string
}

// NewExecutor creates an executor for the given manifest. workDir is the
// working directory for spawned processes; empty means the current one.
func NewExecutor(manifest *Manifest, logger *slog.Logger, workDir string) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		manifest: manifest,
		logger:   logger.With("component", "workflow"),
		workDir:  workDir,
	}
}

// RunWorkflow executes the named workflow. Sequential workflows run
// tasks in order and stop at the first failure. Parallel workflows start
// every task concurrently as an independent OS process and wait for all
// of them; canceling the context kills the children.
func (e *Executor) RunWorkflow(ctx context.Context, name string) error {
	wf, err := e.manifest.Workflow(name)
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "Running workflow", "workflow", wf.Name, "mode", wf.Mode, "tasks", len(wf.Tasks))
	start := time.Now()

	switch wf.Mode {
	case ModeParallel:
		err = e.runParallel(ctx, wf)
	default:
		err = e.runSequential(ctx, wf)
	}

	if err != nil {
		e.logger.ErrorContext(ctx, "Workflow failed", "workflow", wf.Name, "error", err)
		return fmt.Errorf("workflow %q: %w", wf.Name, err)
	}

	e.logger.InfoContext(ctx, "Workflow finished", "workflow", wf.Name, "duration", time.Since(start))
	return nil
}

func (e *Executor) runSequential(ctx context.Context, wf *Workflow) error {
	for i, task := range wf.Tasks {
		if err := e.runTask(ctx, task); err != nil {
			return fmt.Errorf("task %d: %w", i+1, err)
		}
	}
	return nil
}

func (e *Executor) runParallel(ctx context.Context, wf *Workflow) error {
	g, gCtx := errgroup.WithContext(ctx)
	for i, task := range wf.Tasks {
		g.Go(func() error {
			if err := e.runTask(gCtx, task); err != nil {
				return fmt.Errorf("task %d: %w", i+1, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (e *Executor) runTask(ctx context.Context, task Task) error {
	if task.Run != "" {
		return e.RunWorkflow(ctx, task.Run)
	}
	return e.runCommand(ctx, "sh", "-c", task.Exec)
}

// Deploy executes the manifest's deployment run command.
func (e *Executor) Deploy(ctx context.Context) error {
	argv := e.manifest.Deployment.Run
	if len(argv) == 0 {
		return errors.New("manifest has no deployment run command")
	}
	e.logger.InfoContext(ctx, "Running deployment command", "argv", argv)
	return e.runCommand(ctx, argv[0], argv[1:]...)
}

func (e *Executor) runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.workDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	display := name
	if name == "sh" && len(args) == 2 && args[0] == "-c" {
		display = args[1]
	}
	e.logger.DebugContext(ctx, "Starting command", "command", display)

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Command: display, ExitCode: exitErr.ExitCode()}
	}
	return fmt.Errorf("failed to run %q: %w", display, err)
}
