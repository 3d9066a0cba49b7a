// Package main contains the workflow runner: it loads the project
// manifest and executes a named workflow or the deployment command.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/betbog/betbog/internal/logger"
	"github.com/betbog/betbog/internal/workflow"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run loads the manifest and executes the requested workflow, returning
// an exit code.
func run(ctx context.Context) int {
	manifestPath := flag.String("manifest", "./workflow.toml", "Path to workflow manifest")
	workflowName := flag.String("workflow", "Project", "Workflow to run")
	deploy := flag.Bool("deploy", false, "Run the deployment command instead of a workflow")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.New(*logLevel, false)
	slog.SetDefault(log)

	manifest, err := workflow.Load(*manifestPath)
	if err != nil {
		log.Error("Failed to load manifest", "path", *manifestPath, "error", err)
		return 1
	}
	log.Info("Manifest loaded",
		"path", *manifestPath, "workflows", len(manifest.Workflows), "modules", manifest.Modules)

	exec := workflow.NewExecutor(manifest, log, "")

	if *deploy {
		err = exec.Deploy(ctx)
	} else {
		err = exec.RunWorkflow(ctx, *workflowName)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("Run canceled.")
			return 0
		}
		var exitErr *workflow.ExitError
		if errors.As(err, &exitErr) {
			log.Error("Command failed", "command", exitErr.Command, "exit_code", exitErr.ExitCode)
			return exitErr.ExitCode
		}
		log.Error("Run failed", "error", err)
		return 1
	}
	return 0
}
