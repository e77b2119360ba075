// Package shell turns manifest-declared command tasks into registered,
// runnable tasks backed by os/exec.
package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/anvilbuild/anvil/internal/config"
	"github.com/anvilbuild/anvil/internal/ctxlog"
	"github.com/anvilbuild/anvil/internal/registry"
	"github.com/anvilbuild/anvil/internal/task"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers one command task per task block in the model.
func (m *Module) Register(r *registry.Registry, model *config.Model) {
	for _, def := range model.Tasks {
		def := def
		r.RegisterTask(&task.Func{
			TaskName:    def.Name,
			TaskProject: def.Project,
			Fn: func(ctx context.Context) task.Result {
				return runCommand(ctx, def)
			},
		})
	}
}

// runCommand executes one task definition's command line and converts the
// process outcome into a task result.
func runCommand(ctx context.Context, def *config.TaskDef) task.Result {
	logger := ctxlog.FromContext(ctx)

	if len(def.Command) == 0 {
		logger.Warn("Task has no command, treating as no-op.", "task", def.Name)
		return task.Result{OK: true}
	}

	cmd := exec.CommandContext(ctx, def.Command[0], def.Command[1:]...)
	cmd.Dir = def.Dir
	cmd.Env = append(os.Environ(), envPairs(def.Env)...)

	logger.Debug("Running command.", "task", def.Name, "command", strings.Join(def.Command, " "))
	output, err := cmd.CombinedOutput()
	if err != nil {
		msg := fmt.Sprintf("command %q: %v", strings.Join(def.Command, " "), err)
		if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
			msg = fmt.Sprintf("%s\n%s", msg, trimmed)
		}
		return task.Result{OK: false, Message: msg}
	}
	if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
		logger.Info("Command output.", "task", def.Name, "output", trimmed)
	}
	return task.Result{OK: true}
}

// envPairs renders an env map as sorted KEY=value strings.
func envPairs(env map[string]string) []string {
	pairs := make([]string, 0, len(env))
	for k, v := range env {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return pairs
}
