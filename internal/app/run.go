package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/anvilbuild/anvil/internal/config"
	"github.com/anvilbuild/anvil/internal/ctxlog"
	"github.com/anvilbuild/anvil/internal/executor"
	"github.com/anvilbuild/anvil/internal/plan"
	"github.com/anvilbuild/anvil/internal/task"
)

// Run executes the main application logic: for every selected project it
// resolves targets, builds and validates the dependency graph, and drains
// it through the executor. Projects run one after another; a failing
// project does not stop the remaining ones.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	projects, err := a.selectProjects()
	if err != nil {
		return err
	}

	builder := plan.NewBuilder(a.registry.Constraints())

	var failures []string
	for _, project := range projects {
		if err := a.runProject(ctx, builder, project); err != nil {
			a.logger.Error("❌ Project failed.", "project", project.Name, "error", err)
			failures = append(failures, fmt.Sprintf("project %q: %v", project.Name, err))
		}
	}

	a.logger.Debug("App.Run method finished.")
	if len(failures) > 0 {
		return fmt.Errorf("run failed:\n%s", strings.Join(failures, "\n"))
	}
	return nil
}

// selectProjects narrows the model's projects to the configured one, or
// returns all of them. A model with no project blocks still gets a single
// unnamed project so bare plugin tasks remain runnable.
func (a *App) selectProjects() ([]*config.Project, error) {
	if len(a.model.Projects) == 0 {
		return []*config.Project{{Name: ""}}, nil
	}
	if a.config.Project == "" {
		return a.model.Projects, nil
	}
	for _, project := range a.model.Projects {
		if project.Name == a.config.Project {
			return []*config.Project{project}, nil
		}
	}
	return nil, fmt.Errorf("unknown project %q", a.config.Project)
}

// runProject resolves targets for one project and executes its graph.
func (a *App) runProject(ctx context.Context, builder *plan.Builder, project *config.Project) error {
	tasks := a.registry.TasksFor(project.Name)
	targets, err := a.resolveTargets(builder, project, tasks)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		a.logger.Warn("No targets resolved for project, nothing to run.", "project", project.Name)
		return nil
	}

	graph, err := builder.Build(ctx, project.Name, tasks, targets)
	if err != nil {
		return err
	}
	if graph.Len() == 0 {
		a.logger.Warn("No nodes found in graph, execution not required.", "project", project.Name)
		return nil
	}
	a.logger.Debug("Dependency graph built.", "project", project.Name, "node_count", graph.Len())

	a.logger.Info("🚀 Starting execution...", "project", project.Name, "targets", identityStrings(targets))
	exec := executor.New(graph,
		executor.WithWorkers(a.config.WorkerCount),
		executor.WithDryRun(a.config.DryRun),
		executor.WithSerialBatches(a.config.Serial),
	)
	results, err := exec.Run(ctx)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.", "project", project.Name, "ok", results.OK())

	if !results.OK() {
		return fmt.Errorf("%s", results.Report())
	}
	return nil
}

// resolveTargets picks the targets for one project, in order of preference:
// command-line targets that match the project, the project's declared
// default targets, and finally the project's free tasks.
func (a *App) resolveTargets(builder *plan.Builder, project *config.Project, tasks map[string]task.Task) ([]task.Identity, error) {
	if len(a.config.Targets) > 0 {
		var targets []task.Identity
		for _, raw := range a.config.Targets {
			id, err := task.ParseIdentity(raw)
			if err != nil {
				return nil, err
			}
			if id.Matches(project.Name) {
				targets = append(targets, id)
			}
		}
		return targets, nil
	}

	if len(project.Targets) > 0 {
		targets := make([]task.Identity, 0, len(project.Targets))
		for _, raw := range project.Targets {
			id, err := task.ParseIdentity(raw)
			if err != nil {
				return nil, fmt.Errorf("project %q default target: %w", project.Name, err)
			}
			targets = append(targets, id)
		}
		return targets, nil
	}

	// With nothing requested, the unconstrained tasks are the work.
	free := builder.FreeTasks(tasks)
	targets := make([]task.Identity, 0, len(free))
	for _, t := range free {
		targets = append(targets, task.Identity{Name: t.Name()})
	}
	return targets, nil
}

func identityStrings(ids []task.Identity) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
