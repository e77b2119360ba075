// This file contains the logic for translating decoded HCL schema structs
// into the format-agnostic configuration model defined in the config
// package.

package hclcfg

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/anvilbuild/anvil/internal/config"
)

// translateProject converts a project block into the agnostic model.
func (l *Loader) translateProject(p *projectBlock) *config.Project {
	return &config.Project{
		Name:    p.Name,
		Dir:     p.Dir,
		Targets: p.Targets,
	}
}

// translateTask converts a task block into a definition plus the ordering
// declarations it carries.
func (l *Loader) translateTask(ctx context.Context, t *taskBlock) (*config.TaskDef, []*config.Ordering, error) {
	env, err := evalEnv(t.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("task %q: %w", t.Name, err)
	}

	def := &config.TaskDef{
		Name:        t.Name,
		Project:     t.Project,
		Description: t.Description,
		Command:     t.Command,
		Dir:         t.Dir,
		Env:         env,
	}

	var orderings []*config.Ordering
	appendAll := func(kind config.Kind, others []string) {
		for _, other := range others {
			orderings = append(orderings, &config.Ordering{Kind: kind, Task: t.Name, Other: other})
		}
	}
	appendAll(config.KindDependsOn, t.DependsOn)
	appendAll(config.KindRunsAfter, t.RunsAfter)
	appendAll(config.KindAlwaysAfter, t.AlwaysAfter)

	return def, orderings, nil
}

// evalEnv statically evaluates the env attribute into a string map.
// Manifests have no evaluation context, so only literal values are allowed.
func evalEnv(expr hcl.Expression) (map[string]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating env: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}

	converted, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, fmt.Errorf("env must be a map of strings: %w", err)
	}
	if converted.IsNull() {
		return nil, nil
	}

	env := make(map[string]string)
	for it := converted.ElementIterator(); it.Next(); {
		k, v := it.Element()
		if v.IsNull() {
			continue
		}
		env[k.AsString()] = v.AsString()
	}
	return env, nil
}
