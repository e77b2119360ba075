// Package hclcfg is the HCL implementation of config.Loader. It discovers
// manifest files, decodes them against the schema, and translates the
// result into the format-agnostic configuration model.
package hclcfg

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/anvilbuild/anvil/internal/config"
	"github.com/anvilbuild/anvil/internal/ctxlog"
	"github.com/anvilbuild/anvil/internal/fsutil"
)

// Extension is the manifest file extension the loader discovers.
const Extension = ".hcl"

// Loader parses HCL manifests into the config model.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader returns a ready Loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load implements config.Loader. Every .hcl file reachable from the given
// paths is decoded and merged into a single model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	var manifests []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, Extension)
		if err != nil {
			return nil, fmt.Errorf("discovering manifests under %q: %w", path, err)
		}
		manifests = append(manifests, found...)
	}
	logger.Debug("Manifest discovery complete.", "count", len(manifests))

	if len(manifests) == 0 {
		return nil, fmt.Errorf("no %s manifests found in %v", Extension, paths)
	}

	model := &config.Model{}
	for _, filename := range manifests {
		root, err := l.parseFile(filename)
		if err != nil {
			return nil, err
		}
		if err := l.merge(ctx, model, root, filename); err != nil {
			return nil, err
		}
	}
	logger.Debug("Manifests translated into unified model.",
		"projects", len(model.Projects), "tasks", len(model.Tasks), "orderings", len(model.Orderings))

	return model, nil
}

// parseFile decodes a single manifest file against the schema.
func (l *Loader) parseFile(filename string) (*rootSchema, error) {
	file, diags := l.parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", filename, diags)
	}

	var root rootSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", filename, diags)
	}
	return &root, nil
}

// merge folds one parsed manifest into the model.
func (l *Loader) merge(ctx context.Context, model *config.Model, root *rootSchema, filename string) error {
	for _, p := range root.Projects {
		model.Projects = append(model.Projects, l.translateProject(p))
	}
	for _, t := range root.Tasks {
		def, orderings, err := l.translateTask(ctx, t)
		if err != nil {
			return fmt.Errorf("in %s: %w", filename, err)
		}
		model.Tasks = append(model.Tasks, def)
		model.Orderings = append(model.Orderings, orderings...)
	}
	if root.Publish != nil {
		if model.Publish != nil {
			return fmt.Errorf("in %s: duplicate publish block", filename)
		}
		model.Publish = &config.Publish{
			Endpoint:   root.Publish.Endpoint,
			Repository: root.Publish.Repository,
			Files:      root.Publish.Files,
		}
	}
	return nil
}
