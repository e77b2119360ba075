// Package publish registers the artifact-publishing tasks: `upload` pushes
// the configured files to the remote repository and `verify` confirms they
// landed. `verify` is forced to run after `upload` in any graph that
// schedules it. Publishing tasks are meant to run under the executor's
// serial mode; the remote rejects concurrent writes.
package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/anvilbuild/anvil/internal/config"
	"github.com/anvilbuild/anvil/internal/ctxlog"
	"github.com/anvilbuild/anvil/internal/publish"
	"github.com/anvilbuild/anvil/internal/registry"
	"github.com/anvilbuild/anvil/internal/task"
)

// Client is the remote side of publishing: uploads plus existence checks.
type Client interface {
	publish.Uploader
	publish.Checker
}

// Module implements the registry.Module interface for this package.
type Module struct {
	// Client overrides the default HTTP client. Tests use this; a nil
	// Client builds an HTTP uploader from the model's publish endpoint.
	Client Client
}

// Register registers the upload and verify tasks when the model carries a
// publish block. Without one this module contributes nothing.
func (m *Module) Register(r *registry.Registry, model *config.Model) {
	cfg := model.Publish
	if cfg == nil {
		return
	}

	client := m.Client
	if client == nil {
		client = publish.NewHTTPUploader(cfg.Endpoint)
	}

	r.RegisterTask(&task.Func{
		TaskName: "upload",
		Fn: func(ctx context.Context) task.Result {
			return upload(ctx, client, cfg)
		},
	})
	r.RegisterTask(&task.Func{
		TaskName: "verify",
		Fn: func(ctx context.Context) task.Result {
			return verify(ctx, client, cfg)
		},
	})

	// Verifying before uploading would always report missing files.
	r.Constraints().AlwaysAfter("verify", "upload")
}

// upload pushes every configured file and collects per-file failures.
func upload(ctx context.Context, client Client, cfg *config.Publish) task.Result {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Uploading artifacts.", "repository", cfg.Repository, "count", len(cfg.Files))

	var failed []string
	for _, res := range client.Upload(ctx, cfg.Files, publish.RepositoryPath(cfg.Repository)) {
		if res.Err != nil {
			failed = append(failed, res.Err.Error())
			continue
		}
		logger.Debug("Uploaded artifact.", "local", res.Local, "remote", res.Remote)
	}
	if len(failed) > 0 {
		return task.Result{OK: false, Message: strings.Join(failed, "\n")}
	}
	return task.Result{OK: true}
}

// verify confirms every configured file exists on the remote.
func verify(ctx context.Context, client Client, cfg *config.Publish) task.Result {
	remotePath := publish.RepositoryPath(cfg.Repository)

	var failed []string
	for _, local := range cfg.Files {
		remote := remotePath(local)
		ok, err := client.Exists(ctx, remote)
		switch {
		case err != nil:
			failed = append(failed, err.Error())
		case !ok:
			failed = append(failed, fmt.Sprintf("artifact %s not found on remote", remote))
		}
	}
	if len(failed) > 0 {
		return task.Result{OK: false, Message: strings.Join(failed, "\n")}
	}
	return task.Result{OK: true}
}
