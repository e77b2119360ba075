package publish

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvilbuild/anvil/internal/config"
	"github.com/anvilbuild/anvil/internal/constraint"
	pub "github.com/anvilbuild/anvil/internal/publish"
	"github.com/anvilbuild/anvil/internal/registry"
)

// fakeClient simulates the remote repository in memory.
type fakeClient struct {
	stored    map[string]bool
	uploadErr error
}

func (c *fakeClient) Upload(_ context.Context, files []string, remotePath pub.PathFunc) []pub.FileResult {
	results := make([]pub.FileResult, 0, len(files))
	for _, local := range files {
		remote := remotePath(local)
		if c.uploadErr != nil {
			results = append(results, pub.FileResult{Local: local, Remote: remote, Err: c.uploadErr})
			continue
		}
		if c.stored == nil {
			c.stored = make(map[string]bool)
		}
		c.stored[remote] = true
		results = append(results, pub.FileResult{Local: local, Remote: remote})
	}
	return results
}

func (c *fakeClient) Exists(_ context.Context, remote string) (bool, error) {
	return c.stored[remote], nil
}

func publishModel() *config.Model {
	return &config.Model{
		Publish: &config.Publish{
			Endpoint:   "https://packages.example.com",
			Repository: "releases",
			Files:      []string{"dist/anvil-1.0.0.tar.gz", "dist/anvil-1.0.0.sha256"},
		},
	}
}

func TestRegisterWithoutPublishBlock(t *testing.T) {
	r := registry.New(constraint.NewStore())
	(&Module{}).Register(r, &config.Model{})

	assert.Empty(t, r.TaskNames())
}

func TestRegisterDeclaresVerifyAfterUpload(t *testing.T) {
	store := constraint.NewStore()
	r := registry.New(store)
	(&Module{Client: &fakeClient{}}).Register(r, publishModel())

	assert.Equal(t, []string{"upload", "verify"}, r.TaskNames())
	assert.Equal(t, []string{"upload"}, store.AlwaysPredecessors("verify"))
}

func TestUploadThenVerify(t *testing.T) {
	client := &fakeClient{}
	r := registry.New(constraint.NewStore())
	(&Module{Client: client}).Register(r, publishModel())
	tasks := r.TasksFor("")

	res := tasks["upload"].Call(context.Background())
	require.True(t, res.OK, res.Message)
	assert.True(t, client.stored["/releases/anvil-1.0.0.tar.gz"])
	assert.True(t, client.stored["/releases/anvil-1.0.0.sha256"])

	res = tasks["verify"].Call(context.Background())
	assert.True(t, res.OK, res.Message)
}

func TestVerifyReportsMissingArtifacts(t *testing.T) {
	client := &fakeClient{}
	r := registry.New(constraint.NewStore())
	(&Module{Client: client}).Register(r, publishModel())

	res := r.TasksFor("")["verify"].Call(context.Background())
	require.False(t, res.OK)
	assert.Contains(t, res.Message, "/releases/anvil-1.0.0.tar.gz not found on remote")
}

func TestUploadCollectsFailures(t *testing.T) {
	client := &fakeClient{uploadErr: assert.AnError}
	r := registry.New(constraint.NewStore())
	(&Module{Client: client}).Register(r, publishModel())

	res := r.TasksFor("")["upload"].Call(context.Background())
	require.False(t, res.OK)
	assert.Contains(t, res.Message, assert.AnError.Error())
}
