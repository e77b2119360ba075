// Package publish implements the artifact-publishing collaborator: it
// uploads local files to a remote package endpoint and answers existence
// checks. The scheduler core never depends on this package directly; the
// publish plugin wires it into upload/verify tasks.
//
// Uploads run strictly sequentially. The remote endpoint rejects
// concurrent writes against the same repository, so callers schedule
// publishing tasks through the executor's serial mode.
package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"

	"resty.dev/v3"
)

// PathFunc maps a local file path to its destination path on the remote.
type PathFunc func(local string) string

// FileResult is the per-file outcome of an upload.
type FileResult struct {
	Local  string
	Remote string
	Err    error
}

// Uploader publishes a list of local files, reporting per-file results.
type Uploader interface {
	Upload(ctx context.Context, files []string, remotePath PathFunc) []FileResult
}

// Checker answers whether a remote path is already published.
type Checker interface {
	Exists(ctx context.Context, remote string) (bool, error)
}

// checksumHeader carries the SHA-256 digest of the uploaded body.
const checksumHeader = "X-Checksum-Sha256"

// HTTPUploader uploads files over HTTP PUT with checksum headers and a
// small retry budget. It implements Uploader and Checker.
type HTTPUploader struct {
	client *resty.Client
}

// NewHTTPUploader returns an uploader targeting the given base endpoint.
func NewHTTPUploader(endpoint string) *HTTPUploader {
	client := resty.New().
		SetBaseURL(endpoint).
		SetRetryCount(2)
	return &HTTPUploader{client: client}
}

// Close releases the underlying HTTP client.
func (u *HTTPUploader) Close() error {
	return u.client.Close()
}

// Upload implements Uploader. Files are processed one at a time, in order;
// a failed file does not stop the remaining ones.
func (u *HTTPUploader) Upload(ctx context.Context, files []string, remotePath PathFunc) []FileResult {
	results := make([]FileResult, 0, len(files))
	for _, local := range files {
		remote := remotePath(local)
		results = append(results, FileResult{
			Local:  local,
			Remote: remote,
			Err:    u.put(ctx, local, remote),
		})
	}
	return results
}

// put uploads one file.
func (u *HTTPUploader) put(ctx context.Context, local, remote string) error {
	data, err := os.ReadFile(local)
	if err != nil {
		return fmt.Errorf("reading %s: %w", local, err)
	}

	sum := sha256.Sum256(data)
	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader(checksumHeader, hex.EncodeToString(sum[:])).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(data).
		Put(remote)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", remote, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("uploading %s: unexpected status %s", remote, resp.Status())
	}
	return nil
}

// Exists implements Checker via an HTTP HEAD request.
func (u *HTTPUploader) Exists(ctx context.Context, remote string) (bool, error) {
	resp, err := u.client.R().
		SetContext(ctx).
		Head(remote)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", remote, err)
	}
	switch {
	case resp.IsSuccess():
		return true, nil
	case resp.StatusCode() == 404:
		return false, nil
	default:
		return false, fmt.Errorf("checking %s: unexpected status %s", remote, resp.Status())
	}
}

// RepositoryPath returns a PathFunc that places each file's base name under
// the named repository.
func RepositoryPath(repository string) PathFunc {
	return func(local string) string {
		return path.Join("/", repository, path.Base(local))
	}
}
