package publish

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPut struct {
	path     string
	checksum string
	body     []byte
}

func TestHTTPUploaderUpload(t *testing.T) {
	var (
		mu   sync.Mutex
		puts []recordedPut
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		mu.Lock()
		puts = append(puts, recordedPut{
			path:     r.URL.Path,
			checksum: r.Header.Get("X-Checksum-Sha256"),
			body:     body,
		})
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	dir := t.TempDir()
	first := filepath.Join(dir, "anvil-1.0.0.tar.gz")
	second := filepath.Join(dir, "anvil-1.0.0.sha256")
	require.NoError(t, os.WriteFile(first, []byte("archive-bytes"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("digest-bytes"), 0o644))

	up := NewHTTPUploader(srv.URL)
	defer up.Close()

	results := up.Upload(context.Background(), []string{first, second}, RepositoryPath("releases"))
	require.Len(t, results, 2)
	for _, res := range results {
		assert.NoError(t, res.Err)
	}
	assert.Equal(t, "/releases/anvil-1.0.0.tar.gz", results[0].Remote)
	assert.Equal(t, "/releases/anvil-1.0.0.sha256", results[1].Remote)

	require.Len(t, puts, 2)
	assert.Equal(t, "/releases/anvil-1.0.0.tar.gz", puts[0].path)
	assert.Equal(t, []byte("archive-bytes"), puts[0].body)
	wantSum := sha256.Sum256([]byte("archive-bytes"))
	assert.Equal(t, hex.EncodeToString(wantSum[:]), puts[0].checksum)
}

func TestHTTPUploaderUploadContinuesAfterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	dir := t.TempDir()
	good := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(good, []byte("ok"), 0o644))
	missing := filepath.Join(dir, "missing.txt")

	up := NewHTTPUploader(srv.URL)
	defer up.Close()

	results := up.Upload(context.Background(), []string{missing, good}, RepositoryPath("releases"))
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
}

func TestHTTPUploaderUploadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	dir := t.TempDir()
	file := filepath.Join(dir, "artifact.bin")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	up := NewHTTPUploader(srv.URL)
	defer up.Close()

	results := up.Upload(context.Background(), []string{file}, RepositoryPath("releases"))
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "unexpected status")
}

func TestHTTPUploaderExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		switch r.URL.Path {
		case "/releases/present.tar.gz":
			w.WriteHeader(http.StatusOK)
		case "/releases/absent.tar.gz":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	up := NewHTTPUploader(srv.URL)
	defer up.Close()

	t.Run("present", func(t *testing.T) {
		ok, err := up.Exists(context.Background(), "/releases/present.tar.gz")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("absent", func(t *testing.T) {
		ok, err := up.Exists(context.Background(), "/releases/absent.tar.gz")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("server error", func(t *testing.T) {
		_, err := up.Exists(context.Background(), "/releases/broken.tar.gz")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status")
	})
}
