package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownload(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("archive bytes"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "netbird_win.tar.gz")
	require.NoError(t, NewDownloader(quietLogger()).Download(context.Background(), srv.URL+"/netbird.tar.gz", path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "archive bytes", string(b))
	assert.Equal(t, UserAgent, ua)
}

func TestDownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "rustdesk-installer.msi")
	err := NewDownloader(quietLogger()).Download(context.Background(), srv.URL, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.NoFileExists(t, path)
}

func TestDownloaderHasNoClientTimeout(t *testing.T) {
	d := NewDownloader(quietLogger())
	assert.Zero(t, d.client.GetClient().Timeout)
}
