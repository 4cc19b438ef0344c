package fileutil

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/xingkaixin/handylib/config"
	"github.com/xingkaixin/handylib/logger"
)

const dataDir = "/data"

func newTestKit(t *testing.T, debug bool) (*Kit, afero.Fs, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Debug = debug
	cfg.ShowTimestamp = false

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(dataDir, 0o755))

	var buf bytes.Buffer
	lg := logger.New(cfg, logger.WithOutput(&buf), logger.WithFs(fs), logger.WithWorkDir("/work"))
	return New(cfg, lg, WithFs(fs)), fs, &buf
}

type member struct {
	name string
	body string
	dir  bool
}

func zipBytes(t *testing.T, method uint16, members ...member) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, m := range members {
		hdr := &zip.FileHeader{Name: m.name, Method: method}
		if m.dir {
			hdr.Name = m.name + "/"
		}
		fw, err := w.CreateHeader(hdr)
		require.NoError(t, err)
		if !m.dir {
			_, err = fw.Write([]byte(m.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func tarBytes(t *testing.T, members ...member) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := tar.NewWriter(&buf)
	for _, m := range members {
		hdr := &tar.Header{Name: m.name, Mode: 0o644, Size: int64(len(m.body)), Typeflag: tar.TypeReg}
		if m.dir {
			hdr = &tar.Header{Name: m.name + "/", Mode: 0o755, Typeflag: tar.TypeDir}
		}
		require.NoError(t, w.WriteHeader(hdr))
		if !m.dir {
			_, err := w.Write([]byte(m.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	return ok
}
