package cmd

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xingkaixin/handylib/config"
)

const cfgPath = "/etc/handylib/config.toml"

func run(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(fs, "/work")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestRoot_WritesDefaultConfig(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := run(t, fs, "ext", "a.txt")
	require.NoError(t, err)

	cfg, err := config.Load(fs, cfgPath)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestHashCmd(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/a.txt", []byte("hello world"), 0o644))

	out, err := run(t, fs, "hash", "/data/a.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9  /data/a.txt\n")
}

func TestHashCmd_MissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := run(t, fs, "hash", "/data/missing.txt")
	assert.ErrorContains(t, err, "/data/missing.txt")
}

func TestExtCmd(t *testing.T) {
	fs := afero.NewMemMapFs()

	out, err := run(t, fs, "ext", "backup.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "backup\t.tar.gz\n", out)

	out, err = run(t, fs, "ext", "--single", "backup.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, "backup.tar\t.gz\n", out)
}

func TestUniqueCmd(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/report.txt", nil, 0o644))

	out, err := run(t, fs, "unique", "/data", "report.txt")
	require.NoError(t, err)
	assert.Equal(t, "report (0).txt\n", out)
}

func TestMkdirCmd(t *testing.T) {
	fs := afero.NewMemMapFs()

	out, err := run(t, fs, "mkdir", "/data/a/b", "/data/c")
	require.NoError(t, err)
	assert.Contains(t, out, "/data/a/b")

	for _, dir := range []string{"/data/a/b", "/data/c"} {
		ok, err := afero.DirExists(fs, dir)
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}
}

func TestExtractCmd(t *testing.T) {
	fs := afero.NewMemMapFs()
	src := filepath.Join("/data", "in", "logs.tar.gz")
	require.NoError(t, afero.WriteFile(fs, src, tarGz(t, map[string]string{"app.log": "line"}), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/readme.txt", []byte("keep"), 0o644))

	out, err := run(t, fs, "extract", "/data", "--manifest", "/out/manifest.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "成功解压 1 个")

	data, err := afero.ReadFile(fs, "/data/in/app.log")
	require.NoError(t, err)
	assert.Equal(t, "line", string(data))

	f, err := fs.Open("/out/manifest.csv")
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		manifestHeader,
		{"app.log", "/data/in/app.log", "logs.tar.gz", src},
	}, records)
}

func TestExtractCmd_NoArchives(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data", 0o755))

	out, err := run(t, fs, "extract", "/data", "--manifest", "/out/manifest.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "未找到任何压缩文件")

	ok, err := afero.Exists(fs, "/out/manifest.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExtractCmd_ReportsFailures(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/broken.zip", []byte("not a zip"), 0o644))

	_, err := run(t, fs, "extract", "/data", "--manifest", "")
	assert.ErrorContains(t, err, "/data/broken.zip")

	ok, err := afero.Exists(fs, "/data/broken.zip")
	require.NoError(t, err)
	assert.True(t, ok)
}

func tarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}
