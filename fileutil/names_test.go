package fileutil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitExt(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		loop     bool
		wantBase string
		wantExt  string
	}{
		{name: "all suffixes", filename: "a.tar.gz", loop: true, wantBase: "a", wantExt: ".tar.gz"},
		{name: "last suffix only", filename: "a.tar.gz", loop: false, wantBase: "a.tar", wantExt: ".gz"},
		{name: "no suffix", filename: "README", loop: true, wantBase: "README", wantExt: ""},
		{name: "dotfile", filename: ".bashrc", loop: true, wantBase: ".bashrc", wantExt: ""},
		{name: "dotfile with suffix", filename: ".config.toml", loop: true, wantBase: ".config", wantExt: ".toml"},
		{name: "dots in directory", filename: "v1.2/notes", loop: true, wantBase: "v1.2/notes", wantExt: ""},
		{name: "directory and suffixes", filename: "v1.2/notes.tar.gz", loop: true, wantBase: "v1.2/notes", wantExt: ".tar.gz"},
		{name: "trailing dot", filename: "a.", loop: false, wantBase: "a", wantExt: "."},
		{name: "suffixed name", filename: "report (1).txt", loop: true, wantBase: "report (1)", wantExt: ".txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, ext := SplitExt(tt.filename, tt.loop)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestSplitExt_SuffixCount(t *testing.T) {
	suffixes := []string{".a", ".bb", ".c1", ".tar", ".gz"}
	for n := 1; n <= len(suffixes); n++ {
		name := "file" + strings.Join(suffixes[:n], "")

		base, ext := SplitExt(name, true)
		assert.Equal(t, "file", base, name)
		assert.Equal(t, strings.Join(suffixes[:n], ""), ext, name)

		base, ext = SplitExt(name, false)
		assert.Equal(t, suffixes[n-1], ext, name)
		assert.Equal(t, strings.TrimSuffix(name, suffixes[n-1]), base, name)
	}
}

func TestUniqueFilename(t *testing.T) {
	k, fs, _ := newTestKit(t, false)

	assert.Equal(t, "a.txt", k.UniqueFilename(dataDir, "a.txt"))

	writeFile(t, fs, filepath.Join(dataDir, "a.txt"), nil)
	assert.Equal(t, "a (0).txt", k.UniqueFilename(dataDir, "a.txt"))

	writeFile(t, fs, filepath.Join(dataDir, "a (0).txt"), nil)
	assert.Equal(t, "a (1).txt", k.UniqueFilename(dataDir, "a.txt"))
}

func TestUniqueFilename_MultiPartExtension(t *testing.T) {
	k, fs, _ := newTestKit(t, false)
	writeFile(t, fs, filepath.Join(dataDir, "backup.tar.gz"), nil)

	assert.Equal(t, "backup (0).tar.gz", k.UniqueFilename(dataDir, "backup.tar.gz"))
}

func TestUniqueFilename_DirectoryCollides(t *testing.T) {
	k, fs, _ := newTestKit(t, false)
	assert.NoError(t, fs.Mkdir(filepath.Join(dataDir, "out"), 0o755))

	assert.Equal(t, "out (0)", k.UniqueFilename(dataDir, "out"))
}

func TestIsArchive(t *testing.T) {
	tests := map[string]bool{
		"a.zip":        true,
		"A.ZIP":        true,
		"a.tar.gz":     true,
		"a.tar":        true,
		"a.rar":        true,
		"disk.iso":     true,
		"notes.txt":    false,
		"gz":           false,
		"dir.zip/file": false,
	}
	for name, want := range tests {
		assert.Equal(t, want, IsArchive(name), name)
	}
}
