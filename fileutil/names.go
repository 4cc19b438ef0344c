package fileutil

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// SplitExt 把文件名拆成主名和扩展名。
// loop 为 true 时拆出全部扩展名（a.tar.gz -> a, .tar.gz），否则只拆最后一个（a.tar, .gz）。
// 以点开头的文件名中开头的点不算扩展名，.bashrc 没有扩展名。
func SplitExt(filename string, loop bool) (base, ext string) {
	base, ext = splitext(filename)
	for loop {
		b, e := splitext(base)
		if e == "" {
			break
		}
		base, ext = b, e+ext
	}
	return base, ext
}

// splitext 只拆最后一个扩展名，目录部分中的点不参与。
func splitext(p string) (string, string) {
	sep := strings.LastIndexAny(p, `/\`)
	dot := strings.LastIndex(p, ".")
	if dot <= sep {
		return p, ""
	}
	// 跳过文件名开头的点
	for i := sep + 1; i < dot; i++ {
		if p[i] != '.' {
			return p[:dot], p[dot:]
		}
	}
	return p, ""
}

// UniqueFilename 返回在 dir 中不会与已有文件冲突的文件名。
// 没有冲突时原样返回，否则依次尝试 "名 (0).ext"、"名 (1).ext" ……
func (k *Kit) UniqueFilename(dir, filename string) string {
	if !k.exists(filepath.Join(dir, filename)) {
		return filename
	}
	base, ext := SplitExt(filename, true)
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if !k.exists(filepath.Join(dir, candidate)) {
			return candidate
		}
	}
}

func (k *Kit) exists(path string) bool {
	ok, err := afero.Exists(k.fs, path)
	return err == nil && ok
}
