package fileutil

import (
	"errors"
	"io"
	"path/filepath"

	"github.com/nwaples/rardecode"
)

// extractRar 解压单卷、无密码的 RAR。
func (k *Kit) extractRar(dir, filename string, flat bool) ([]string, error) {
	f, err := k.fs.Open(filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	var out []string
	for {
		header, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, err
		}
		if header.IsDir {
			continue
		}

		rel, err := k.memberPath(dir, decodeMemberName(header.Name), flat)
		if err != nil {
			return out, err
		}
		if err := k.writeMember(filepath.Join(dir, rel), r, 0o644); err != nil {
			return out, err
		}
		out = append(out, rel)
	}
	return out, nil
}
