package fileutil

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/kdomanski/iso9660"
)

func (k *Kit) extractISO(dir, filename string, flat bool) ([]string, error) {
	f, err := k.fs.Open(filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := iso9660.OpenImage(f)
	if err != nil {
		return nil, fmt.Errorf("无法打开 ISO 镜像: %w", err)
	}
	root, err := img.RootDir()
	if err != nil {
		return nil, fmt.Errorf("无法获取根目录: %w", err)
	}

	var out []string
	err = k.walkISO(root, "", dir, flat, &out)
	return out, err
}

func (k *Kit) walkISO(node *iso9660.File, prefix, dir string, flat bool, out *[]string) error {
	children, err := node.GetChildren()
	if err != nil {
		return fmt.Errorf("无法获取子目录 %s: %w", prefix, err)
	}

	for _, child := range children {
		name := decodeMemberName(child.Name())
		switch name {
		case "", ".", "..", "\x00", "\x01":
			continue
		}
		member := path.Join(prefix, name)

		if child.IsDir() {
			if err := k.walkISO(child, member, dir, flat, out); err != nil {
				return err
			}
			continue
		}

		rel, err := k.memberPath(dir, member, flat)
		if err != nil {
			return err
		}
		if err := k.writeMember(filepath.Join(dir, rel), child.Reader(), 0o644); err != nil {
			return fmt.Errorf("无法写入文件 %s: %w", rel, err)
		}
		*out = append(*out, rel)
	}
	return nil
}
