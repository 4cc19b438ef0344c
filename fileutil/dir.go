package fileutil

import (
	"fmt"
	"syscall"

	"github.com/spf13/afero"
	"github.com/xingkaixin/handylib/logger"
)

// Mkdir 确保目录存在。已存在或创建成功返回 nil。
func (k *Kit) Mkdir(path string) error {
	isDir, err := afero.IsDir(k.fs, path)
	if err == nil && isDir {
		return nil
	}
	if err == nil {
		// 同名路径存在但不是目录
		return k.fail(ErrMkdir, fmt.Errorf("%s: %w", path, syscall.ENOTDIR), "尝试创建目录但失败: %s", path)
	}
	if err := k.fs.MkdirAll(path, 0o755); err != nil {
		return k.fail(ErrMkdir, err, "尝试创建目录但失败: %s", path)
	}
	k.logf(logger.Success, "已创建新目录: %s", path)
	return nil
}
