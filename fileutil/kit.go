// Package fileutil 提供文件相关的小工具：SHA-256、避免重名的文件名、
// 多段扩展名拆分、目录创建，以及 zip/gz/tar/rar/iso 的解压。
//
// 所有操作在失败时都会写一条 fail 日志并返回错误。配置中 debug 关闭时，
// 返回的是包级哨兵错误（ErrHash、ErrMkdir、ErrExtract 等），细节只在日志里；
// debug 开启时哨兵错误会包装底层错误一起返回，可用 errors.Is 判断具体原因。
package fileutil

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/xingkaixin/handylib/config"
	"github.com/xingkaixin/handylib/logger"
)

// Sentinel errors for package fileutil.
var (
	ErrHash    = errors.New("无法计算 SHA256")
	ErrMkdir   = errors.New("无法创建目录")
	ErrExtract = errors.New("解压失败")

	// ErrCorruptArchive 表示压缩包校验未通过，没有解出任何文件。
	ErrCorruptArchive = errors.New("压缩包格式错误或内容损坏")
	// ErrUnsafePath 表示成员路径会逃出目标目录。
	ErrUnsafePath = errors.New("成员路径超出目标目录")
	// ErrExpectedFile 表示需要文件却得到目录。
	ErrExpectedFile = errors.New("需要文件，得到的是目录")
)

// callerName 是本包日志的调用方名称。
const callerName = "fileutil"

// Kit 持有文件工具共用的配置、日志器和文件系统。
type Kit struct {
	cfg *config.Config
	log *logger.Logger
	fs  afero.Fs
}

// Option 配置 Kit。
type Option func(*Kit)

// WithFs 指定操作的文件系统，默认 afero.NewOsFs()。
func WithFs(fs afero.Fs) Option {
	return func(k *Kit) { k.fs = fs }
}

// New 创建 Kit。cfg 为 nil 时使用默认配置，log 为 nil 时按 cfg 新建日志器。
func New(cfg *config.Config, log *logger.Logger, opts ...Option) *Kit {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.New(cfg)
	}
	k := &Kit{cfg: cfg, log: log, fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Fs 返回 Kit 使用的文件系统。
func (k *Kit) Fs() afero.Fs {
	return k.fs
}

func (k *Kit) logf(severity logger.Severity, format string, args ...any) {
	// 日志器只会在目录创建失败时报错，普通消息忽略
	_ = k.log.Log(fmt.Sprintf(format, args...), severity, logger.Caller(callerName))
}

// fail 记录失败并按 debug 设置决定返回的错误。
func (k *Kit) fail(sentinel, cause error, format string, args ...any) error {
	logErr := k.log.Log(fmt.Sprintf(format, args...), logger.Fail, logger.Caller(callerName))
	if !k.cfg.Debug {
		return sentinel
	}
	err := sentinel
	if cause != nil && !errors.Is(cause, sentinel) {
		err = fmt.Errorf("%w: %w", sentinel, cause)
	}
	if logErr != nil {
		err = multierror.Append(err, logErr)
	}
	return err
}
