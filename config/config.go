// Package config 负责加载和保存 handylib 的配置文件。
//
// 配置文件不存在或为空时，会生成一份默认配置并立即写回磁盘。
// Load 返回的 *Config 由调用方显式传给 logger 和 fileutil，包内不持有全局状态。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
)

// FileName 是默认配置文件名。
const FileName = "config.toml"

// EndKey 是 LogFormat 中结束着色的键。
const EndKey = "end"

var (
	// ErrDecode 表示配置文件内容无法解析。
	ErrDecode = errors.New("无法解析配置文件")
	// ErrEncode 表示配置无法序列化。
	ErrEncode = errors.New("无法序列化配置")
)

// --- 配置结构 ---
type Config struct {
	// LogFormat 保存每种日志类型的显示代码，另含 "end" 结束代码。
	LogFormat map[string]string `toml:"log_format" yaml:"log_format"`
	// ForcePrint 中的日志类型总是输出到控制台。
	ForcePrint []string `toml:"force_print" yaml:"force_print"`
	Verbose    bool     `toml:"verbose" yaml:"verbose"`

	ShowTimestamp bool `toml:"show_timestamp" yaml:"show_timestamp"`
	ShowCaller    bool `toml:"show_caller" yaml:"show_caller"`

	// LogLevels 中的日志类型写入日志文件，仅在 KeepLog 为 true 时生效。
	LogLevels []string `toml:"log_levels" yaml:"log_levels"`
	KeepLog   bool     `toml:"keep_log" yaml:"keep_log"`

	// Debug 为 true 时，失败会返回底层错误而不是单纯的失败标记。
	Debug bool `toml:"debug" yaml:"debug"`

	DateFormat     string `toml:"date_format" yaml:"date_format"`
	DatetimeFormat string `toml:"datetime_format" yaml:"datetime_format"`
}

// Default 返回默认配置。
func Default() *Config {
	return &Config{
		LogFormat: map[string]string{
			"header":  "\033[95m", // 紫
			"info":    "\033[94m", // 蓝
			"success": "\033[92m", // 绿
			"warn":    "\033[93m", // 黄
			"fail":    "\033[91m", // 红
			EndKey:    "\033[0m",
		},
		ForcePrint:     []string{"fail"},
		Verbose:        true,
		ShowTimestamp:  true,
		ShowCaller:     true,
		LogLevels:      []string{"fail", "warn"},
		KeepLog:        false,
		Debug:          false,
		DateFormat:     "%y-%m-%d",
		DatetimeFormat: "%y-%m-%d %H:%M:%S",
	}
}

// DefaultPath 返回可执行文件所在目录下的 config.toml。
// 无法确定可执行文件位置时退回当前工作目录。
func DefaultPath() string {
	exe, err := os.Executable()
	if err != nil {
		return FileName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), FileName)
}

// --- 配置加载 ---

// Load 读取 path 处的配置文件。
// 文件不存在时先创建一个空文件占位；文件为空时生成默认配置并写回。
// 非空的配置原样使用，不与默认值合并。
func Load(fs afero.Fs, path string) (*Config, error) {
	c := codecFor(path)

	data, err := afero.ReadFile(fs, path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := afero.WriteFile(fs, path, nil, 0o644); err != nil {
			return nil, fmt.Errorf("无法创建配置文件 %s: %w", path, err)
		}
		data = nil
	case err != nil:
		return nil, fmt.Errorf("无法读取配置文件 %s: %w", path, err)
	}

	empty, err := isEmpty(c, data)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDecode, path, err)
	}
	if empty {
		cfg := Default()
		if err := Save(fs, path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	var cfg Config
	if err := c.unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDecode, path, err)
	}
	return &cfg, nil
}

// Save 把 cfg 按 path 的扩展名序列化写入。
func Save(fs afero.Fs, path string, cfg *Config) error {
	data, err := codecFor(path).marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("无法创建配置目录 %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("无法写入配置文件 %s: %w", path, err)
	}
	return nil
}

func isEmpty(c codec, data []byte) (bool, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return true, nil
	}
	var doc map[string]any
	if err := c.unmarshal(data, &doc); err != nil {
		return false, err
	}
	return len(doc) == 0, nil
}

// --- 使用处的存在性检查 ---

// Format 返回日志类型对应的显示代码。
func (c *Config) Format(severity string) (string, bool) {
	code, ok := c.LogFormat[severity]
	return code, ok
}

// End 返回结束代码，未配置时为空串。
func (c *Config) End() string {
	return c.LogFormat[EndKey]
}

// ForcesPrint 判断该日志类型是否总是输出到控制台。
func (c *Config) ForcesPrint(severity string) bool {
	return slices.Contains(c.ForcePrint, severity)
}

// Persists 判断该日志类型是否写入日志文件。
func (c *Config) Persists(severity string) bool {
	return slices.Contains(c.LogLevels, severity)
}
