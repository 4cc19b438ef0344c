// Package logger 提供带颜色的分级日志，可同时输出到控制台和按调用方划分的日志文件。
//
// 显示代码、输出策略和时间格式都来自 config.Config：
//
//	cfg, _ := config.Load(afero.NewOsFs(), config.DefaultPath())
//	log := logger.New(cfg).Func()
//	log("开始处理", logger.Header)
//	log("解压失败", logger.Fail, logger.Caller("fileutil"))
//
// 日志文件写在 <工作目录>/logs/<模块名>.log，追加模式。
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/spf13/afero"
	"github.com/xingkaixin/handylib/config"
)

// Severity 是日志类型，决定显示代码以及是否写入文件。
type Severity string

const (
	Header  Severity = "header"
	Info    Severity = "info"
	Success Severity = "success"
	Warn    Severity = "warn"
	Fail    Severity = "fail"
)

// LogDir 是工作目录下存放日志文件的子目录名。
const LogDir = "logs"

// selfCaller 是日志器自身产生的消息所归属的调用方。
const selfCaller = "logger"

// Func 是可以直接当作函数调用的日志器。
type Func func(message string, severity Severity, opts ...LogOption) error

// Logger 按配置把消息输出到控制台和日志文件。
type Logger struct {
	cfg   *config.Config
	fs    afero.Fs
	out   io.Writer
	dir   string
	clock func() time.Time

	mu sync.Mutex
	// keepLog 初始取自配置，日志目录创建失败后关闭，不回写配置。
	keepLog bool
}

// Option 配置 Logger。
type Option func(*Logger)

// WithFs 指定日志文件所在的文件系统。
func WithFs(fs afero.Fs) Option {
	return func(l *Logger) { l.fs = fs }
}

// WithOutput 指定控制台输出，默认 os.Stdout。
func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.out = w }
}

// WithWorkDir 指定 logs 目录的父目录，默认当前工作目录。
func WithWorkDir(dir string) Option {
	return func(l *Logger) { l.dir = dir }
}

// WithClock 替换时间来源。
func WithClock(clock func() time.Time) Option {
	return func(l *Logger) { l.clock = clock }
}

// New 创建日志器。cfg 为 nil 时使用 config.Default()。
func New(cfg *config.Config, opts ...Option) *Logger {
	if cfg == nil {
		cfg = config.Default()
	}
	l := &Logger{
		cfg:     cfg,
		fs:      afero.NewOsFs(),
		out:     os.Stdout,
		clock:   time.Now,
		keepLog: cfg.KeepLog,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.dir == "" {
		if wd, err := os.Getwd(); err == nil {
			l.dir = wd
		} else {
			l.dir = "."
		}
	}
	return l
}

// LogOption 调整单条日志的行为。
type LogOption func(*entry)

// Force 强制输出到控制台，不受 verbose 和 force_print 影响。
func Force() LogOption {
	return func(e *entry) { e.force = true }
}

// Caller 显式指定调用方名称，跳过调用栈推断。
func Caller(name string) LogOption {
	return func(e *entry) { e.caller = name }
}

type entry struct {
	message  string
	severity Severity
	force    bool
	caller   string
}

// Log 记录一条日志。
// 只有在 debug 开启且日志目录无法创建时才返回错误。
func (l *Logger) Log(message string, severity Severity, opts ...LogOption) error {
	return l.emit(3, message, severity, opts)
}

// Func 返回以函数值形式调用的日志器。
func (l *Logger) Func() Func {
	return func(message string, severity Severity, opts ...LogOption) error {
		return l.emit(3, message, severity, opts)
	}
}

// FileLogging 报告文件日志当前是否开启。
func (l *Logger) FileLogging() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.keepLog
}

// emit 的 depth 是从 resolveCaller 起算到用户代码的栈深度。
func (l *Logger) emit(depth int, message string, severity Severity, opts []LogOption) error {
	e := entry{message: message, severity: severity}
	for _, opt := range opts {
		opt(&e)
	}
	if e.caller == "" {
		e.caller = resolveCaller(depth)
	}

	// 处理无效的日志类型
	var warnErr error
	if _, ok := l.cfg.Format(string(e.severity)); !ok {
		// 警告本身可能先碰到日志目录失败，错误不能丢
		warnErr = l.write(entry{
			message:  fmt.Sprintf("%s 指定了无效的日志类型: %s", e.caller, e.severity),
			severity: Warn,
			force:    true,
			caller:   selfCaller,
		})
		e.severity = Info
	}

	if err := l.write(e); err != nil {
		return err
	}
	return warnErr
}

func (l *Logger) write(e entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	code, _ := l.cfg.Format(string(e.severity))
	end := l.cfg.End()
	ts := l.timestamp()

	if l.cfg.Verbose || e.force || l.cfg.ForcesPrint(string(e.severity)) {
		fmt.Fprintln(l.out, code+render(l.cfg.ShowCaller, l.cfg.ShowTimestamp, e.caller, e.message, ts)+end)
	}

	if !l.keepLog || !l.cfg.Persists(string(e.severity)) {
		return nil
	}

	logPath := filepath.Join(l.dir, LogDir)
	if err := l.fs.MkdirAll(logPath, 0o755); err != nil {
		l.keepLog = false
		failCode, _ := l.cfg.Format(string(Fail))
		fmt.Fprintln(l.out, failCode+render(l.cfg.ShowCaller, l.cfg.ShowTimestamp, selfCaller, "无法创建日志目录，已停止写入日志文件", ts)+end)
		if l.cfg.Debug {
			return fmt.Errorf("创建日志目录 %s: %w", logPath, err)
		}
		return nil
	}

	f, err := l.fs.OpenFile(filepath.Join(logPath, moduleOf(e.caller)+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		if l.cfg.Debug {
			return fmt.Errorf("打开日志文件: %w", err)
		}
		return nil
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s%s - %s%s\n", code, ts, e.message, end); err != nil && l.cfg.Debug {
		return fmt.Errorf("写入日志文件: %w", err)
	}
	return nil
}

// render 按显示设置拼出一行，不含颜色代码。
func render(showCaller, showTimestamp bool, caller, message, ts string) string {
	switch {
	case showCaller && showTimestamp:
		return fmt.Sprintf("[%s] %s - %s", caller, message, ts)
	case showCaller:
		return fmt.Sprintf("[%s] %s", caller, message)
	case showTimestamp:
		return fmt.Sprintf("%s - %s", message, ts)
	default:
		return message
	}
}

func (l *Logger) timestamp() string {
	now := l.clock()
	if l.cfg.DatetimeFormat == "" {
		return now.Format(time.DateTime)
	}
	s, err := strftime.Format(l.cfg.DatetimeFormat, now)
	if err != nil {
		return now.Format(time.DateTime)
	}
	return s
}

// moduleOf 取调用方名称中第一个 "." 之前的部分作为日志文件名。
func moduleOf(caller string) string {
	module, _, _ := strings.Cut(caller, ".")
	module = strings.NewReplacer("/", "_", "\\", "_").Replace(module)
	if module == "" {
		return "unknown"
	}
	return module
}
