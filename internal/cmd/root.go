// Package cmd 实现 handylib 命令行：对 fileutil 的各项操作做一层薄包装。
package cmd

import (
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/xingkaixin/handylib/config"
	"github.com/xingkaixin/handylib/fileutil"
	"github.com/xingkaixin/handylib/logger"
)

// app 保存一次命令执行共用的依赖，在 PersistentPreRunE 中初始化。
type app struct {
	fs      afero.Fs
	workDir string

	cfgPath string
	cfg     *config.Config
	log     *logger.Logger
	kit     *fileutil.Kit
}

// NewRootCmd 创建使用本地文件系统的根命令。
func NewRootCmd() *cobra.Command {
	return newRootCmd(afero.NewOsFs(), "")
}

// newRootCmd 允许测试替换文件系统和日志工作目录。
func newRootCmd(fs afero.Fs, workDir string) *cobra.Command {
	a := &app{fs: fs, workDir: workDir}

	root := &cobra.Command{
		Use:   "handylib",
		Short: "文件小工具：哈希、文件名处理、建目录、批量解压",
		Long: `handylib 把 fileutil 的常用操作包装成命令行。

日志的颜色、输出策略和是否写日志文件都由配置文件决定，
配置文件默认位于可执行文件所在目录，不存在时自动生成。`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.OutOrStdout())
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", config.DefaultPath(), "配置文件路径（.toml、.yml 或 .yaml）")

	root.AddCommand(
		newHashCmd(a),
		newExtCmd(a),
		newUniqueCmd(a),
		newMkdirCmd(a),
		newExtractCmd(a),
	)
	return root
}

func (a *app) setup(out io.Writer) error {
	cfg, err := config.Load(a.fs, a.cfgPath)
	if err != nil {
		return err
	}

	opts := []logger.Option{logger.WithFs(a.fs), logger.WithOutput(out)}
	if a.workDir != "" {
		opts = append(opts, logger.WithWorkDir(a.workDir))
	}

	a.cfg = cfg
	a.log = logger.New(cfg, opts...)
	a.kit = fileutil.New(cfg, a.log, fileutil.WithFs(a.fs))
	return nil
}

// report 以 cli 的名义写一条日志。
func (a *app) report(message string, severity logger.Severity) {
	_ = a.log.Log(message, severity, logger.Caller("cli"))
}
