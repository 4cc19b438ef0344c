package cmd

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/xingkaixin/handylib/fileutil"
)

func newHashCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash FILE...",
		Short: "计算文件的 SHA-256",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var merr *multierror.Error
			for _, path := range args {
				sum, err := a.kit.SHA256(path)
				if err != nil {
					merr = multierror.Append(merr, fmt.Errorf("%s: %w", path, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, path)
			}
			return merr.ErrorOrNil()
		},
	}
}

func newExtCmd(a *app) *cobra.Command {
	var single bool
	cmd := &cobra.Command{
		Use:   "ext NAME",
		Short: "拆分文件名和扩展名",
		Long: `默认把所有后缀都算作扩展名（a.tar.gz -> a + .tar.gz），
--single 只拆最后一个（a.tar.gz -> a.tar + .gz）。`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, ext := fileutil.SplitExt(args[0], !single)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", base, ext)
			return nil
		},
	}
	cmd.Flags().BoolVar(&single, "single", false, "只拆分最后一个扩展名")
	return cmd
}

func newUniqueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unique DIR NAME",
		Short: "给出 DIR 中不会重名的文件名",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.kit.UniqueFilename(args[0], args[1]))
			return nil
		},
	}
}

func newMkdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir PATH...",
		Short: "创建目录（含父目录），已存在则跳过",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var merr *multierror.Error
			for _, path := range args {
				if err := a.kit.Mkdir(path); err != nil {
					merr = multierror.Append(merr, fmt.Errorf("%s: %w", path, err))
				}
			}
			return merr.ErrorOrNil()
		},
	}
}
