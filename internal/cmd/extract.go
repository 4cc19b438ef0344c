package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/xingkaixin/handylib/fileutil"
	"github.com/xingkaixin/handylib/logger"
)

// DefaultManifest 是 extract 默认生成的文件清单名。
const DefaultManifest = "file_manifest.csv"

// --- Manifest 数据结构 ---
type ManifestEntry struct {
	Filename          string
	Filepath          string
	SourceArchiveName string
	SourceArchivePath string
}

func (e ManifestEntry) record() []string {
	return []string{e.Filename, e.Filepath, e.SourceArchiveName, e.SourceArchivePath}
}

var manifestHeader = []string{"filename", "filepath", "source_archive_name", "source_archive_path"}

func newExtractCmd(a *app) *cobra.Command {
	var (
		flat     bool
		noLoop   bool
		manifest string
	)
	cmd := &cobra.Command{
		Use:   "extract ROOT",
		Short: "解压 ROOT 下所有支持的压缩文件",
		Long: fmt.Sprintf(`递归查找 ROOT 下扩展名为 %v 的文件并就地解压，成功后删除源文件。
默认还会再解一层嵌套压缩（如 .tar.gz），最后把解出的文件写入 CSV 清单。`, fileutil.ArchiveExts()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []fileutil.ExtractOption
			if flat {
				opts = append(opts, fileutil.Flat())
			}
			if noLoop {
				opts = append(opts, fileutil.NoLoop())
			}
			return a.extractAll(cmd, args[0], manifest, opts)
		},
	}
	cmd.Flags().BoolVar(&flat, "flat", false, "不保留压缩包内的目录结构")
	cmd.Flags().BoolVar(&noLoop, "no-loop", false, "只解一层，不处理嵌套压缩")
	cmd.Flags().StringVar(&manifest, "manifest", DefaultManifest, "文件清单输出路径，为空则不生成")
	return cmd
}

func (a *app) extractAll(cmd *cobra.Command, root, manifest string, opts []fileutil.ExtractOption) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	a.report("================== 开始执行 ==================", logger.Header)

	archives, err := findArchives(a.fs, root)
	if err != nil {
		return fmt.Errorf("无法遍历目录 %s: %w", root, err)
	}
	if len(archives) == 0 {
		a.report("在指定目录中未找到任何压缩文件。", logger.Warn)
		return nil
	}

	var (
		entries []ManifestEntry
		merr    *multierror.Error
		done    int
	)
	for _, archive := range archives {
		if err := cmd.Context().Err(); err != nil {
			merr = multierror.Append(merr, err)
			break
		}

		dir := filepath.Dir(archive)
		res, err := a.kit.Extract(dir, filepath.Base(archive), opts...)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", archive, err))
		}
		if res.Status != fileutil.Extracted {
			continue
		}
		done++

		// 嵌套压缩被解开后已不存在，只记录仍在磁盘上的文件
		for _, rel := range slices.Concat(res.Files, res.Unwrapped) {
			path := filepath.Join(dir, rel)
			if ok, _ := afero.Exists(a.fs, path); !ok {
				continue
			}
			entries = append(entries, ManifestEntry{
				Filename:          filepath.Base(path),
				Filepath:          path,
				SourceArchiveName: filepath.Base(archive),
				SourceArchivePath: archive,
			})
		}
	}

	a.report(fmt.Sprintf("共找到 %d 个压缩文件，成功解压 %d 个，得到 %d 个文件", len(archives), done, len(entries)), logger.Success)

	if manifest != "" {
		if err := writeManifest(a.fs, manifest, entries); err != nil {
			merr = multierror.Append(merr, err)
		} else {
			a.report(fmt.Sprintf("文件清单 '%s' 已成功生成。", manifest), logger.Info)
		}
	}

	a.report("================== 执行完毕 ==================", logger.Header)
	return merr.ErrorOrNil()
}

// findArchives 返回 root 下所有支持解压的文件，按路径排序。
func findArchives(fs afero.Fs, root string) ([]string, error) {
	var archives []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && fileutil.IsArchive(path) {
			archives = append(archives, path)
		}
		return nil
	})
	return archives, err
}

func writeManifest(fs afero.Fs, path string, entries []ManifestEntry) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("无法创建 CSV 文件: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(manifestHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write(e.record()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("无法写入 CSV 文件: %w", err)
	}
	return f.Close()
}
