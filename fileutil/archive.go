package fileutil

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/xingkaixin/handylib/logger"
)

// --- 解压结果 ---

// Status 描述一次解压的结果。
type Status int

const (
	// Skipped 表示文件不是支持的压缩格式，无需处理。
	Skipped Status = iota
	// Extracted 表示解压成功，源文件已删除。
	Extracted
	// Failed 表示解压失败。
	Failed
)

func (s Status) String() string {
	switch s {
	case Skipped:
		return "skipped"
	case Extracted:
		return "extracted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result 是 Extract 的输出。
type Result struct {
	Status Status
	// Files 是第一层解出的文件，路径相对于解压目录。
	Files []string
	// Unwrapped 是第二轮从 Files 中再解出的文件，路径相对于解压目录。
	Unwrapped []string
}

// ExtractOption 调整 Extract 的行为。
type ExtractOption func(*extractOptions)

type extractOptions struct {
	flat bool
	loop bool
}

// Flat 丢弃压缩包内的目录结构，所有文件直接解到目标目录，重名时自动改名。
func Flat() ExtractOption {
	return func(o *extractOptions) { o.flat = true }
}

// NoLoop 只解一层，不再处理解出的嵌套压缩文件。
func NoLoop() ExtractOption {
	return func(o *extractOptions) { o.loop = false }
}

// --- 格式分派 ---

type extractFunc func(k *Kit, dir, filename string, flat bool) ([]string, error)

type format struct {
	label   string
	extract extractFunc
}

// 支持的压缩文件扩展名
var formats = map[string]format{
	".zip": {label: "ZIP 压缩包", extract: (*Kit).extractZip},
	".gz":  {label: "GZIP 压缩文件", extract: (*Kit).extractGzip},
	".tar": {label: "TAR 归档", extract: (*Kit).extractTar},
	".rar": {label: "RAR 压缩包", extract: (*Kit).extractRar},
	".iso": {label: "ISO 镜像", extract: (*Kit).extractISO},
}

// ArchiveExts 返回 Extract 能处理的扩展名。
func ArchiveExts() []string {
	return []string{".zip", ".gz", ".tar", ".rar", ".iso"}
}

// IsArchive 判断文件名的最后一个扩展名是否为支持的压缩格式。
func IsArchive(filename string) bool {
	_, ext := SplitExt(filepath.Base(filename), false)
	_, ok := formats[strings.ToLower(ext)]
	return ok
}

var errCorrupt = fmt.Errorf("%w: %w", ErrExtract, ErrCorruptArchive)

// Extract 解压 dir 下的 filename，成功后删除源文件。
// 默认会对解出的每个文件再调用一次 Extract（只解一层），
// 这样 example.tar.gz 会先变成 example.tar，再变成其中的文件。
// 第二轮的失败会汇总返回，此时 Result 仍然有效。
func (k *Kit) Extract(dir, filename string, opts ...ExtractOption) (Result, error) {
	o := extractOptions{loop: true}
	for _, opt := range opts {
		opt(&o)
	}

	res, err := k.extractOne(dir, filename, o.flat)
	if err != nil || res.Status != Extracted || !o.loop {
		return res, err
	}

	var merr *multierror.Error
	for _, name := range res.Files {
		sub := filepath.Dir(name)
		var nestedOpts []ExtractOption
		if o.flat {
			nestedOpts = append(nestedOpts, Flat())
		}
		// 关闭 loop，避免无限递归
		nestedOpts = append(nestedOpts, NoLoop())

		nested, err := k.Extract(filepath.Join(dir, sub), filepath.Base(name), nestedOpts...)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		for _, f := range nested.Files {
			res.Unwrapped = append(res.Unwrapped, filepath.Join(sub, f))
		}
	}
	return res, merr.ErrorOrNil()
}

func (k *Kit) extractOne(dir, filename string, flat bool) (Result, error) {
	_, ext := SplitExt(filepath.Base(filename), false)
	f, ok := formats[strings.ToLower(ext)]
	if !ok {
		return Result{Status: Skipped}, nil
	}

	k.logf(logger.Info, "正在解压%s %s", f.label, filename)
	files, err := f.extract(k, dir, filename, flat)
	if err != nil {
		if errors.Is(err, ErrCorruptArchive) {
			return Result{Status: Failed}, k.fail(errCorrupt, err, "%s格式错误或内容损坏，无法处理: %s", f.label, filename)
		}
		return Result{Status: Failed, Files: files}, k.fail(ErrExtract, err, "无法解压%s %s: %v", f.label, filename, err)
	}

	// 已拿到内容，删除源文件
	src := filepath.Join(dir, filename)
	if err := k.fs.Remove(src); err != nil {
		return Result{Status: Failed, Files: files}, k.fail(ErrExtract, err, "解压后无法删除源文件 %s: %v", src, err)
	}
	return Result{Status: Extracted, Files: files}, nil
}

// --- 解压函数 ---

func (k *Kit) extractZip(dir, filename string, flat bool) ([]string, error) {
	f, err := k.fs.Open(filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, err
	}

	// 先完整读一遍校验 CRC，有损坏就一个文件都不解
	if name, err := testZip(r); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptArchive, name, err)
	}

	var out []string
	for _, zf := range r.File {
		name := decodeMemberName(zf.Name)
		if zf.FileInfo().IsDir() {
			if flat {
				continue
			}
			rel, err := k.memberPath(dir, name, false)
			if err != nil {
				return out, err
			}
			if err := k.fs.MkdirAll(filepath.Join(dir, rel), 0o755); err != nil {
				return out, err
			}
			continue
		}

		rel, err := k.memberPath(dir, name, flat)
		if err != nil {
			return out, err
		}
		rc, err := zf.Open()
		if err != nil {
			return out, err
		}
		err = k.writeMember(filepath.Join(dir, rel), rc, zf.Mode())
		rc.Close()
		if err != nil {
			return out, err
		}
		out = append(out, rel)
	}
	return out, nil
}

// testZip 读取每个成员直到结尾，返回第一个损坏成员的名字。
func testZip(r *zip.Reader) (string, error) {
	for _, zf := range r.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return zf.Name, err
		}
		_, err = io.Copy(io.Discard, rc)
		rc.Close()
		if err != nil {
			return zf.Name, err
		}
	}
	return "", nil
}

func (k *Kit) extractGzip(dir, filename string, _ bool) ([]string, error) {
	f, err := k.fs.Open(filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	// 解出的文件放在源文件旁边，filename 可以带子目录
	sub := filepath.Dir(filename)
	base, _ := SplitExt(filepath.Base(filename), false)
	out := filepath.Join(sub, k.UniqueFilename(filepath.Join(dir, sub), base))
	if err := k.writeMember(filepath.Join(dir, out), gz, 0o644); err != nil {
		return nil, err
	}
	return []string{out}, nil
}

func (k *Kit) extractTar(dir, filename string, flat bool) ([]string, error) {
	f, err := k.fs.Open(filepath.Join(dir, filename))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, err
		}
		// 只处理普通文件
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		rel, err := k.memberPath(dir, hdr.Name, flat)
		if err != nil {
			return out, err
		}
		if err := k.writeMember(filepath.Join(dir, rel), tr, hdr.FileInfo().Mode()); err != nil {
			return out, err
		}
		out = append(out, rel)
	}
	return out, nil
}

// --- 公共辅助 ---

// memberPath 返回成员写入位置相对于 dir 的路径。
// flat 模式下只保留文件名并避开重名；否则保留目录结构，但不允许逃出 dir。
func (k *Kit) memberPath(dir, name string, flat bool) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if flat {
		base := path.Base(name)
		if base == "/" || base == "." || base == ".." {
			return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
		}
		return k.UniqueFilename(dir, base), nil
	}

	rel := filepath.FromSlash(strings.TrimSuffix(name, "/"))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return filepath.Clean(rel), nil
}

// writeMember 把 r 的内容写到 dst，必要时创建父目录。写入失败时删除残留文件。
func (k *Kit) writeMember(dst string, r io.Reader, mode os.FileMode) error {
	if err := k.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := k.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		k.fs.Remove(dst)
		return err
	}
	return nil
}
