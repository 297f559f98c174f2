// Package local 管理扁平上传目录中的文件：流式写入与尽力删除.
package local

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

// NameSeparator 分隔 uuid 与原始文件名.
const NameSeparator = "___"

// ErrWrite 写入文件失败.
var ErrWrite = errors.New("write file failed")

// StoredFile 描述一次成功的写入.
type StoredFile struct {
	Name     string // <uuid>___<原始文件名>
	Path     string // 绝对路径
	Size     int64
	Checksum string // xxh64:<hex>
}

// Store 基于 afero.Fs 的上传目录.
type Store struct {
	fs  afero.Fs
	dir string
}

// New 创建 Store 并保证目录存在. fs 为 nil 时使用操作系统文件系统.
func New(fs afero.Fs, dir string) (*Store, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	if ok, _ := afero.DirExists(fs, dir); !ok {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
		}
	}

	return &Store{fs: fs, dir: dir}, nil
}

// Dir 返回上传目录的绝对路径.
func (s *Store) Dir() string {
	return s.dir
}

// StoredName 返回 uuid 与原始文件名拼接后的落盘文件名.
func StoredName(uuid, filename string) string {
	return uuid + NameSeparator + filename
}

// Save 将 r 流式写入 <dir>/<uuid>___<filename>，同时计算 xxHash64.
// 失败时删除写了一半的文件.
func (s *Store) Save(uuid, filename string, r io.Reader) (*StoredFile, error) {
	name := StoredName(uuid, filename)
	dst := filepath.Join(s.dir, name)

	f, err := s.fs.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	h := xxhash.New()

	n, err := io.Copy(io.MultiWriter(f, h), r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		_ = s.fs.Remove(dst)

		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return &StoredFile{
		Name:     name,
		Path:     dst,
		Size:     n,
		Checksum: "xxh64:" + strconv.FormatUint(h.Sum64(), 16),
	}, nil
}

// Remove 删除文件. 文件不存在不视为错误.
func (s *Store) Remove(path string) error {
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

// Exists 判断文件是否存在.
func (s *Store) Exists(path string) (bool, error) {
	return afero.Exists(s.fs, path)
}

// Open 以只读方式打开已存储的文件.
func (s *Store) Open(path string) (afero.File, error) {
	return s.fs.Open(path)
}
