package local_test

import (
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"

	"github.com/yeisme/pdfvault/pkg/internal/storage/local"
)

// TestSave 测试写入文件名、大小和校验和.
func TestSave(t *testing.T) {
	fs := afero.NewMemMapFs()

	s, err := local.New(fs, "/srv/uploads")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	content := "%PDF-1.4 test"

	sf, err := s.Save("u-1", "contrato.pdf", strings.NewReader(content))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if sf.Name != "u-1___contrato.pdf" {
		t.Errorf("Expected stored name u-1___contrato.pdf, got %s", sf.Name)
	}

	if sf.Path != filepath.Join("/srv/uploads", sf.Name) {
		t.Errorf("Unexpected path %s", sf.Path)
	}

	if sf.Size != int64(len(content)) {
		t.Errorf("Expected size %d, got %d", len(content), sf.Size)
	}

	want := "xxh64:" + strconv.FormatUint(xxhash.Sum64String(content), 16)
	if sf.Checksum != want {
		t.Errorf("Expected checksum %s, got %s", want, sf.Checksum)
	}

	got, err := afero.ReadFile(fs, sf.Path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if string(got) != content {
		t.Errorf("Expected content %q, got %q", content, got)
	}
}

// TestSaveExistingFile 同名文件已存在时不覆盖.
func TestSaveExistingFile(t *testing.T) {
	s, err := local.New(afero.NewMemMapFs(), "/up")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := s.Save("same", "a.pdf", strings.NewReader("one")); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	if _, err := s.Save("same", "a.pdf", strings.NewReader("two")); !errors.Is(err, local.ErrWrite) {
		t.Errorf("Expected ErrWrite, got %v", err)
	}
}

// TestSaveReadOnly 只读文件系统上写入失败.
func TestSaveReadOnly(t *testing.T) {
	base := afero.NewMemMapFs()
	if err := base.MkdirAll("/up", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	s, err := local.New(afero.NewReadOnlyFs(base), "/up")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := s.Save("u", "a.pdf", strings.NewReader("x")); !errors.Is(err, local.ErrWrite) {
		t.Errorf("Expected ErrWrite, got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

// TestSaveReaderError 读取失败时删除半成品.
func TestSaveReaderError(t *testing.T) {
	fs := afero.NewMemMapFs()

	s, err := local.New(fs, "/up")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := s.Save("u", "a.pdf", failingReader{}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("Expected io.ErrUnexpectedEOF, got %v", err)
	}

	ok, err := s.Exists(filepath.Join("/up", local.StoredName("u", "a.pdf")))
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}

	if ok {
		t.Error("Expected partial file to be removed")
	}
}

// TestRemove 删除存在与不存在的文件.
func TestRemove(t *testing.T) {
	s, err := local.New(afero.NewMemMapFs(), "/up")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	sf, err := s.Save("u", "a.pdf", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := s.Remove(sf.Path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if ok, _ := s.Exists(sf.Path); ok {
		t.Error("Expected file to be removed")
	}

	if err := s.Remove(sf.Path); err != nil {
		t.Errorf("Removing missing file should not fail, got %v", err)
	}
}
