package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/bytedance/sonic"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/pdfvault/pkg/configs"
	"github.com/yeisme/pdfvault/pkg/internal/model"
	"github.com/yeisme/pdfvault/pkg/internal/service"
	"github.com/yeisme/pdfvault/pkg/internal/storage/db"
	"github.com/yeisme/pdfvault/pkg/internal/storage/local"
	"github.com/yeisme/pdfvault/pkg/internal/types"
	"github.com/yeisme/pdfvault/pkg/queue"
)

type testEnv struct {
	db        *db.Client
	store     *local.Store
	uploadDir string
}

// newTestEnv 在临时目录中准备数据库与上传目录.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()

	dbc, err := db.New(context.Background(), &configs.DBConfig{
		Type:          configs.SQLite,
		Dir:           filepath.Join(root, "data"),
		Name:          configs.DefaultDatabaseName,
		BusyTimeoutMS: configs.DefaultBusyTimeoutMillis,
		ForeignKeys:   true,
		MaxOpenConns:  1,
		MaxIdleConns:  1,
		LogLevel:      "silent",
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	t.Cleanup(func() { _ = dbc.Close() })

	if err := dbc.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	dir := filepath.Join(root, "uploads")

	store, err := local.New(afero.NewOsFs(), dir)
	if err != nil {
		t.Fatalf("Failed to create upload store: %v", err)
	}

	return &testEnv{db: dbc, store: store, uploadDir: dir}
}

// uploadedFiles 返回上传目录中的文件名.
func (e *testEnv) uploadedFiles(t *testing.T) []string {
	t.Helper()

	entries, err := os.ReadDir(e.uploadDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names
}

// fileHeader 构造一个经过 multipart 解析的文件头.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	h.Set("Content-Type", "application/pdf")

	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("CreatePart failed: %v", err)
	}

	if _, err := part.Write(content); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm failed: %v", err)
	}

	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["file"]
	if len(files) != 1 {
		t.Fatalf("Expected one file part, got %d", len(files))
	}

	return files[0]
}

// TestUploadRoundTrip 上传后文件内容与记录字段一致.
func TestUploadRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	svc := service.NewPDFService(env.db, env.store)

	content := []byte("%PDF-1.4\n%")

	resp, err := svc.Upload(context.Background(), &types.UploadPDFRequest{File: fileHeader(t, "contrato.pdf", content)})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if resp.Status != 200 || resp.Name != "contrato" || resp.ID <= 0 {
		t.Errorf("Unexpected response %+v", resp)
	}

	wantPath := filepath.Join(env.store.Dir(), resp.UUID+"___contrato.pdf")
	if resp.Path != wantPath {
		t.Errorf("Expected path %s, got %s", wantPath, resp.Path)
	}

	got, err := os.ReadFile(resp.Path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if !bytes.Equal(got, content) {
		t.Errorf("Stored content differs: %q", got)
	}

	rec, found, err := env.db.FindByUUID(context.Background(), resp.UUID)
	if err != nil || !found {
		t.Fatalf("FindByUUID: found=%v err=%v", found, err)
	}

	if rec.ID != resp.ID || rec.Name != "contrato" || rec.Path != resp.Path {
		t.Errorf("Record mismatch %+v", rec)
	}

	var meta model.FileMetadata
	if err := sonic.Unmarshal(rec.Metadata, &meta); err != nil {
		t.Fatalf("Failed to decode metadata: %v", err)
	}

	if meta.OriginalFilename != "contrato.pdf" || meta.UploadedAs != resp.Path {
		t.Errorf("Unexpected metadata %+v", meta)
	}

	if len(meta.Placeholders) != 3 {
		t.Fatalf("Expected 3 placeholders, got %v", meta.Placeholders)
	}

	if meta.Placeholders[0] != "application/pdf" {
		t.Errorf("Expected content type placeholder, got %v", meta.Placeholders[0])
	}

	if size, ok := meta.Placeholders[1].(float64); !ok || int(size) != len(content) {
		t.Errorf("Expected size placeholder %d, got %v", len(content), meta.Placeholders[1])
	}

	if meta.Placeholders[2] != resp.UUID+"___contrato.pdf" {
		t.Errorf("Expected stored name placeholder, got %v", meta.Placeholders[2])
	}

	if !strings.HasPrefix(meta.Checksum, "xxh64:") {
		t.Errorf("Expected xxh64 checksum, got %q", meta.Checksum)
	}
}

// TestUploadValidation 校验失败时不落盘也不入库.
func TestUploadValidation(t *testing.T) {
	long := strings.Repeat("n", service.MaxNameLength+1)

	tests := []struct {
		name string
		req  func(t *testing.T) *types.UploadPDFRequest
		opts []service.Option
		want error
	}{
		{"no file", func(*testing.T) *types.UploadPDFRequest { return &types.UploadPDFRequest{} }, nil, service.ErrNoFile},
		{"nil request", func(*testing.T) *types.UploadPDFRequest { return nil }, nil, service.ErrNoFile},
		{"empty name", func(*testing.T) *types.UploadPDFRequest {
			return &types.UploadPDFRequest{File: &multipart.FileHeader{Filename: ""}}
		}, nil, service.ErrEmptyFileName},
		{"directory only", func(*testing.T) *types.UploadPDFRequest {
			return &types.UploadPDFRequest{File: &multipart.FileHeader{Filename: "docs/"}}
		}, nil, service.ErrNotPDF},
		{"not pdf", func(t *testing.T) *types.UploadPDFRequest {
			return &types.UploadPDFRequest{File: fileHeader(t, "notas.txt", []byte("x"))}
		}, nil, service.ErrNotPDF},
		{"too large", func(t *testing.T) *types.UploadPDFRequest {
			return &types.UploadPDFRequest{File: fileHeader(t, "big.pdf", []byte("0123456789"))}
		}, []service.Option{service.WithMaxSize(5)}, service.ErrFileTooLarge},
		{"name too long", func(t *testing.T) *types.UploadPDFRequest {
			return &types.UploadPDFRequest{File: fileHeader(t, "a.pdf", []byte("x")), Name: long}
		}, nil, service.ErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			svc := service.NewPDFService(env.db, env.store, tt.opts...)

			_, err := svc.Upload(context.Background(), tt.req(t))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}

			if !service.IsClientError(err) {
				t.Errorf("Expected client error, got %v", err)
			}

			if files := env.uploadedFiles(t); len(files) != 0 {
				t.Errorf("Expected no stored files, got %v", files)
			}

			records, err := env.db.ListAll(context.Background())
			if err != nil {
				t.Fatalf("ListAll failed: %v", err)
			}

			if len(records) != 0 {
				t.Errorf("Expected no records, got %d", len(records))
			}
		})
	}
}

// TestUploadName 显式名称原样保存（包括空白），缺省时由文件名推导.
func TestUploadName(t *testing.T) {
	env := newTestEnv(t)
	svc := service.NewPDFService(env.db, env.store)

	cases := []struct {
		filename, name, want string
	}{
		{"contrato.pdf", "", "contrato"},
		{"Informe.PDF", "", "Informe"},
		{"y.pdf", "   ", "   "},
		{"a.b.pdf", "", "a.b"},
		{"x.pdf", " Contrato de arriendo ", " Contrato de arriendo "},
	}

	for _, c := range cases {
		resp, err := svc.Upload(context.Background(), &types.UploadPDFRequest{
			File: fileHeader(t, c.filename, []byte("%PDF")),
			Name: c.name,
		})
		if err != nil {
			t.Fatalf("Upload %s failed: %v", c.filename, err)
		}

		if resp.Name != c.want {
			t.Errorf("Upload %s with name %q: expected %q, got %q", c.filename, c.name, c.want, resp.Name)
		}
	}
}

// TestUploadDuplicateUUIDCleanup 入库失败时删除已落盘的文件.
func TestUploadDuplicateUUIDCleanup(t *testing.T) {
	env := newTestEnv(t)
	svc := service.NewPDFService(env.db, env.store,
		service.WithUUIDGenerator(func() string { return "11111111-2222-4333-8444-555555555555" }))

	first, err := svc.Upload(context.Background(), &types.UploadPDFRequest{File: fileHeader(t, "a.pdf", []byte("one"))})
	if err != nil {
		t.Fatalf("First upload failed: %v", err)
	}

	_, err = svc.Upload(context.Background(), &types.UploadPDFRequest{File: fileHeader(t, "b.pdf", []byte("two"))})
	if !errors.Is(err, service.ErrInsertRecord) {
		t.Fatalf("Expected ErrInsertRecord, got %v", err)
	}

	if !errors.Is(err, db.ErrDuplicateUUID) {
		t.Errorf("Expected wrapped ErrDuplicateUUID, got %v", err)
	}

	files := env.uploadedFiles(t)
	if len(files) != 1 || files[0] != filepath.Base(first.Path) {
		t.Errorf("Expected only the first file to remain, got %v", files)
	}

	records, err := env.db.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}

	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}
}

// TestUploadSaveFailure 写文件失败返回 ErrSaveFile 且不入库.
func TestUploadSaveFailure(t *testing.T) {
	env := newTestEnv(t)

	base := afero.NewMemMapFs()
	if err := base.MkdirAll("/ro", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	ro, err := local.New(afero.NewReadOnlyFs(base), "/ro")
	if err != nil {
		t.Fatalf("local.New failed: %v", err)
	}

	svc := service.NewPDFService(env.db, ro)

	_, err = svc.Upload(context.Background(), &types.UploadPDFRequest{File: fileHeader(t, "a.pdf", []byte("x"))})
	if !errors.Is(err, service.ErrSaveFile) {
		t.Fatalf("Expected ErrSaveFile, got %v", err)
	}

	records, err := env.db.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}

	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

// TestUploadConcurrentSameName 并发上传同名文件得到不同的文件与记录.
func TestUploadConcurrentSameName(t *testing.T) {
	const n = 100

	env := newTestEnv(t)
	svc := service.NewPDFService(env.db, env.store)

	headers := make([]*multipart.FileHeader, n)
	for i := range headers {
		headers[i] = fileHeader(t, "contrato.pdf", []byte(fmt.Sprintf("%%PDF-%d", i)))
	}

	var (
		mu    sync.Mutex
		uuids = map[string]bool{}
		ids   = map[int64]bool{}
	)

	var g errgroup.Group

	for i := 0; i < n; i++ {
		fh := headers[i]

		g.Go(func() error {
			resp, err := svc.Upload(context.Background(), &types.UploadPDFRequest{File: fh})
			if err != nil {
				return err
			}

			mu.Lock()
			uuids[resp.UUID] = true
			ids[resp.ID] = true
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("Concurrent upload failed: %v", err)
	}

	if len(uuids) != n || len(ids) != n {
		t.Errorf("Expected %d distinct uuids and ids, got %d and %d", n, len(uuids), len(ids))
	}

	if files := env.uploadedFiles(t); len(files) != n {
		t.Errorf("Expected %d files, got %d", n, len(files))
	}

	records, err := env.db.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}

	if len(records) != n {
		t.Errorf("Expected %d records, got %d", n, len(records))
	}
}

// TestUploadPublishesEvent 上传成功后发布 pv.pdf.stored.
func TestUploadPublishesEvent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 4}, watermill.NopLogger{})
	defer ps.Close()

	ch, err := ps.Subscribe(ctx, queue.TopicPDFStored)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	env := newTestEnv(t)
	svc := service.NewPDFService(env.db, env.store, service.WithEvents(ps, "pdfvault-test"))

	resp, err := svc.Upload(ctx, &types.UploadPDFRequest{File: fileHeader(t, "contrato.pdf", []byte("%PDF"))})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	select {
	case m := <-ch:
		env, err := queue.ParsePDFStored(m)
		if err != nil {
			t.Fatalf("ParsePDFStored failed: %v", err)
		}

		if env.Payload.File.UUID != resp.UUID || env.Payload.File.ID != resp.ID {
			t.Errorf("Event does not match response: %+v", env.Payload.File)
		}

		if env.Header.Producer != "pdfvault-test" {
			t.Errorf("Expected producer pdfvault-test, got %s", env.Header.Producer)
		}

		m.Ack()
	case <-ctx.Done():
		t.Fatal("Timed out waiting for event")
	}
}

// failingRecords 插入总是失败.
type failingRecords struct{}

func (failingRecords) EnsureSchema(context.Context) error { return nil }

func (failingRecords) Insert(context.Context, *model.FileRecord) (int64, error) {
	return 0, errors.New("disk I/O error")
}

// stickyFiles 文件写入成功但无法删除.
type stickyFiles struct {
	*local.Store
}

func (stickyFiles) Remove(string) error { return errors.New("permission denied") }

// TestUploadCleanupFailure 删除失败只记录并发布 pv.pdf.orphaned，返回的仍是入库错误.
func TestUploadCleanupFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 4}, watermill.NopLogger{})
	defer ps.Close()

	ch, err := ps.Subscribe(ctx, queue.TopicPDFOrphaned)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	store, err := local.New(afero.NewMemMapFs(), "/up")
	if err != nil {
		t.Fatalf("local.New failed: %v", err)
	}

	svc := service.NewPDFService(failingRecords{}, stickyFiles{store}, service.WithEvents(ps, "pdfvault"))

	_, err = svc.Upload(ctx, &types.UploadPDFRequest{File: fileHeader(t, "a.pdf", []byte("x"))})
	if !errors.Is(err, service.ErrInsertRecord) {
		t.Fatalf("Expected ErrInsertRecord, got %v", err)
	}

	if strings.Contains(err.Error(), "permission denied") {
		t.Errorf("Cleanup error must not be returned: %v", err)
	}

	select {
	case m := <-ch:
		m.Ack()

		env, err := queue.ParsePDFOrphaned(m)
		if err != nil {
			t.Fatalf("ParsePDFOrphaned failed: %v", err)
		}

		if env.Payload.UUID == "" || !strings.Contains(env.Payload.Path, "___a.pdf") || env.Payload.Error == "" {
			t.Errorf("Unexpected orphaned payload %+v", env.Payload)
		}
	case <-ctx.Done():
		t.Fatal("Timed out waiting for orphaned event")
	}
}

// TestCleanFilename 去掉目录部分.
func TestCleanFilename(t *testing.T) {
	cases := map[string]string{
		"contrato.pdf":           "contrato.pdf",
		"../../etc/contrato.pdf": "contrato.pdf",
		`C:\docs\contrato.pdf`:   "contrato.pdf",
		"":                       "",
		"   ":                    "",
		".":                      "",
		"/":                      "",
		"..":                     "",
	}

	for in, want := range cases {
		if got := service.CleanFilename(in); got != want {
			t.Errorf("CleanFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestDeriveName 去掉扩展名.
func TestDeriveName(t *testing.T) {
	cases := map[string]string{
		"contrato.pdf": "contrato",
		"a.b.PDF":      "a.b",
		".pdf":         ".pdf",
	}

	for in, want := range cases {
		if got := service.DeriveName(in); got != want {
			t.Errorf("DeriveName(%q) = %q, want %q", in, got, want)
		}
	}
}
