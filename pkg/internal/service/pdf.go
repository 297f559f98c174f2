// Package service 实现 PDF 上传流程：校验、命名、落盘、写元数据、入库与事件发布.
package service

import (
	"context"
	"io"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/yeisme/pdfvault/pkg/internal/model"
	"github.com/yeisme/pdfvault/pkg/internal/storage/local"
)

// MaxNameLength 展示名称的最大字符数，与 nombre 列宽一致.
const MaxNameLength = 255

// RecordStore 上传记录的持久化.
type RecordStore interface {
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, rec *model.FileRecord) (int64, error)
}

// FileStore 上传文件的落盘与删除.
type FileStore interface {
	Save(uuid, filename string, r io.Reader) (*local.StoredFile, error)
	Remove(path string) error
}

// PDFService 处理单个 PDF 上传. 除注入的依赖外不持有可变状态，可被并发调用.
type PDFService struct {
	records  RecordStore
	files    FileStore
	events   message.Publisher
	producer string
	maxSize  int64
	newUUID  func() string
}

// Option 配置 PDFService.
type Option func(*PDFService)

// WithEvents 上传成功后向 pub 发布 pv.pdf.stored 事件. pub 为 nil 时不发布.
func WithEvents(pub message.Publisher, producer string) Option {
	return func(s *PDFService) {
		s.events = pub
		s.producer = producer
	}
}

// WithMaxSize 限制单个文件的字节数，0 表示不限制.
func WithMaxSize(n int64) Option {
	return func(s *PDFService) { s.maxSize = n }
}

// WithUUIDGenerator 替换 uuid 生成函数.
func WithUUIDGenerator(fn func() string) Option {
	return func(s *PDFService) { s.newUUID = fn }
}

// NewPDFService 创建上传服务.
func NewPDFService(records RecordStore, files FileStore, opts ...Option) *PDFService {
	s := &PDFService{
		records: records,
		files:   files,
		newUUID: func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}
