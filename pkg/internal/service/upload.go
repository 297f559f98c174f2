package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"

	ctxPkg "github.com/yeisme/pdfvault/pkg/context"
	"github.com/yeisme/pdfvault/pkg/internal/model"
	"github.com/yeisme/pdfvault/pkg/internal/storage/local"
	"github.com/yeisme/pdfvault/pkg/internal/types"
	nlog "github.com/yeisme/pdfvault/pkg/log"
	"github.com/yeisme/pdfvault/pkg/metrics"
	"github.com/yeisme/pdfvault/pkg/rule"
	"github.com/yeisme/pdfvault/pkg/tracing"
)

const (
	defaultContentType = "application/pdf"
	uploadMessage      = "PDF uploaded and metadata stored successfully"
)

// Upload 校验并保存一个 PDF，写入一条记录.
// 文件先落盘再入库，入库失败时尽力删除已写入的文件.
func (s *PDFService) Upload(ctx context.Context, req *types.UploadPDFRequest) (*types.UploadPDFResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "service.pdf.upload")
	defer span.End()

	filename, name, err := s.validate(req)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.UploadResultRejected).Inc()

		return nil, err
	}

	id := s.newUUID()
	logger := ctxPkg.WithTraceContext(ctx, nlog.Logger().With().Str("uuid", id).Str("filename", filename).Logger())

	src, err := req.File.Open()
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.UploadResultFailed).Inc()

		return nil, fmt.Errorf("%w: %w", ErrSaveFile, err)
	}
	defer src.Close()

	stored, err := s.files.Save(id, filename, src)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.UploadResultFailed).Inc()
		logger.Error().Err(err).Msg("save upload failed")

		return nil, fmt.Errorf("%w: %w", ErrSaveFile, err)
	}

	contentType := req.File.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	rec, err := buildRecord(id, filename, name, contentType, stored)
	if err == nil {
		if err = s.records.EnsureSchema(ctx); err == nil {
			rec.ID, err = s.records.Insert(ctx, rec)
		}
	}

	if err != nil {
		metrics.UploadsTotal.WithLabelValues(metrics.UploadResultFailed).Inc()
		logger.Error().Err(err).Msg("insert record failed")
		s.cleanup(ctx, id, stored.Path, err)

		return nil, fmt.Errorf("%w: %w", ErrInsertRecord, err)
	}

	metrics.UploadsTotal.WithLabelValues(metrics.UploadResultStored).Inc()
	metrics.UploadBytes.Observe(float64(stored.Size))
	logger.Info().Int64("id", rec.ID).Int64("size", stored.Size).Str("path", stored.Path).Msg("pdf stored")

	s.publishStored(ctx, rec, filename, contentType, stored)

	return &types.UploadPDFResponse{
		Status:  200,
		UUID:    id,
		ID:      rec.ID,
		Name:    name,
		Path:    stored.Path,
		Message: uploadMessage,
	}, nil
}

// validate 按顺序校验请求并返回文件名与展示名称.
func (s *PDFService) validate(req *types.UploadPDFRequest) (filename, name string, err error) {
	if req == nil || req.File == nil {
		return "", "", ErrNoFile
	}

	filename = CleanFilename(req.File.Filename)
	if filename == "" {
		return "", "", ErrEmptyFileName
	}

	if err := rule.ValidateVar(filename, rule.PDFExtTag); err != nil {
		return "", "", ErrNotPDF
	}

	if s.maxSize > 0 && req.File.Size > s.maxSize {
		return "", "", fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, req.File.Size, s.maxSize)
	}

	name = req.Name
	if name == "" {
		name = DeriveName(filename)
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", "", ErrNameTooLong
	}

	return filename, name, nil
}

// CleanFilename 去掉客户端传入的目录部分，只保留最后一段. 结果为空、"." 或 "/" 时返回空串.
func CleanFilename(raw string) string {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
	if raw == "" {
		return ""
	}

	base := filepath.Base(raw)
	if base == "." || base == "/" || base == ".." {
		return ""
	}

	return base
}

// DeriveName 文件名去掉扩展名作为展示名称. "a.b.pdf" 得到 "a.b"，".pdf" 保持原样.
func DeriveName(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if stem == "" {
		return filename
	}

	return stem
}

// buildRecord 组装待插入的记录与元数据.
func buildRecord(id, filename, name, contentType string, stored *local.StoredFile) (*model.FileRecord, error) {
	meta := model.FileMetadata{
		OriginalFilename: filename,
		Name:             name,
		UploadedAs:       stored.Path,
		Placeholders:     []any{contentType, stored.Size, stored.Name},
		Checksum:         stored.Checksum,
	}

	raw, err := sonic.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	return &model.FileRecord{
		UUID:     id,
		Name:     name,
		Path:     stored.Path,
		Metadata: datatypes.JSON(raw),
	}, nil
}

// cleanup 删除入库失败后残留的文件. 删除失败只记录日志并发布 pv.pdf.orphaned.
func (s *PDFService) cleanup(ctx context.Context, id, path string, cause error) {
	err := s.files.Remove(path)
	if err == nil {
		return
	}

	metrics.CleanupFailures.Inc()
	nlog.Logger().Error().Err(err).Str("uuid", id).Str("path", path).Msg("failed to remove orphaned upload")

	s.publishOrphaned(ctx, id, path, errors.Join(cause, err))
}
