package service

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/pdfvault/pkg/internal/model"
	"github.com/yeisme/pdfvault/pkg/internal/storage/local"
	nlog "github.com/yeisme/pdfvault/pkg/log"
	"github.com/yeisme/pdfvault/pkg/metrics"
	"github.com/yeisme/pdfvault/pkg/queue"
)

// publishStored 发布上传完成事件. 失败只记录日志，不影响响应.
func (s *PDFService) publishStored(ctx context.Context, rec *model.FileRecord, filename, contentType string, stored *local.StoredFile) {
	if s.events == nil {
		return
	}

	payload := queue.PDFStoredPayload{
		File: queue.FileRef{
			ID:          rec.ID,
			UUID:        rec.UUID,
			Name:        rec.Name,
			Path:        rec.Path,
			StoredName:  stored.Name,
			Size:        stored.Size,
			Checksum:    stored.Checksum,
			ContentType: contentType,
		},
		OriginalFilename: filename,
	}

	observePublish(queue.TopicPDFStored, queue.PublishPDFStored(s.events, payload, s.headerOpts(ctx)...))
}

// publishOrphaned 发布残留文件事件.
func (s *PDFService) publishOrphaned(ctx context.Context, id, path string, err error) {
	if s.events == nil {
		return
	}

	payload := queue.PDFOrphanedPayload{UUID: id, Path: path, Error: err.Error()}

	observePublish(queue.TopicPDFOrphaned, queue.PublishPDFOrphaned(s.events, payload, s.headerOpts(ctx)...))
}

// headerOpts 填充事件头的生产者与 trace id.
func (s *PDFService) headerOpts(ctx context.Context) []func(*queue.EventHeader) {
	opts := []func(*queue.EventHeader){queue.WithProducer(s.producer)}

	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		opts = append(opts, queue.WithTraceID(sc.TraceID().String()))
	}

	return opts
}

func observePublish(topic string, err error) {
	if err != nil {
		metrics.EventsPublished.WithLabelValues(topic, "error").Inc()
		nlog.Logger().Warn().Err(err).Str("topic", topic).Msg("publish event failed")

		return
	}

	metrics.EventsPublished.WithLabelValues(topic, "ok").Inc()
}
