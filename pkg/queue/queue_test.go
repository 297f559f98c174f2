package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/yeisme/pdfvault/pkg/queue"
)

// TestNewWatermillMessage 测试信封头部与元数据.
func TestNewWatermillMessage(t *testing.T) {
	payload := queue.PDFStoredPayload{
		File:             queue.FileRef{ID: 1, UUID: "u-1", Name: "contrato", StoredName: "u-1___contrato.pdf"},
		OriginalFilename: "contrato.pdf",
	}

	msg, err := queue.NewWatermillMessage(queue.TopicPDFStored, payload,
		queue.WithTraceID("trace-1"), queue.WithProducer("pdfvault"))
	if err != nil {
		t.Fatalf("NewWatermillMessage failed: %v", err)
	}

	if msg.Metadata.Get("topic") != queue.TopicPDFStored {
		t.Errorf("Expected topic metadata %s, got %s", queue.TopicPDFStored, msg.Metadata.Get("topic"))
	}

	if msg.Metadata.Get("trace_id") != "trace-1" {
		t.Errorf("Expected trace_id metadata trace-1, got %s", msg.Metadata.Get("trace_id"))
	}

	env, err := queue.ParsePDFStored(msg)
	if err != nil {
		t.Fatalf("ParsePDFStored failed: %v", err)
	}

	if env.Header.Version != queue.PayloadVersionV1 || env.Header.Producer != "pdfvault" {
		t.Errorf("Unexpected header %+v", env.Header)
	}

	if env.Payload.File.UUID != "u-1" || env.Payload.OriginalFilename != "contrato.pdf" {
		t.Errorf("Unexpected payload %+v", env.Payload)
	}
}

// TestPublishPDFStored 通过 gochannel 发布并接收事件.
func TestPublishPDFStored(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ps := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer ps.Close()

	ch, err := ps.Subscribe(ctx, queue.TopicPDFStored)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	go func() {
		_ = queue.PublishPDFStored(ps, queue.PDFStoredPayload{File: queue.FileRef{UUID: "u-2"}})
	}()

	select {
	case m := <-ch:
		env, err := queue.ParsePDFStored(m)
		if err != nil {
			t.Fatalf("ParsePDFStored failed: %v", err)
		}

		if env.Payload.File.UUID != "u-2" {
			t.Errorf("Expected uuid u-2, got %s", env.Payload.File.UUID)
		}

		m.Ack()
	case <-ctx.Done():
		t.Fatal("Timed out waiting for event")
	}
}
