// Package queue 管理上传完成后的事件，供下游流程（坐标提取、归档等）异步消费.
//
// 概览
//   - 采用发布/订阅模型，解耦"接收上传"与"内容处理"
//   - 统一的消息封装：Message[Payload] = Header + Payload
//   - 主题常量见 topics.go，负载结构体见 payloads.go
//   - 默认 JSON 编解码（bytedance/sonic），跨语言易解析
//
// 消息信封（Envelope）JSON 结构
//
//	{
//	  "header": {
//	    "topic": "pv.pdf.stored",
//	    "trace_id": "optional-trace-id",
//	    "producer": "pdfvault",
//	    "occurred_at": "2025-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { ... 取决于具体主题 ... }
//	}
//
// 发布/订阅示例
//
//	msg, _ := queue.NewWatermillMessage(
//	  queue.TopicPDFStored, payload,
//	  queue.WithTraceID("trace-xyz"),
//	  queue.WithProducer("pdfvault"),
//	)
//	_ = client.Publish(ctx, queue.TopicPDFStored, msg)
//
//	ch, _ := client.Subscribe(ctx, queue.TopicPDFStored)
//	for m := range ch {
//	    env, _ := queue.ParsePDFStored(m)
//	    // 使用 env.Header / env.Payload ...
//	    m.Ack()
//	}
//
// 注意事项
//  1. occurred_at 为 UTC，RFC3339 格式
//  2. version 便于后向兼容，建议消费者忽略未知字段
//  3. Header.topic 与消息中间件的 Subject/Topic 可能重复，意在离线可追踪
package queue

import (
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

const (
	PayloadVersionV1 string = "v1"
)

// NewEventHeader 便捷创建事件头.
func NewEventHeader(topic string, opts ...func(*EventHeader)) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
	}
	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// WithTraceID 设置 TraceID.
func WithTraceID(id string) func(*EventHeader) { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 设置 Producer.
func WithProducer(p string) func(*EventHeader) { return func(h *EventHeader) { h.Producer = p } }

// Encode 将消息封装为 JSON 字节切片.
func Encode[T any](msg Message[T]) ([]byte, error) { return sonic.Marshal(msg) }

// Decode 从 JSON 字节解码为消息.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]

	err := sonic.Unmarshal(b, &m)

	return m, err
}

// metadata 把事件头映射为 watermill 元数据，空字段不写入.
func (h EventHeader) metadata() message.Metadata {
	md := message.Metadata{
		"topic":       h.Topic,
		"occurred_at": h.OccurredAt.Format(time.RFC3339Nano),
	}

	for k, v := range map[string]string{"trace_id": h.TraceID, "producer": h.Producer, "version": h.Version} {
		if v != "" {
			md.Set(k, v)
		}
	}

	return md
}

// NewWatermillMessage 构造一个 watermill 消息. 消息 ID 为 ULID，按发布时间有序.
func NewWatermillMessage[T any](topic string, payload T, opts ...func(*EventHeader)) (*message.Message, error) {
	header := NewEventHeader(topic, opts...)

	data, err := Encode(Message[T]{Header: header, Payload: payload})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewULID(), data)
	msg.Metadata = header.metadata()

	return msg, nil
}

// ParseWatermillMessage 解出泛型负载.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}
