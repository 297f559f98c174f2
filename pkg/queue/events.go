package queue

import "github.com/ThreeDotsLabs/watermill/message"

// PublishPDFStored 发布 pv.pdf.stored 事件.
// 可通过可选项 opts 注入 TraceID、Producer 等头部信息.
func PublishPDFStored(pub message.Publisher, payload PDFStoredPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicPDFStored, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicPDFStored, msg)
}

// ParsePDFStored 将 Watermill 消息解析为强类型 Envelope（PDFStoredPayload）.
func ParsePDFStored(msg *message.Message) (Message[PDFStoredPayload], error) {
	return ParseWatermillMessage[PDFStoredPayload](msg)
}

// PublishPDFOrphaned 发布 pv.pdf.orphaned 事件.
func PublishPDFOrphaned(pub message.Publisher, payload PDFOrphanedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicPDFOrphaned, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicPDFOrphaned, msg)
}

// ParsePDFOrphaned 解析 pv.pdf.orphaned 事件.
func ParsePDFOrphaned(msg *message.Message) (Message[PDFOrphanedPayload], error) {
	return ParseWatermillMessage[PDFOrphanedPayload](msg)
}
