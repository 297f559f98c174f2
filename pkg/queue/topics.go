// Package queue 定义消息主题常量，供发布/订阅使用.
package queue

// 主题命名规范：pv.<域>.<动作>[.<状态>]，尽量稳定且向后兼容.

const (
	// TopicPDFStored 文件已落盘且记录已写入数据库，后续流程（坐标提取等）从这里开始.
	TopicPDFStored = "pv.pdf.stored"
	// TopicPDFOrphaned 插入失败后文件未能删除，需要人工或定时任务清理.
	TopicPDFOrphaned = "pv.pdf.orphaned"
)

// PDFTopics PDF 相关主题集合.
var PDFTopics = []string{TopicPDFStored, TopicPDFOrphaned}
