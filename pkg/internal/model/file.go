// Package model 定义持久化到数据库的数据结构.
package model

import (
	"gorm.io/datatypes"
)

// FileTableName 上传记录所在的表名.
const FileTableName = "archivoPDF"

// FileRecord 一条上传记录，对应一个落盘的 PDF 文件.
// 行在创建后不会被更新或删除.
type FileRecord struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UUID string `gorm:"column:uuid;unique"                 json:"uuid"`
	// Name 展示名称，最长 255 个字符
	Name string `gorm:"column:nombre;size:255"  json:"name"`
	Path string `gorm:"column:path;size:1024"   json:"path"`
	// Metadata 自由格式的 JSON 对象，存储层不校验结构
	Metadata datatypes.JSON `gorm:"column:metadata_json" json:"metadata"`
}

// TableName 指定 GORM 使用的表名.
func (FileRecord) TableName() string {
	return FileTableName
}

// FileMetadata 写入 metadata_json 的结构.
type FileMetadata struct {
	OriginalFilename string `json:"original_filename"`
	Name             string `json:"name"`
	UploadedAs       string `json:"uploaded_as"`
	// Placeholders 预留的扩展数组：content type、字节数、落盘文件名
	Placeholders []any  `json:"placeholders"`
	Checksum     string `json:"checksum,omitempty"`
}
