// Package types 定义 HTTP 请求与响应结构.
package types

import "mime/multipart"

// UploadPDFRequest multipart 上传请求. File 由 handler 从 file 分段取出，不参与表单绑定.
type UploadPDFRequest struct {
	File *multipart.FileHeader `form:"-"`
	// Name 可选的展示名称，缺省时取文件名去掉扩展名
	Name string `form:"name"`
}

// UploadPDFResponse 上传成功的响应.
type UploadPDFResponse struct {
	Status  int    `json:"status"`
	UUID    string `json:"uuid"`
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ErrorResponse 统一的错误响应.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
