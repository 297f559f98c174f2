package service

import "errors"

// 客户端输入错误，对应 HTTP 400，无副作用.
var (
	ErrNoFile        = errors.New("no file provided")
	ErrEmptyFileName = errors.New("file has no name")
	ErrNotPDF        = errors.New("only PDF files allowed")
	ErrFileTooLarge  = errors.New("file too large")
	ErrNameTooLong   = errors.New("name too long")
)

// 服务端错误，对应 HTTP 500.
var (
	ErrSaveFile     = errors.New("failed to save file")
	ErrInsertRecord = errors.New("failed to insert into database")
)

// IsClientError 判断错误是否由请求内容引起.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoFile) ||
		errors.Is(err, ErrEmptyFileName) ||
		errors.Is(err, ErrNotPDF) ||
		errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrNameTooLong)
}
