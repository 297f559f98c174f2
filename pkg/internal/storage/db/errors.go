package db

import "errors"

var (
	// ErrDuplicateUUID 插入的 uuid 已存在.
	ErrDuplicateUUID = errors.New("duplicate uuid")
	// ErrSchema 建表失败.
	ErrSchema = errors.New("schema error")
	// ErrSchemaIO 数据库目录或文件不可用.
	ErrSchemaIO = errors.New("schema io error")
	// ErrConnection 打开或探测数据库失败.
	ErrConnection = errors.New("database connection error")
	// ErrStorage 其它存储层失败.
	ErrStorage = errors.New("storage error")
)
