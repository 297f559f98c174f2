package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	nlog "github.com/yeisme/pdfvault/pkg/log"
)

// createTableSQL 是 archivoPDF 表的权威定义.
const createTableSQL = `CREATE TABLE IF NOT EXISTS archivoPDF (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uuid TEXT UNIQUE,
    nombre VARCHAR(255),
    path VARCHAR(1024),
    metadata_json CLOB
)`

// EnsureSchema 保证数据库目录、文件和表存在. 幂等，可并发调用.
// 数据库文件在打开之后被删除时会重新打开连接池，随后的写入落到新文件里.
func (c *Client) EnsureSchema(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("%w: create database dir: %w", ErrSchemaIO, err)
	}

	if err := c.reopenIfMissing(ctx); err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.db.WithContext(ctx).Exec(createTableSQL).Error; err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}

	return nil
}

// reopenIfMissing 数据库文件不存在时在写锁下重新打开连接池.
func (c *Client) reopenIfMissing(ctx context.Context) error {
	missing, err := c.fileMissing()
	if err != nil || !missing {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// 其它请求可能已经完成重开
	if missing, err = c.fileMissing(); err != nil || !missing {
		return err
	}

	db, err := c.open(ctx)
	if err != nil {
		return err
	}

	if old, e := c.db.DB(); e == nil {
		_ = old.Close()
	}

	c.db = db

	nlog.Logger().Warn().Str("path", c.path).Msg("database file disappeared, reopened")

	return nil
}

func (c *Client) fileMissing() (bool, error) {
	_, err := os.Stat(c.path)
	if err == nil {
		return false, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}

	return false, fmt.Errorf("%w: stat database file: %w", ErrSchemaIO, err)
}
