package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yeisme/pdfvault/pkg/internal/model"
)

// Insert 插入一条记录并返回自增 id. uuid 重复时返回 ErrDuplicateUUID.
func (c *Client) Insert(ctx context.Context, rec *model.FileRecord) (int64, error) {
	if rec.UUID == "" {
		return 0, fmt.Errorf("%w: empty uuid", ErrStorage)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s: %w", ErrDuplicateUUID, rec.UUID, err)
		}

		return 0, fmt.Errorf("%w: insert record: %w", ErrStorage, err)
	}

	return rec.ID, nil
}

// FindByUUID 按 uuid 查询记录. 不存在时返回 found == false 且 err == nil.
func (c *Client) FindByUUID(ctx context.Context, uuid string) (*model.FileRecord, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var rec model.FileRecord

	res := c.db.WithContext(ctx).Where("uuid = ?", uuid).Limit(1).Find(&rec)
	if res.Error != nil {
		return nil, false, fmt.Errorf("%w: find by uuid: %w", ErrStorage, res.Error)
	}

	if res.RowsAffected == 0 {
		return nil, false, nil
	}

	return &rec, true, nil
}

// ListAll 返回全部记录，按 id 倒序.
func (c *Client) ListAll(ctx context.Context) ([]model.FileRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records := make([]model.FileRecord, 0)
	if err := c.db.WithContext(ctx).Order("id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: list records: %w", ErrStorage, err)
	}

	return records, nil
}

// isUniqueViolation 判断是否唯一约束冲突. 驱动未翻译错误时按错误文本兜底.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
