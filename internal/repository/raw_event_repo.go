package repository

import (
	"context"
	"fmt"

	"RetailSense/internal/model"

	"gorm.io/gorm"
)

// RawEventRepository 原始事件仓储
type RawEventRepository interface {
	SaveRows(ctx context.Context, rows []*model.RawEventRow) error
	// ListRowsByWindow 按日期窗口（YYYYMMDD闭区间）取原始行，按事件日期+入库顺序稳定排序
	ListRowsByWindow(ctx context.Context, start, end string) ([]*model.RawEventRow, error)
	CountRows(ctx context.Context) (int64, error)
}

type rawEventRepository struct {
	db *gorm.DB
}

func NewRawEventRepository(db *gorm.DB) RawEventRepository {
	return &rawEventRepository{db: db}
}

// saveBatchSize 批量插入的单批行数
const saveBatchSize = 500

func (r *rawEventRepository) SaveRows(ctx context.Context, rows []*model.RawEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(rows, saveBatchSize).Error; err != nil {
		return fmt.Errorf("保存原始事件失败: %w", err)
	}
	return nil
}

func (r *rawEventRepository) ListRowsByWindow(ctx context.Context, start, end string) ([]*model.RawEventRow, error) {
	var rows []*model.RawEventRow
	if err := r.db.WithContext(ctx).
		Where("event_date >= ? AND event_date <= ?", start, end).
		Order("event_date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询原始事件失败: %w", err)
	}
	return rows, nil
}

func (r *rawEventRepository) CountRows(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.RawEventRow{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
