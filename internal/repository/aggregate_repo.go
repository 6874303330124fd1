package repository

import (
	"context"
	"fmt"
	"time"

	"RetailSense/internal/model"

	"gorm.io/gorm"
)

// ProductFilter 产品聚合列表筛选
type ProductFilter struct {
	Category string            // 品类
	Brand    string            // 品牌
	Trend    model.TrendStatus // 趋势分类
}

// AggregateRepository 聚合结果仓储：
// 一次运行的全部产出在单事务内写入并翻转active运行，
// 读方只按active运行查询，因此永远看不到半成品的一代。
// 换代后上一代的数据行保留到下一次换代：先解析run_id再取数据行
// 是两条语句，保留上一代才能让跨过换代时刻的读请求取到完整数据
type AggregateRepository interface {
	// ReplaceRun 写入新一代聚合结果并原子切换可见代（保留上一代数据行）
	ReplaceRun(ctx context.Context, run *model.PipelineRun,
		products []*model.ProductAggregate,
		customers []*model.CustomerAggregate,
		forecasts []*model.RevenueForecast) error

	GetActiveRun(ctx context.Context) (*model.PipelineRun, error)
	ListProducts(ctx context.Context, runID string, filter ProductFilter, page, pageSize int) ([]*model.ProductAggregate, int64, error)
	ListAllProducts(ctx context.Context, runID string) ([]*model.ProductAggregate, error)
	GetProductBySKU(ctx context.Context, runID, sku string) (*model.ProductAggregate, error)
	ListCustomers(ctx context.Context, runID string) ([]*model.CustomerAggregate, error)
	ListForecasts(ctx context.Context, runID string) ([]*model.RevenueForecast, error)
}

type aggregateRepository struct {
	db *gorm.DB
}

func NewAggregateRepository(db *gorm.DB) AggregateRepository {
	return &aggregateRepository{db: db}
}

// replaceBatchSize 批量插入的单批行数
const replaceBatchSize = 500

func (r *aggregateRepository) ReplaceRun(ctx context.Context, run *model.PipelineRun,
	products []*model.ProductAggregate,
	customers []*model.CustomerAggregate,
	forecasts []*model.RevenueForecast) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		run.IsActive = true
		if run.FinishedAt == nil {
			run.FinishedAt = &now
		}

		// 1. 清理上上代及更早的遗留数据。刚停用的一代在换代后保留数据行：
		// 先取到旧run_id再查数据行的读请求跨过换代时刻也能取到完整一代，
		// 这些行推迟到下一次换代才真正删除
		var staleRuns []*model.PipelineRun
		if err := tx.Where("is_active = ?", false).Find(&staleRuns).Error; err != nil {
			return fmt.Errorf("查询历史运行失败: %w", err)
		}
		for _, stale := range staleRuns {
			if err := tx.Where("run_id = ?", stale.RunID).Delete(&model.ProductAggregate{}).Error; err != nil {
				return fmt.Errorf("清理历史产品聚合失败: %w", err)
			}
			if err := tx.Where("run_id = ?", stale.RunID).Delete(&model.CustomerAggregate{}).Error; err != nil {
				return fmt.Errorf("清理历史客户聚合失败: %w", err)
			}
			if err := tx.Where("run_id = ?", stale.RunID).Delete(&model.RevenueForecast{}).Error; err != nil {
				return fmt.Errorf("清理历史收入预测失败: %w", err)
			}
			if err := tx.Where("id = ?", stale.ID).Delete(&model.PipelineRun{}).Error; err != nil {
				return fmt.Errorf("清理历史运行记录失败: %w", err)
			}
		}

		// 2. 写入新一代聚合行（此时run尚未入库，读方不可见）
		if len(products) > 0 {
			if err := tx.CreateInBatches(products, replaceBatchSize).Error; err != nil {
				return fmt.Errorf("写入产品聚合失败: %w", err)
			}
		}
		if len(customers) > 0 {
			if err := tx.CreateInBatches(customers, replaceBatchSize).Error; err != nil {
				return fmt.Errorf("写入客户聚合失败: %w", err)
			}
		}
		if len(forecasts) > 0 {
			if err := tx.CreateInBatches(forecasts, replaceBatchSize).Error; err != nil {
				return fmt.Errorf("写入收入预测失败: %w", err)
			}
		}

		// 3. 停用旧active代（数据行保留，见步骤1）
		if err := tx.Model(&model.PipelineRun{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("停用旧运行失败: %w", err)
		}

		// 4. 最后落run记录并置为active，事务提交即整体可见
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("写入运行记录失败: %w", err)
		}
		return nil
	})
}

func (r *aggregateRepository) GetActiveRun(ctx context.Context) (*model.PipelineRun, error) {
	var run model.PipelineRun
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).
		Order("started_at DESC").First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *aggregateRepository) ListProducts(ctx context.Context, runID string, filter ProductFilter, page, pageSize int) ([]*model.ProductAggregate, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	db := r.db.WithContext(ctx).Model(&model.ProductAggregate{}).Where("run_id = ?", runID)
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.Brand != "" {
		db = db.Where("brand = ?", filter.Brand)
	}
	if filter.Trend != "" {
		db = db.Where("trend_status = ?", filter.Trend)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []*model.ProductAggregate
	if err := db.Order("total_revenue DESC, product_sku ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *aggregateRepository) ListAllProducts(ctx context.Context, runID string) ([]*model.ProductAggregate, error) {
	var list []*model.ProductAggregate
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).
		Order("product_sku ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *aggregateRepository) GetProductBySKU(ctx context.Context, runID, sku string) (*model.ProductAggregate, error) {
	var agg model.ProductAggregate
	if err := r.db.WithContext(ctx).Where("run_id = ? AND product_sku = ?", runID, sku).
		First(&agg).Error; err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *aggregateRepository) ListCustomers(ctx context.Context, runID string) ([]*model.CustomerAggregate, error) {
	var list []*model.CustomerAggregate
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).
		Order("user_id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *aggregateRepository) ListForecasts(ctx context.Context, runID string) ([]*model.RevenueForecast, error) {
	var list []*model.RevenueForecast
	if err := r.db.WithContext(ctx).Where("run_id = ?", runID).
		Order("forecast_date ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
