package model

import (
	"time"

	"gorm.io/datatypes"
)

// 流水线运行状态
const (
	RunStatusRunning      = "running"
	RunStatusSucceeded    = "succeeded"
	RunStatusWithWarnings = "succeeded_with_warnings"
	RunStatusFailed       = "failed"
)

// PipelineRun 流水线运行记录：聚合结果按run_id换代，is_active翻转即整体原子替换
type PipelineRun struct {
	ID                uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RunID             string         `gorm:"column:run_id;type:varchar(64);uniqueIndex;not null;comment:全局唯一运行ID" json:"run_id"`
	Status            string         `gorm:"column:status;type:varchar(32);not null;default:running" json:"status"`
	IsActive          bool           `gorm:"column:is_active;type:boolean;index;not null;default:false;comment:当前对读方可见的一代" json:"is_active"`
	WindowStart       string         `gorm:"column:window_start;type:varchar(8);not null" json:"window_start"`
	WindowEnd         string         `gorm:"column:window_end;type:varchar(8);not null" json:"window_end"`
	TotalRows         int64          `gorm:"column:total_rows;type:bigint;not null;comment:窗口内原始行数" json:"total_rows"`
	ExcludedRows      int64          `gorm:"column:excluded_rows;type:bigint;not null;comment:数据质量过滤掉的行数" json:"excluded_rows"`
	ProductCount      int64          `gorm:"column:product_count;type:bigint;not null" json:"product_count"`
	CustomerCount     int64          `gorm:"column:customer_count;type:bigint;not null" json:"customer_count"`
	FailedPredictions int64          `gorm:"column:failed_predictions;type:bigint;not null;comment:降级为null的预测键数" json:"failed_predictions"`
	Warnings          datatypes.JSON `gorm:"column:warnings;type:jsonb;comment:运行期非致命告警" json:"warnings"`
	Insights          datatypes.JSON `gorm:"column:insights;type:jsonb;comment:运行后生成的洞察报告" json:"insights"`
	StartedAt         time.Time      `gorm:"column:started_at;type:timestamp;not null" json:"started_at"`
	FinishedAt        *time.Time     `gorm:"column:finished_at;type:timestamp" json:"finished_at"`
}

func (PipelineRun) TableName() string { return "pipeline_runs" }

// RevenueForecast 外部预测服务返回的每日收入预测（按run_id存储）
type RevenueForecast struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RunID          string    `gorm:"column:run_id;type:varchar(64);index;not null" json:"-"`
	ForecastDate   string    `gorm:"column:forecast_date;type:varchar(8);not null;comment:预测日期YYYYMMDD" json:"forecast_date"`
	PredictedValue float64   `gorm:"column:predicted_value;type:numeric(18,6);not null" json:"predicted_value"`
	LowerBound     float64   `gorm:"column:lower_bound;type:numeric(18,6);not null" json:"lower_bound"`
	UpperBound     float64   `gorm:"column:upper_bound;type:numeric(18,6);not null" json:"upper_bound"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamp;default:now()" json:"-"`
}

func (RevenueForecast) TableName() string { return "revenue_forecasts" }
