package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"RetailSense/internal/config"
	"RetailSense/internal/model"
	"RetailSense/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PipelineService 聚合流水线编排：
// 规范化 → 产品聚合 → 趋势分析 → 综合评分 → （可选）外部预测合并 → 原子换代落库。
// 每次运行整体重建，不做增量修补；同一输入重复运行产出逐字节一致的聚合集合
type PipelineService struct {
	rawRepo    repository.RawEventRepository
	aggRepo    repository.AggregateRepository
	normalizer *Normalizer
	aggregator *AggregationService
	trend      *TrendAnalyzer
	scorer     *Scorer
	prediction *PredictionService
	insights   *InsightsService
	cfg        *config.Config
	logger     *logrus.Logger
}

func NewPipelineService(
	rawRepo repository.RawEventRepository,
	aggRepo repository.AggregateRepository,
	prediction *PredictionService,
	cfg *config.Config,
	logger *logrus.Logger,
) *PipelineService {
	return &PipelineService{
		rawRepo:    rawRepo,
		aggRepo:    aggRepo,
		normalizer: NewNormalizer(logger),
		aggregator: NewAggregationService(cfg.Pipeline.MinActivity, logger),
		trend:      NewTrendAnalyzer(cfg.Pipeline.TrendThreshold),
		scorer:     NewScorer(cfg.Pipeline.ScoreWeights),
		prediction: prediction,
		insights:   NewInsightsService(),
		cfg:        cfg,
		logger:     logger,
	}
}

// Run 执行一次完整流水线。窗口非法是致命配置错误，在任何聚合开始前返回；
// 外部预测失败只降级不中断。成功的运行总是产出完整的聚合集合
// （预测字段可能为null）外加排除行数与预测失败数
func (s *PipelineService) Run(ctx context.Context, window config.DateWindow, withPredictions bool) (*model.PipelineRun, error) {
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("日期窗口非法: %w", err)
	}

	started := time.Now()
	runID := uuid.NewString()
	log := s.logger.WithField("run_id", runID)

	// 1. 读取窗口内原始行
	rows, err := s.rawRepo.ListRowsByWindow(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("读取原始事件失败: %w", err)
	}

	// 2. 规范化（数据质量闸门，静默排除并计数）
	norm := s.normalizer.Normalize(rows, window)

	// 3. 产品聚合（活动量门槛过滤在此发生）
	products := s.aggregator.BuildProductAggregates(norm.Events)

	// 4+5. 趋势与评分：每个产品只依赖自身事件，无跨产品共享状态，
	// 按SKU分区并行派生，无需加锁
	if err := s.deriveParallel(ctx, products); err != nil {
		return nil, fmt.Errorf("派生阶段失败: %w", err)
	}

	// 6. 客户聚合（仅供外部分群服务）
	customers := s.aggregator.BuildCustomerAggregates(norm.Events)

	// 7. 外部预测：左连接合并，失败键降级为null
	var failedPredictions int64
	var warnings []string
	var forecasts []*model.RevenueForecast
	if withPredictions {
		failed, warns := s.prediction.MergeClassifications(ctx, norm.Events, products)
		failedPredictions += failed
		warnings = append(warnings, warns...)

		failed, warns = s.prediction.MergeSegments(ctx, customers)
		failedPredictions += failed
		warnings = append(warnings, warns...)

		horizon := 30
		if fc, ok := s.cfg.Collaborators["forecast"]; ok && fc.Horizon > 0 {
			horizon = fc.Horizon
		}
		forecasts, warns = s.prediction.FetchForecast(ctx, norm.Events, runID, horizon)
		warnings = append(warnings, warns...)
	}

	// 8. 洞察报告
	report := s.insights.BuildReport(products)

	// 9. 组装运行记录
	run := &model.PipelineRun{
		RunID:             runID,
		Status:            model.RunStatusSucceeded,
		WindowStart:       window.Start,
		WindowEnd:         window.End,
		TotalRows:         int64(len(rows)),
		ExcludedRows:      norm.Dropped,
		ProductCount:      int64(len(products)),
		CustomerCount:     int64(len(customers)),
		FailedPredictions: failedPredictions,
		StartedAt:         started,
	}
	if len(warnings) > 0 {
		run.Status = model.RunStatusWithWarnings
		if data, err := json.Marshal(warnings); err == nil {
			run.Warnings = data
		}
	}
	if data, err := json.Marshal(report); err == nil {
		run.Insights = data
	}
	finished := time.Now()
	run.FinishedAt = &finished

	for _, p := range products {
		p.RunID = runID
	}
	for _, c := range customers {
		c.RunID = runID
	}

	// 10. 单事务写入并翻转active代（读方要么看旧一代，要么看完整新一代）
	if err := s.aggRepo.ReplaceRun(ctx, run, products, customers, forecasts); err != nil {
		return nil, fmt.Errorf("落库失败: %w", err)
	}

	log.WithFields(logrus.Fields{
		"products":           len(products),
		"customers":          len(customers),
		"excluded_rows":      norm.Dropped,
		"failed_predictions": failedPredictions,
		"status":             run.Status,
	}).Info("流水线运行完成")
	return run, nil
}

// deriveParallel 按SKU分区并行执行趋势分析与评分
func (s *PipelineService) deriveParallel(ctx context.Context, products []*model.ProductAggregate) error {
	partitions := s.cfg.Pipeline.Partitions
	if partitions <= 0 {
		partitions = 8
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(partitions)
	for _, agg := range products {
		g.Go(func() error {
			s.trend.Analyze(agg)
			s.scorer.Score(agg)
			return nil
		})
	}
	return g.Wait()
}
