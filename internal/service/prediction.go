package service

import (
	"context"
	"fmt"
	"sort"

	"RetailSense/internal/config"
	"RetailSense/internal/interfaces"
	"RetailSense/internal/model"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PredictionService 外部预测服务边界：把聚合结果整形为各服务期望的
// 特征向量，按键左连接合并返回值。任何子集失败都不会使整个流水线失败——
// 失败的键降级为null预测并计入告警，这是一等需求而非事后补救
type PredictionService struct {
	forecaster interfaces.RevenueForecaster  // 可为nil（未配置）
	segmenter  interfaces.CustomerSegmenter  // 可为nil
	classifier interfaces.ProductClassifier  // 可为nil
	pipeline   config.PipelineConfig
	batchSize  int
	parallel   int
	logger     *logrus.Logger
}

func NewPredictionService(
	forecaster interfaces.RevenueForecaster,
	segmenter interfaces.CustomerSegmenter,
	classifier interfaces.ProductClassifier,
	pipelineCfg config.PipelineConfig,
	classifyCfg *config.CollaboratorConfig,
	logger *logrus.Logger,
) *PredictionService {
	batchSize, parallel := 100, 4
	if classifyCfg != nil {
		if classifyCfg.BatchSize > 0 {
			batchSize = classifyCfg.BatchSize
		}
		if classifyCfg.Parallel > 0 {
			parallel = classifyCfg.Parallel
		}
	}
	return &PredictionService{
		forecaster: forecaster,
		segmenter:  segmenter,
		classifier: classifier,
		pipeline:   pipelineCfg,
		batchSize:  batchSize,
		parallel:   parallel,
		logger:     logger,
	}
}

// MergeClassifications 产品分类结果按SKU左连接到聚合行。
// 分批并发请求（有界并发+每请求超时），失败批次的全部SKU保持null并计数
func (p *PredictionService) MergeClassifications(ctx context.Context, events []*model.Event, products []*model.ProductAggregate) (failed int64, warnings []string) {
	if p.classifier == nil || len(products) == 0 {
		return 0, nil
	}

	features := p.BuildEarlyWindowFeatures(events, products)
	batches := splitFeatureBatches(features, p.batchSize)
	results := make([]map[string]model.ClassResult, len(batches))
	batchErrs := make([]error, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallel)
	for i, batch := range batches {
		g.Go(func() error {
			// 运行被中止时不再发起新请求
			if err := gctx.Err(); err != nil {
				batchErrs[i] = err
				return nil
			}
			res, err := p.classifier.Classify(gctx, batch)
			if err != nil {
				batchErrs[i] = err
				return nil // 局部失败不传播
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	merged := make(map[string]model.ClassResult)
	for i, res := range results {
		if batchErrs[i] != nil {
			failed += int64(len(batches[i]))
			warnings = append(warnings, fmt.Sprintf("分类批次%d失败（%d个SKU降级为null）: %v", i, len(batches[i]), batchErrs[i]))
			continue
		}
		for sku, r := range res {
			merged[sku] = r
		}
	}

	// 左连接：无预测结果的产品保留在输出中，预测字段保持null
	for _, agg := range products {
		if r, ok := merged[agg.ProductSKU]; ok {
			label := r.Label
			prob := r.Probability
			agg.PredictedLabel = &label
			agg.PredictedProbability = &prob
		}
	}
	return failed, warnings
}

// MergeSegments 客户簇ID按user_id左连接到客户聚合行
func (p *PredictionService) MergeSegments(ctx context.Context, customers []*model.CustomerAggregate) (failed int64, warnings []string) {
	if p.segmenter == nil || len(customers) == 0 {
		return 0, nil
	}

	features := make([]model.CustomerFeatures, 0, len(customers))
	for _, c := range customers {
		features = append(features, model.CustomerFeatures{
			UserID:           c.UserID,
			TotalPurchases:   c.TotalPurchases,
			TotalRevenue:     c.TotalRevenue,
			AvgOrderValue:    orZero(c.AvgOrderValue),
			DaysActive:       c.DaysActive,
			UniqueCategories: c.UniqueCategories,
			DeviceDiversity:  c.DeviceDiversity,
			GeographicReach:  c.GeographicReach,
		})
	}

	segments, err := p.segmenter.Segment(ctx, features)
	if err != nil {
		p.logger.WithError(err).Warn("分群服务调用失败，全部客户segment_id保持null")
		return int64(len(customers)), []string{fmt.Sprintf("分群服务失败（%d个客户降级为null）: %v", len(customers), err)}
	}

	for _, c := range customers {
		if id, ok := segments[c.UserID]; ok {
			clusterID := id
			c.SegmentID = &clusterID
		} else {
			failed++
		}
	}
	if failed > 0 {
		warnings = append(warnings, fmt.Sprintf("分群响应缺失%d个客户，segment_id保持null", failed))
	}
	return failed, warnings
}

// FetchForecast 汇总全组合每日收入序列并调用预测服务。
// 失败时返回空切片与告警，不中断运行
func (p *PredictionService) FetchForecast(ctx context.Context, events []*model.Event, runID string, horizon int) ([]*model.RevenueForecast, []string) {
	if p.forecaster == nil {
		return nil, nil
	}

	series := BuildDailyRevenueSeries(events)
	if len(series) == 0 {
		return nil, nil
	}

	points, err := p.forecaster.Forecast(ctx, series, horizon)
	if err != nil {
		p.logger.WithError(err).Warn("收入预测服务调用失败，本次运行不产出预测")
		return nil, []string{fmt.Sprintf("收入预测失败: %v", err)}
	}

	forecasts := make([]*model.RevenueForecast, 0, len(points))
	for _, pt := range points {
		forecasts = append(forecasts, &model.RevenueForecast{
			RunID:          runID,
			ForecastDate:   pt.Date,
			PredictedValue: pt.Value,
			LowerBound:     pt.Lower,
			UpperBound:     pt.Upper,
		})
	}
	return forecasts, nil
}

// BuildEarlyWindowFeatures 构造分类服务的早期窗口特征：
// 每个SKU仅取其首次活跃起early_window_days天内的事件，不含完整历史
func (p *PredictionService) BuildEarlyWindowFeatures(events []*model.Event, products []*model.ProductAggregate) []model.ProductFeatures {
	windowDays := int64(p.pipeline.EarlyWindowDays)
	if windowDays <= 0 {
		windowDays = 7
	}

	type earlyAccum struct {
		firstDay   int64
		views      int64
		purchases  int64
		priceSum   float64
		priceCount int64
		users      map[string]struct{}
		countries  map[string]struct{}
	}

	wanted := make(map[string]*earlyAccum, len(products))
	for _, agg := range products {
		wanted[agg.ProductSKU] = &earlyAccum{
			firstDay:  model.DayOrdinalOf(agg.FirstActivityDate),
			users:     make(map[string]struct{}),
			countries: make(map[string]struct{}),
		}
	}

	for _, e := range events {
		acc, ok := wanted[e.ProductSKU]
		if !ok {
			continue
		}
		if e.DayOrdinal >= acc.firstDay+windowDays {
			continue
		}
		switch e.EventName {
		case model.EventViewItem:
			acc.views++
		case model.EventPurchase:
			acc.purchases++
		}
		acc.priceSum += e.Price
		acc.priceCount++
		if e.UserID != "" {
			acc.users[e.UserID] = struct{}{}
		}
		if e.Country != "" {
			acc.countries[e.Country] = struct{}{}
		}
	}

	features := make([]model.ProductFeatures, 0, len(products))
	for _, agg := range products {
		acc := wanted[agg.ProductSKU]
		f := model.ProductFeatures{
			ProductSKU:  agg.ProductSKU,
			Views:       acc.views,
			Purchases:   acc.purchases,
			UniqueUsers: int64(len(acc.users)),
			Countries:   int64(len(acc.countries)),
		}
		if acc.priceCount > 0 {
			f.AvgPrice = acc.priceSum / float64(acc.priceCount)
		}
		if acc.views > 0 {
			f.ConversionRate = float64(acc.purchases) / float64(acc.views)
		}
		features = append(features, f)
	}
	return features
}

// BuildDailyRevenueSeries purchase事件→按日期升序的（日期，当日总收入）序列
func BuildDailyRevenueSeries(events []*model.Event) []model.DailyRevenue {
	byDate := make(map[string]float64)
	for _, e := range events {
		if e.EventName != model.EventPurchase {
			continue
		}
		byDate[e.EventDate.Format(config.DateLayout)] += e.Revenue
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	series := make([]model.DailyRevenue, 0, len(dates))
	for _, d := range dates {
		series = append(series, model.DailyRevenue{Date: d, Revenue: byDate[d]})
	}
	return series
}

// splitFeatureBatches 特征向量按批大小切分
func splitFeatureBatches(features []model.ProductFeatures, size int) [][]model.ProductFeatures {
	if size <= 0 {
		size = 100
	}
	var batches [][]model.ProductFeatures
	for start := 0; start < len(features); start += size {
		end := start + size
		if end > len(features) {
			end = len(features)
		}
		batches = append(batches, features[start:end])
	}
	return batches
}
