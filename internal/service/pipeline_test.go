package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"RetailSense/internal/config"
	"RetailSense/internal/model"
	"RetailSense/internal/repository"
)

var errTestUnavailable = errors.New("服务不可用")

// memRawRepo 内存原始事件仓储（测试用）
type memRawRepo struct {
	rows      []*model.RawEventRow
	listCalls int
}

func (m *memRawRepo) SaveRows(_ context.Context, rows []*model.RawEventRow) error {
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *memRawRepo) ListRowsByWindow(_ context.Context, start, end string) ([]*model.RawEventRow, error) {
	m.listCalls++
	var result []*model.RawEventRow
	for _, row := range m.rows {
		if row.EventDate >= start && row.EventDate <= end {
			result = append(result, row)
		}
	}
	return result, nil
}

func (m *memRawRepo) CountRows(_ context.Context) (int64, error) {
	return int64(len(m.rows)), nil
}

// memAggRepo 内存聚合仓储（测试用）：捕获ReplaceRun的完整载荷
type memAggRepo struct {
	run       *model.PipelineRun
	products  []*model.ProductAggregate
	customers []*model.CustomerAggregate
	forecasts []*model.RevenueForecast
}

func (m *memAggRepo) ReplaceRun(_ context.Context, run *model.PipelineRun,
	products []*model.ProductAggregate,
	customers []*model.CustomerAggregate,
	forecasts []*model.RevenueForecast) error {
	m.run = run
	m.products = products
	m.customers = customers
	m.forecasts = forecasts
	return nil
}

func (m *memAggRepo) GetActiveRun(_ context.Context) (*model.PipelineRun, error) {
	return m.run, nil
}

func (m *memAggRepo) ListProducts(_ context.Context, _ string, _ repository.ProductFilter, _, _ int) ([]*model.ProductAggregate, int64, error) {
	return m.products, int64(len(m.products)), nil
}

func (m *memAggRepo) ListAllProducts(_ context.Context, _ string) ([]*model.ProductAggregate, error) {
	return m.products, nil
}

func (m *memAggRepo) GetProductBySKU(_ context.Context, _, sku string) (*model.ProductAggregate, error) {
	for _, p := range m.products {
		if p.ProductSKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memAggRepo) ListCustomers(_ context.Context, _ string) ([]*model.CustomerAggregate, error) {
	return m.customers, nil
}

func (m *memAggRepo) ListForecasts(_ context.Context, _ string) ([]*model.RevenueForecast, error) {
	return m.forecasts, nil
}

func newTestPipeline(rawRepo repository.RawEventRepository, aggRepo repository.AggregateRepository) *PipelineService {
	cfg := &config.Config{Pipeline: testPipelineCfg()}
	prediction := NewPredictionService(nil, nil, nil, cfg.Pipeline, nil, testLogger())
	return NewPipelineService(rawRepo, aggRepo, prediction, cfg, testLogger())
}

func seededRawRepo(t *testing.T) *memRawRepo {
	t.Helper()
	rows := NewSampleService().Generate(12, testWindow(), 42)
	for i, row := range rows {
		row.ID = uint64(i + 1)
	}
	return &memRawRepo{rows: rows}
}

func TestPipelineRunEndToEnd(t *testing.T) {
	rawRepo := seededRawRepo(t)
	aggRepo := &memAggRepo{}
	svc := newTestPipeline(rawRepo, aggRepo)

	run, err := svc.Run(context.Background(), testWindow(), false)
	if err != nil {
		t.Fatal(err)
	}

	if run.Status != model.RunStatusSucceeded {
		t.Errorf("Status = %s, 期望 succeeded", run.Status)
	}
	if run.RunID == "" {
		t.Error("期望生成RunID")
	}
	if run.ProductCount == 0 || int(run.ProductCount) != len(aggRepo.products) {
		t.Errorf("ProductCount = %d, 落库 %d", run.ProductCount, len(aggRepo.products))
	}
	if run.FinishedAt == nil {
		t.Error("期望填充FinishedAt")
	}

	// 每个聚合行都带本次运行ID且完成评分派生
	for _, p := range aggRepo.products {
		if p.RunID != run.RunID {
			t.Fatalf("%s RunID = %s, 期望 %s", p.ProductSKU, p.RunID, run.RunID)
		}
		if p.TrendStatus == "" {
			t.Fatalf("%s 缺少趋势分类", p.ProductSKU)
		}
	}
	for _, c := range aggRepo.customers {
		if c.RunID != run.RunID {
			t.Fatalf("客户%s RunID不匹配", c.UserID)
		}
	}
}

func TestPipelineRejectsInvalidWindowBeforeWork(t *testing.T) {
	rawRepo := seededRawRepo(t)
	svc := newTestPipeline(rawRepo, &memAggRepo{})

	_, err := svc.Run(context.Background(), config.DateWindow{Start: "20210331", End: "20210101"}, false)
	if err == nil {
		t.Fatal("倒置窗口期望报错")
	}
	if rawRepo.listCalls != 0 {
		t.Error("窗口校验失败后不应读取原始数据")
	}

	_, err = svc.Run(context.Background(), config.DateWindow{Start: "bad", End: "20210101"}, false)
	if err == nil {
		t.Fatal("非法日期格式期望报错")
	}
}

func TestPipelineEmptyWindowSucceeds(t *testing.T) {
	// 窗口内没有任何行：运行成功，产出空聚合集
	aggRepo := &memAggRepo{}
	svc := newTestPipeline(&memRawRepo{}, aggRepo)

	run, err := svc.Run(context.Background(), testWindow(), false)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != model.RunStatusSucceeded {
		t.Errorf("Status = %s, 期望 succeeded", run.Status)
	}
	if run.ProductCount != 0 || run.TotalRows != 0 {
		t.Errorf("计数 = %d/%d, 期望 0/0", run.ProductCount, run.TotalRows)
	}
}

func TestPipelineDeterministicAcrossRuns(t *testing.T) {
	// 相同输入两次运行，聚合集合逐字节一致（RunID等运行元数据不参与序列化）
	rawRepo := seededRawRepo(t)

	first := &memAggRepo{}
	if _, err := newTestPipeline(rawRepo, first).Run(context.Background(), testWindow(), false); err != nil {
		t.Fatal(err)
	}
	second := &memAggRepo{}
	if _, err := newTestPipeline(rawRepo, second).Run(context.Background(), testWindow(), false); err != nil {
		t.Fatal(err)
	}

	a, err := json.Marshal(first.products)
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(second.products)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Fatal("两次运行的产品聚合不一致")
	}

	ca, _ := json.Marshal(first.customers)
	cb, _ := json.Marshal(second.customers)
	if string(ca) != string(cb) {
		t.Fatal("两次运行的客户聚合不一致")
	}
}

func TestPipelineWarningsDowngradeStatus(t *testing.T) {
	// 分群服务整体失败：运行仍成功，但状态带告警且失败数被计入
	rawRepo := seededRawRepo(t)
	aggRepo := &memAggRepo{}

	cfg := &config.Config{Pipeline: testPipelineCfg()}
	segmenter := &stubSegmenter{err: errTestUnavailable}
	prediction := NewPredictionService(nil, segmenter, nil, cfg.Pipeline, nil, testLogger())
	svc := NewPipelineService(rawRepo, aggRepo, prediction, cfg, testLogger())

	run, err := svc.Run(context.Background(), testWindow(), true)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != model.RunStatusWithWarnings {
		t.Errorf("Status = %s, 期望 succeeded_with_warnings", run.Status)
	}
	if run.FailedPredictions == 0 {
		t.Error("期望计入失败预测数")
	}
	if len(run.Warnings) == 0 {
		t.Error("期望持久化告警")
	}
}
