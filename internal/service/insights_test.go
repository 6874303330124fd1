package service

import (
	"testing"

	"RetailSense/internal/model"
)

func insightsFixture() []*model.ProductAggregate {
	return []*model.ProductAggregate{
		{ProductSKU: "A", ProductName: "Pro Speaker", Category: "Audio", TotalRevenue: 500, Views: 100, Purchases: 10, ViewToPurchaseRate: floatPtr(0.1)},
		{ProductSKU: "B", ProductName: "Smart Watch", Category: "Wearables", TotalRevenue: 900, Views: 200, Purchases: 6, ViewToPurchaseRate: floatPtr(0.03)},
		{ProductSKU: "C", ProductName: "Ultra Cable", Category: "Audio", TotalRevenue: 100, Views: 50, Purchases: 0, ViewToPurchaseRate: nil},
	}
}

func TestAnalyzeCategoriesOrderedByRevenue(t *testing.T) {
	stats := NewInsightsService().AnalyzeCategories(insightsFixture())

	if len(stats) != 2 {
		t.Fatalf("品类数 = %d, 期望 2", len(stats))
	}
	if stats[0].Category != "Wearables" || stats[0].CategoryRevenue != 900 {
		t.Errorf("首位品类 = %+v, 期望 Wearables/900", stats[0])
	}
	audio := stats[1]
	if audio.ProductCount != 2 || audio.CategoryRevenue != 600 {
		t.Errorf("Audio汇总 = %+v", audio)
	}
	// 均值只对有转化率的产品求（null不计入分母）
	if audio.AvgConversionRate != 0.1 {
		t.Errorf("Audio平均转化率 = %v, 期望 0.1", audio.AvgConversionRate)
	}
}

func TestBuildReportSummary(t *testing.T) {
	report := NewInsightsService().BuildReport(insightsFixture())

	s := report.ExecutiveSummary
	if s.TotalProducts != 3 || s.TotalRevenue != 1500 {
		t.Errorf("摘要 = %+v", s)
	}
	if s.TopPerformingCategory != "Wearables" {
		t.Errorf("最高收入品类 = %s, 期望 Wearables", s.TopPerformingCategory)
	}
	if s.BestProduct != "Smart Watch" {
		t.Errorf("最佳产品 = %s, 期望 Smart Watch", s.BestProduct)
	}
	if len(report.KeyFindings) == 0 || len(report.Recommendations) == 0 {
		t.Error("期望产出发现与建议")
	}
}

func TestBuildReportEmptyPortfolio(t *testing.T) {
	// 空集合：零值摘要，不panic
	report := NewInsightsService().BuildReport(nil)

	if report.ExecutiveSummary.TotalProducts != 0 {
		t.Errorf("TotalProducts = %d, 期望 0", report.ExecutiveSummary.TotalProducts)
	}
	if len(report.KeyFindings) != 0 {
		t.Errorf("KeyFindings = %v, 期望空", report.KeyFindings)
	}
}
