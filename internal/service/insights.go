package service

import (
	"fmt"
	"sort"

	"RetailSense/internal/model"
)

// InsightsService 运行后分析：品类汇总与高管洞察报告，
// 两者都是聚合行的纯函数
type InsightsService struct{}

func NewInsightsService() *InsightsService {
	return &InsightsService{}
}

// CategoryStat 单品类汇总
type CategoryStat struct {
	Category          string  `json:"category"`
	ProductCount      int64   `json:"product_count"`
	CategoryRevenue   float64 `json:"category_revenue"`
	AvgConversionRate float64 `json:"avg_conversion_rate"` // 仅对有浏览的产品求均值
	TotalViews        int64   `json:"total_views"`
	TotalPurchases    int64   `json:"total_purchases"`
}

// AnalyzeCategories 品类汇总，按品类收入降序（同收入按品类名断平）
func (s *InsightsService) AnalyzeCategories(products []*model.ProductAggregate) []CategoryStat {
	type catAccum struct {
		count     int64
		revenue   float64
		rateSum   float64
		rateCount int64
		views     int64
		purchases int64
	}
	byCat := make(map[string]*catAccum)
	for _, p := range products {
		acc, ok := byCat[p.Category]
		if !ok {
			acc = &catAccum{}
			byCat[p.Category] = acc
		}
		acc.count++
		acc.revenue += p.TotalRevenue
		if p.ViewToPurchaseRate != nil {
			acc.rateSum += *p.ViewToPurchaseRate
			acc.rateCount++
		}
		acc.views += p.Views
		acc.purchases += p.Purchases
	}

	result := make([]CategoryStat, 0, len(byCat))
	for cat, acc := range byCat {
		stat := CategoryStat{
			Category:        cat,
			ProductCount:    acc.count,
			CategoryRevenue: acc.revenue,
			TotalViews:      acc.views,
			TotalPurchases:  acc.purchases,
		}
		if acc.rateCount > 0 {
			stat.AvgConversionRate = acc.rateSum / float64(acc.rateCount)
		}
		result = append(result, stat)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CategoryRevenue != result[j].CategoryRevenue {
			return result[i].CategoryRevenue > result[j].CategoryRevenue
		}
		return result[i].Category < result[j].Category
	})
	return result
}

// InsightsReport 高管洞察报告
type InsightsReport struct {
	ExecutiveSummary ExecutiveSummary `json:"executive_summary"`
	KeyFindings      []string         `json:"key_findings"`
	Recommendations  []string         `json:"recommendations"`
}

// ExecutiveSummary 报告摘要
type ExecutiveSummary struct {
	TotalProducts         int64   `json:"total_products"`
	TotalRevenue          float64 `json:"total_revenue"`
	AverageConversionRate float64 `json:"average_conversion_rate"`
	TopPerformingCategory string  `json:"top_performing_category"`
	BestProduct           string  `json:"best_product"`
}

// BuildReport 基于聚合行生成洞察报告（空集合时产出零值摘要）
func (s *InsightsService) BuildReport(products []*model.ProductAggregate) *InsightsReport {
	report := &InsightsReport{
		KeyFindings:     []string{},
		Recommendations: []string{},
	}

	categories := s.AnalyzeCategories(products)
	var totalRevenue float64
	var rateSum float64
	var rateCount int64
	var best *model.ProductAggregate
	for _, p := range products {
		totalRevenue += p.TotalRevenue
		if p.ViewToPurchaseRate != nil {
			rateSum += *p.ViewToPurchaseRate
			rateCount++
		}
		if best == nil || p.TotalRevenue > best.TotalRevenue {
			best = p
		}
	}

	report.ExecutiveSummary = ExecutiveSummary{
		TotalProducts: int64(len(products)),
		TotalRevenue:  totalRevenue,
	}
	if rateCount > 0 {
		report.ExecutiveSummary.AverageConversionRate = rateSum / float64(rateCount)
	}
	if len(categories) > 0 {
		report.ExecutiveSummary.TopPerformingCategory = categories[0].Category
	}
	if best != nil {
		report.ExecutiveSummary.BestProduct = best.ProductName
	}

	if len(products) == 0 {
		return report
	}

	report.KeyFindings = []string{
		fmt.Sprintf("产品组合总收入: $%.2f", totalRevenue),
		fmt.Sprintf("平均转化率: %.2f%%", report.ExecutiveSummary.AverageConversionRate*100),
		fmt.Sprintf("收入最高品类: %s", report.ExecutiveSummary.TopPerformingCategory),
		fmt.Sprintf("最佳产品: %s ($%.2f)", report.ExecutiveSummary.BestProduct, best.TotalRevenue),
		fmt.Sprintf("产品组合覆盖%d个品类", len(categories)),
	}
	report.Recommendations = []string{
		"将营销预算集中到高转化率产品",
		"排查高流量低转化产品的定价策略",
		"扩充表现优异的产品品类",
		"上线相似产品推荐能力",
		"优化结账流程以提升加购到购买转化",
	}
	return report
}
