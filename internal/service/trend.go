package service

import (
	"math"

	"RetailSense/internal/model"

	"github.com/montanaflynn/stats"
)

// TrendAnalyzer 趋势分析：对每个产品的purchase事件样本计算
// （天序号，收入）的皮尔逊相关系数，并按阈值分类。
// 不足2个去重购买日期时相关系数无定义——这是可预期的数据不足，
// 不是计算错误，产出null并归为Stable
type TrendAnalyzer struct {
	threshold float64 // 分类阈值（±），来源脚本固定为0.1
}

func NewTrendAnalyzer(threshold float64) *TrendAnalyzer {
	if threshold <= 0 {
		threshold = 0.1
	}
	return &TrendAnalyzer{threshold: threshold}
}

// Analyze 就地填充TrendCorrelation与TrendStatus
func (t *TrendAnalyzer) Analyze(agg *model.ProductAggregate) {
	corr, ok := t.Correlation(agg.PurchasePoints)
	if !ok {
		agg.TrendCorrelation = nil
		agg.TrendStatus = model.TrendStable
		return
	}
	agg.TrendCorrelation = &corr
	agg.TrendStatus = t.Classify(&corr)
}

// Correlation 皮尔逊相关系数（协方差除以标准差乘积，双精度）。
// 样本不足、日期或收入零方差时返回ok=false
func (t *TrendAnalyzer) Correlation(points []model.RevenuePoint) (float64, bool) {
	if len(points) < 2 {
		return 0, false
	}
	distinctDays := make(map[int64]struct{}, len(points))
	days := make([]float64, len(points))
	revenues := make([]float64, len(points))
	for i, p := range points {
		distinctDays[p.DayOrdinal] = struct{}{}
		days[i] = float64(p.DayOrdinal)
		revenues[i] = p.Revenue
	}
	if len(distinctDays) < 2 {
		return 0, false
	}

	corr, err := stats.Pearson(days, revenues)
	if err != nil {
		return 0, false
	}
	// 收入零方差时标准差为0，除法产生NaN，同样视为信号不足
	if math.IsNaN(corr) || math.IsInf(corr, 0) {
		return 0, false
	}
	return corr, true
}

// Classify 阈值分类：>threshold为Growing，<-threshold为Declining，
// 其余（含null）为Stable
func (t *TrendAnalyzer) Classify(corr *float64) model.TrendStatus {
	if corr == nil {
		return model.TrendStable
	}
	if *corr > t.threshold {
		return model.TrendGrowing
	}
	if *corr < -t.threshold {
		return model.TrendDeclining
	}
	return model.TrendStable
}
