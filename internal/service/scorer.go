package service

import (
	"math"

	"RetailSense/internal/config"
	"RetailSense/internal/model"
)

// Scorer 综合绩效评分：转化效率、收入效率、用户触达、趋势方向的加权和。
// 评分是排序信号而非百分比，无上限截断（revenue_per_view很高的产品可超100分）
type Scorer struct {
	weights config.ScoreWeights
}

func NewScorer(weights config.ScoreWeights) *Scorer {
	if weights.Conversion == 0 && weights.Revenue == 0 && weights.Reach == 0 && weights.Trend == 0 {
		weights = config.ScoreWeights{Conversion: 40, Revenue: 30, Reach: 20, Trend: 10}
	}
	return &Scorer{weights: weights}
}

// Score 计算单个聚合行的得分并写入PerformanceScore。
// null比率按0贡献计入而非取消资格；仅正相关获得趋势加分。
// 纯函数：相同输入恒产出相同得分（精确到2位小数）
func (s *Scorer) Score(agg *model.ProductAggregate) float64 {
	score := orZero(agg.ViewToPurchaseRate)*s.weights.Conversion +
		orZero(agg.RevenuePerView)/10*s.weights.Revenue +
		math.Min(float64(agg.UniqueUsers)/100, 1.0)*s.weights.Reach
	if agg.TrendCorrelation != nil && *agg.TrendCorrelation > 0 {
		score += s.weights.Trend
	}
	score = round2(score)
	agg.PerformanceScore = score
	return score
}

// orZero null比率的0兜底
func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// round2 四舍五入到2位小数（half away from zero，math.Round语义）
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
