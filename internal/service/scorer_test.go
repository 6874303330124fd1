package service

import (
	"testing"

	"RetailSense/internal/config"
	"RetailSense/internal/model"
)

func defaultScorer() *Scorer {
	return NewScorer(config.ScoreWeights{Conversion: 40, Revenue: 30, Reach: 20, Trend: 10})
}

func TestScoreWeightedSum(t *testing.T) {
	// 0.5*40 + 2.0/10*30 + 50/100*20 + 10（正趋势加分）= 46
	agg := &model.ProductAggregate{
		ViewToPurchaseRate: floatPtr(0.5),
		RevenuePerView:     floatPtr(2.0),
		UniqueUsers:        50,
		TrendCorrelation:   floatPtr(0.5),
	}
	if got := defaultScorer().Score(agg); got != 46 {
		t.Errorf("Score = %v, 期望 46", got)
	}
	if agg.PerformanceScore != 46 {
		t.Errorf("PerformanceScore未写回: %v", agg.PerformanceScore)
	}
}

func TestScoreNullRatiosContributeZero(t *testing.T) {
	// null比率按0计入，不取消资格：只剩触达项 20/100*20 = 4
	agg := &model.ProductAggregate{UniqueUsers: 20}
	if got := defaultScorer().Score(agg); got != 4 {
		t.Errorf("Score = %v, 期望 4", got)
	}
}

func TestScoreReachCapped(t *testing.T) {
	// 触达项封顶在100用户：500用户与100用户得分相同
	a := &model.ProductAggregate{UniqueUsers: 500}
	b := &model.ProductAggregate{UniqueUsers: 100}
	if defaultScorer().Score(a) != defaultScorer().Score(b) {
		t.Error("触达项未封顶")
	}
}

func TestScoreTrendBonusOnlyWhenPositive(t *testing.T) {
	scorer := defaultScorer()

	withPositive := scorer.Score(&model.ProductAggregate{TrendCorrelation: floatPtr(0.05)})
	withNegative := scorer.Score(&model.ProductAggregate{TrendCorrelation: floatPtr(-0.5)})
	withNull := scorer.Score(&model.ProductAggregate{})

	// 任何正相关（哪怕低于分类阈值）都获得趋势加分
	if withPositive != 10 {
		t.Errorf("正相关得分 = %v, 期望 10", withPositive)
	}
	if withNegative != 0 {
		t.Errorf("负相关得分 = %v, 期望 0", withNegative)
	}
	if withNull != 0 {
		t.Errorf("null相关得分 = %v, 期望 0", withNull)
	}
}

func TestScoreNoUpperClamp(t *testing.T) {
	// revenue_per_view很高时得分可超100，不截断
	agg := &model.ProductAggregate{
		ViewToPurchaseRate: floatPtr(1.0),
		RevenuePerView:     floatPtr(50),
		UniqueUsers:        1000,
		TrendCorrelation:   floatPtr(0.9),
	}
	// 40 + 150 + 20 + 10 = 220
	if got := defaultScorer().Score(agg); got != 220 {
		t.Errorf("Score = %v, 期望 220", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	agg := &model.ProductAggregate{
		ViewToPurchaseRate: floatPtr(0.123456),
		RevenuePerView:     floatPtr(1.789),
		UniqueUsers:        37,
		TrendCorrelation:   floatPtr(0.2),
	}
	first := defaultScorer().Score(agg)
	for i := 0; i < 10; i++ {
		if got := defaultScorer().Score(agg); got != first {
			t.Fatalf("第%d次得分 = %v, 与首次 %v 不一致", i, got, first)
		}
	}
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	// 用二进制可精确表示的值避免浮点表示误差干扰
	cases := []struct{ in, want float64 }{
		{0.125, 0.13}, // 银行家舍入会得0.12
		{-0.125, -0.13},
		{0.375, 0.38},
		{1.0625, 1.06},
		{46.5, 46.5},
	}
	for _, c := range cases {
		if got := round2(c.in); got != c.want {
			t.Errorf("round2(%v) = %v, 期望 %v", c.in, got, c.want)
		}
	}
}
