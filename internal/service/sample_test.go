package service

import (
	"reflect"
	"testing"

	"RetailSense/internal/model"
)

func TestGenerateDeterministicWithSeed(t *testing.T) {
	svc := NewSampleService()

	first := svc.Generate(10, testWindow(), 42)
	second := svc.Generate(10, testWindow(), 42)

	if len(first) == 0 {
		t.Fatal("期望生成非空事件集")
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("同seed两次生成结果不一致")
	}

	different := svc.Generate(10, testWindow(), 7)
	if reflect.DeepEqual(first, different) {
		t.Fatal("不同seed期望生成不同结果")
	}
}

func TestGenerateRevenueOnlyOnPurchases(t *testing.T) {
	rows := NewSampleService().Generate(20, testWindow(), 42)

	var purchases int
	for _, row := range rows {
		if row.EventName == string(model.EventPurchase) {
			purchases++
			if row.Revenue == nil || *row.Revenue <= 0 {
				t.Fatalf("purchase行revenue = %v, 期望正值", row.Revenue)
			}
		} else if row.Revenue != nil {
			t.Fatalf("%s行带revenue = %v, 期望nil", row.EventName, *row.Revenue)
		}
	}
	if purchases == 0 {
		t.Fatal("期望生成至少1条purchase")
	}
}

func TestGenerateRowsWithinWindow(t *testing.T) {
	window := testWindow()
	rows := NewSampleService().Generate(10, window, 42)

	for _, row := range rows {
		if row.EventDate < window.Start || row.EventDate > window.End {
			t.Fatalf("事件日期 %s 超出窗口 [%s, %s]", row.EventDate, window.Start, window.End)
		}
	}
}

func TestRoundCentsHalfAwayFromZero(t *testing.T) {
	// 与评分的round2同语义；用二进制可精确表示的值
	cases := []struct{ in, want float64 }{
		{0.125, 0.13},
		{-0.125, -0.13},
		{0.375, 0.38},
		{20.5, 20.5},
	}
	for _, c := range cases {
		if got := roundCents(c.in); got != c.want {
			t.Errorf("roundCents(%v) = %v, 期望 %v", c.in, got, c.want)
		}
	}
}

func TestGenerateSurvivesPipeline(t *testing.T) {
	// 样本数据过规范化+聚合后应产出聚合行（数据本身必须是合法的）
	rows := NewSampleService().Generate(15, testWindow(), 42)
	for i, row := range rows {
		row.ID = uint64(i + 1)
	}

	norm := NewNormalizer(testLogger()).Normalize(rows, testWindow())
	if norm.Dropped != 0 {
		t.Fatalf("样本数据被排除%d行, 期望 0", norm.Dropped)
	}

	aggs := NewAggregationService(5, testLogger()).BuildProductAggregates(norm.Events)
	if len(aggs) == 0 {
		t.Fatal("期望产出聚合行")
	}
}
