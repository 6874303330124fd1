package service

import (
	"testing"

	"RetailSense/internal/model"
)

func similarityFixture() []*model.ProductAggregate {
	return []*model.ProductAggregate{
		{ProductSKU: "TARGET", Category: "Audio", Brand: "AudioPro", AvgPrice: 100, ViewToPurchaseRate: floatPtr(0.1)},
		{ProductSKU: "TWIN", Category: "Audio", Brand: "AudioPro", AvgPrice: 100, ViewToPurchaseRate: floatPtr(0.1)},
		{ProductSKU: "SAME_CAT", Category: "Audio", Brand: "NextGen", AvgPrice: 300, ViewToPurchaseRate: floatPtr(0.05)},
		{ProductSKU: "OTHER", Category: "Computing", Brand: "TechCorp", AvgPrice: 900, ViewToPurchaseRate: nil},
	}
}

func TestFindSimilarRanksTwinFirst(t *testing.T) {
	similar, err := NewSimilarityService().FindSimilar(similarityFixture(), "TARGET", 3)
	if err != nil {
		t.Fatal(err)
	}

	if len(similar) != 3 {
		t.Fatalf("结果数 = %d, 期望 3", len(similar))
	}
	if similar[0].ProductSKU != "TWIN" {
		t.Errorf("最相似 = %s, 期望 TWIN", similar[0].ProductSKU)
	}
	// 完全一致的产品各项满分：0.4+0.2+0.2+0.2 = 1.0
	if similar[0].SimilarityScore != 1.0 {
		t.Errorf("TWIN相似度 = %v, 期望 1.0", similar[0].SimilarityScore)
	}
	if similar[len(similar)-1].ProductSKU != "OTHER" {
		t.Errorf("最不相似 = %s, 期望 OTHER", similar[len(similar)-1].ProductSKU)
	}
}

func TestFindSimilarUnknownTarget(t *testing.T) {
	if _, err := NewSimilarityService().FindSimilar(similarityFixture(), "MISSING", 3); err == nil {
		t.Fatal("目标SKU不存在时期望报错")
	}
}

func TestFindSimilarTopKTruncation(t *testing.T) {
	similar, err := NewSimilarityService().FindSimilar(similarityFixture(), "TARGET", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(similar) != 1 {
		t.Errorf("结果数 = %d, 期望 1", len(similar))
	}
}

func TestFindSimilarDeterministicTiebreak(t *testing.T) {
	// 两个同分候选按SKU字典序断平，多次调用顺序一致
	products := []*model.ProductAggregate{
		{ProductSKU: "TARGET", Category: "Audio", Brand: "AudioPro", AvgPrice: 100, ViewToPurchaseRate: floatPtr(0.1)},
		{ProductSKU: "B_TWIN", Category: "Audio", Brand: "AudioPro", AvgPrice: 100, ViewToPurchaseRate: floatPtr(0.1)},
		{ProductSKU: "A_TWIN", Category: "Audio", Brand: "AudioPro", AvgPrice: 100, ViewToPurchaseRate: floatPtr(0.1)},
	}
	for i := 0; i < 5; i++ {
		similar, err := NewSimilarityService().FindSimilar(products, "TARGET", 2)
		if err != nil {
			t.Fatal(err)
		}
		if similar[0].ProductSKU != "A_TWIN" || similar[1].ProductSKU != "B_TWIN" {
			t.Fatalf("第%d次顺序 = %s,%s, 期望 A_TWIN,B_TWIN", i, similar[0].ProductSKU, similar[1].ProductSKU)
		}
	}
}
