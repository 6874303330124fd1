package service

import (
	"fmt"
	"math"
	"sort"

	"RetailSense/internal/model"
)

// SimilarityService 相似产品检索：基于品类/品牌/价格/转化表现的
// 加权相似度，在当前active一代的聚合行上本地计算
type SimilarityService struct{}

func NewSimilarityService() *SimilarityService {
	return &SimilarityService{}
}

// SimilarProduct 相似检索结果项
type SimilarProduct struct {
	ProductSKU      string  `json:"product_sku"`
	ProductName     string  `json:"product_name"`
	Category        string  `json:"category"`
	SimilarityScore float64 `json:"similarity_score"`
	AvgPrice        float64 `json:"avg_price"`
	ConversionRate  float64 `json:"conversion_rate"`
}

// 相似度各项权重（沿用来源脚本的取值）
const (
	simWeightCategory    = 0.4
	simWeightBrand       = 0.2
	simWeightPrice       = 0.2
	simWeightPerformance = 0.2
)

// FindSimilar 返回与目标SKU最相似的topK个产品（按相似度降序，并以SKU字典序断平保证确定性）
func (s *SimilarityService) FindSimilar(products []*model.ProductAggregate, targetSKU string, topK int) ([]SimilarProduct, error) {
	if topK <= 0 {
		topK = 5
	}

	var target *model.ProductAggregate
	for _, p := range products {
		if p.ProductSKU == targetSKU {
			target = p
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("目标SKU不存在: %s", targetSKU)
	}

	similar := make([]SimilarProduct, 0, len(products)-1)
	for _, p := range products {
		if p.ProductSKU == targetSKU {
			continue
		}

		categoryMatch := 0.3
		if p.Category == target.Category {
			categoryMatch = 1.0
		}
		brandMatch := 0.5
		if p.Brand == target.Brand {
			brandMatch = 1.0
		}
		priceSimilarity := 0.0
		if maxPrice := math.Max(p.AvgPrice, target.AvgPrice); maxPrice > 0 {
			priceSimilarity = 1.0 - math.Abs(p.AvgPrice-target.AvgPrice)/maxPrice
		}
		performanceSimilarity := 1.0 - math.Abs(orZero(p.ViewToPurchaseRate)-orZero(target.ViewToPurchaseRate))

		score := categoryMatch*simWeightCategory + brandMatch*simWeightBrand +
			priceSimilarity*simWeightPrice + performanceSimilarity*simWeightPerformance

		similar = append(similar, SimilarProduct{
			ProductSKU:      p.ProductSKU,
			ProductName:     p.ProductName,
			Category:        p.Category,
			SimilarityScore: round3(score),
			AvgPrice:        p.AvgPrice,
			ConversionRate:  orZero(p.ViewToPurchaseRate),
		})
	}

	sort.SliceStable(similar, func(i, j int) bool {
		if similar[i].SimilarityScore != similar[j].SimilarityScore {
			return similar[i].SimilarityScore > similar[j].SimilarityScore
		}
		return similar[i].ProductSKU < similar[j].ProductSKU
	})

	if len(similar) > topK {
		similar = similar[:topK]
	}
	return similar, nil
}

// round3 相似度保留3位小数
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
