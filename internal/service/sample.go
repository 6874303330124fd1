package service

import (
	"fmt"
	"math"
	"math/rand"

	"RetailSense/internal/config"
	"RetailSense/internal/model"
)

// SampleService 演示数据生成器：离线环境下生成可复现的原始事件行，
// 让流水线在没有外部数据源时也能完整跑通。
// 固定种子下输出逐字节一致（确定性测试依赖这一点）
type SampleService struct{}

func NewSampleService() *SampleService {
	return &SampleService{}
}

// defaultSampleSeed 默认随机种子（沿用来源脚本的42）
const defaultSampleSeed = 42

var (
	sampleCategories = []string{"Electronics", "Audio", "Accessories", "Wearables", "Computing"}
	sampleBrands     = []string{"TechCorp", "AudioPro", "SmartDevices", "EliteGear", "NextGen"}
	samplePrefixes   = []string{"Premium", "Pro", "Smart", "Wireless", "Digital", "Ultra", "Advanced", "Professional"}
	sampleProducts   = []string{"Headphones", "Speaker", "Mouse", "Keyboard", "Monitor", "Watch", "Camera", "Charger", "Cable", "Stand"}
	sampleSuffixes   = []string{"2024", "X", "Plus", "Max", "Elite", "Pro", "HD", "4K"}
)

// Generate 生成nProducts个产品的原始事件行（日期均匀散布在窗口内）
func (s *SampleService) Generate(nProducts int, window config.DateWindow, seed int64) []*model.RawEventRow {
	if nProducts <= 0 {
		nProducts = 50
	}
	if seed == 0 {
		seed = defaultSampleSeed
	}
	rng := rand.New(rand.NewSource(seed))
	start, end := window.Bounds()
	windowDays := int(end.Sub(start).Hours()/24) + 1

	var rows []*model.RawEventRow
	for i := 0; i < nProducts; i++ {
		sku := fmt.Sprintf("PROD_%03d", i+1)
		name := s.productName(rng)
		category := sampleCategories[rng.Intn(len(sampleCategories))]
		brand := sampleBrands[rng.Intn(len(sampleBrands))]
		price := roundCents(20 + rng.Float64()*480)

		views := 20 + rng.Intn(180)
		cartRate := 0.1 + rng.Float64()*0.3
		conversionRate := 0.02 + rng.Float64()*0.13
		cartAdds := int(float64(views) * cartRate)
		purchases := int(float64(cartAdds) * conversionRate)
		if purchases == 0 && rng.Float64() < 0.5 {
			purchases = 1 // 让约一半的长尾产品也有购买记录
		}

		userPool := 5 + rng.Intn(45)
		emit := func(eventName string, count int, withRevenue bool) {
			for j := 0; j < count; j++ {
				day := start.AddDate(0, 0, rng.Intn(windowDays))
				row := &model.RawEventRow{
					ProductSKU:     sku,
					ProductName:    name,
					Category:       category,
					Brand:          brand,
					Price:          price,
					EventDate:      day.Format(config.DateLayout),
					UserID:         fmt.Sprintf("user_%s_%03d", sku, rng.Intn(userPool)),
					EventName:      eventName,
					Country:        sampleCountry(rng),
					DeviceCategory: sampleDevice(rng),
				}
				if withRevenue {
					revenue := roundCents(price * (0.9 + rng.Float64()*0.2))
					row.Revenue = &revenue
				}
				rows = append(rows, row)
			}
		}

		emit(string(model.EventViewItem), views, false)
		emit(string(model.EventAddToCart), cartAdds, false)
		emit(string(model.EventBeginCheckout), purchases+rng.Intn(3), false)
		emit(string(model.EventPurchase), purchases, true)
	}
	return rows
}

func (s *SampleService) productName(rng *rand.Rand) string {
	prefix := samplePrefixes[rng.Intn(len(samplePrefixes))]
	product := sampleProducts[rng.Intn(len(sampleProducts))]
	if rng.Float64() > 0.5 {
		suffix := sampleSuffixes[rng.Intn(len(sampleSuffixes))]
		return fmt.Sprintf("%s %s %s", prefix, product, suffix)
	}
	return fmt.Sprintf("%s %s", prefix, product)
}

func sampleCountry(rng *rand.Rand) string {
	countries := []string{"US", "GB", "DE", "JP", "CA", "FR"}
	return countries[rng.Intn(len(countries))]
}

func sampleDevice(rng *rand.Rand) string {
	devices := []string{"desktop", "mobile", "tablet"}
	return devices[rng.Intn(len(devices))]
}

// roundCents 金额保留2位小数（half away from zero，与评分的round2同语义）
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
