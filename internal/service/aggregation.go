package service

import (
	"sort"
	"time"

	"RetailSense/internal/model"

	"github.com/sirupsen/logrus"
)

// AggregationService 产品/客户聚合：单遍扫描事件建立SKU→累加器映射，
// 第二遍对每个累加器派生比率与基数指标。每个SKU的状态彼此隔离，
// 派生阶段可安全按SKU分区并行
type AggregationService struct {
	minActivity int
	logger      *logrus.Logger
}

func NewAggregationService(minActivity int, logger *logrus.Logger) *AggregationService {
	if minActivity <= 0 {
		minActivity = 5
	}
	return &AggregationService{minActivity: minActivity, logger: logger}
}

// productAccum 单SKU累加器（单遍扫描期间的可变状态）
type productAccum struct {
	sku        string
	repName    string
	repCat     string
	repBrand   string
	priceSum   float64
	priceCount int64

	views     int64
	cartAdds  int64
	checkouts int64
	purchases int64
	revenue   float64

	users   map[string]struct{}
	country map[string]struct{}
	device  map[string]struct{}

	firstDate int64 // 天序号
	lastDate  int64

	purchasePoints []model.RevenuePoint
}

// BuildProductAggregates 事件序列→产品聚合（未含趋势与评分，由后续阶段补齐）。
// 事件总数（任意类型）低于门槛的SKU整体排除，不补零行。
// 输出按SKU字典序排列，保证跨运行字节级一致
func (s *AggregationService) BuildProductAggregates(events []*model.Event) []*model.ProductAggregate {
	accums := make(map[string]*productAccum)

	for _, e := range events {
		acc, ok := accums[e.ProductSKU]
		if !ok {
			acc = &productAccum{
				sku:       e.ProductSKU,
				users:     make(map[string]struct{}),
				country:   make(map[string]struct{}),
				device:    make(map[string]struct{}),
				firstDate: e.DayOrdinal,
				lastDate:  e.DayOrdinal,
			}
			accums[e.ProductSKU] = acc
		}
		acc.fold(e)
	}

	skus := make([]string, 0, len(accums))
	for sku, acc := range accums {
		if acc.total() < int64(s.minActivity) {
			continue // 活动量不足，不产出聚合行
		}
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	aggregates := make([]*model.ProductAggregate, 0, len(skus))
	for _, sku := range skus {
		aggregates = append(aggregates, accums[sku].derive())
	}

	s.logger.WithFields(logrus.Fields{
		"skus_seen": len(accums),
		"emitted":   len(aggregates),
	}).Info("产品聚合完成")
	return aggregates
}

// fold 累加单条事件
func (a *productAccum) fold(e *model.Event) {
	// 代表性描述字段：取首见非空值（事件已稳定排序，跨运行一致）
	if a.repName == "" && e.ProductName != "" {
		a.repName = e.ProductName
	}
	if a.repCat == "" && e.Category != "" {
		a.repCat = e.Category
	}
	if a.repBrand == "" && e.Brand != "" {
		a.repBrand = e.Brand
	}
	a.priceSum += e.Price
	a.priceCount++

	switch e.EventName {
	case model.EventViewItem:
		a.views++
	case model.EventAddToCart:
		a.cartAdds++
	case model.EventBeginCheckout:
		a.checkouts++
	case model.EventPurchase:
		a.purchases++
		a.revenue += e.Revenue
		a.purchasePoints = append(a.purchasePoints, model.RevenuePoint{
			DayOrdinal: e.DayOrdinal,
			Revenue:    e.Revenue,
		})
	}

	// 去重计数忽略空维度值
	if e.UserID != "" {
		a.users[e.UserID] = struct{}{}
	}
	if e.Country != "" {
		a.country[e.Country] = struct{}{}
	}
	if e.DeviceCategory != "" {
		a.device[e.DeviceCategory] = struct{}{}
	}

	if e.DayOrdinal < a.firstDate {
		a.firstDate = e.DayOrdinal
	}
	if e.DayOrdinal > a.lastDate {
		a.lastDate = e.DayOrdinal
	}
}

func (a *productAccum) total() int64 {
	return a.views + a.cartAdds + a.checkouts + a.purchases
}

// derive 累加器→聚合行（比率全部空值安全：分母为0得null）
func (a *productAccum) derive() *model.ProductAggregate {
	agg := &model.ProductAggregate{
		ProductSKU:        a.sku,
		ProductName:       a.repName,
		Category:          a.repCat,
		Brand:             a.repBrand,
		Views:             a.views,
		CartAdds:          a.cartAdds,
		Checkouts:         a.checkouts,
		Purchases:         a.purchases,
		TotalRevenue:      a.revenue,
		UniqueUsers:       int64(len(a.users)),
		Countries:         int64(len(a.country)),
		DeviceTypes:       int64(len(a.device)),
		FirstActivityDate: dayOrdinalToDate(a.firstDate),
		LastActivityDate:  dayOrdinalToDate(a.lastDate),
		TrendStatus:       model.TrendStable,
		PurchasePoints:    a.purchasePoints,
	}
	if a.priceCount > 0 {
		agg.AvgPrice = a.priceSum / float64(a.priceCount)
	}
	agg.ViewToPurchaseRate = safeDivide(float64(a.purchases), float64(a.views))
	agg.ViewToCartRate = safeDivide(float64(a.cartAdds), float64(a.views))
	agg.CartToPurchaseRate = safeDivide(float64(a.purchases), float64(a.cartAdds))
	agg.RevenuePerPurchase = safeDivide(a.revenue, float64(a.purchases))
	agg.RevenuePerView = safeDivide(a.revenue, float64(a.views))
	return agg
}

// customerAccum 单用户累加器
type customerAccum struct {
	userID    string
	purchases int64
	revenue   float64
	category  map[string]struct{}
	device    map[string]struct{}
	country   map[string]struct{}
	firstDate int64
	lastDate  int64
}

// BuildCustomerAggregates 事件序列→客户聚合（仅含至少1次购买的用户），
// 供外部分群服务使用，内部不评分。输出按user_id字典序排列
func (s *AggregationService) BuildCustomerAggregates(events []*model.Event) []*model.CustomerAggregate {
	accums := make(map[string]*customerAccum)

	for _, e := range events {
		if e.UserID == "" {
			continue
		}
		acc, ok := accums[e.UserID]
		if !ok {
			acc = &customerAccum{
				userID:    e.UserID,
				category:  make(map[string]struct{}),
				device:    make(map[string]struct{}),
				country:   make(map[string]struct{}),
				firstDate: e.DayOrdinal,
				lastDate:  e.DayOrdinal,
			}
			accums[e.UserID] = acc
		}
		if e.EventName == model.EventPurchase {
			acc.purchases++
			acc.revenue += e.Revenue
		}
		if e.Category != "" {
			acc.category[e.Category] = struct{}{}
		}
		if e.DeviceCategory != "" {
			acc.device[e.DeviceCategory] = struct{}{}
		}
		if e.Country != "" {
			acc.country[e.Country] = struct{}{}
		}
		if e.DayOrdinal < acc.firstDate {
			acc.firstDate = e.DayOrdinal
		}
		if e.DayOrdinal > acc.lastDate {
			acc.lastDate = e.DayOrdinal
		}
	}

	userIDs := make([]string, 0, len(accums))
	for id, acc := range accums {
		if acc.purchases == 0 {
			continue
		}
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)

	customers := make([]*model.CustomerAggregate, 0, len(userIDs))
	for _, id := range userIDs {
		acc := accums[id]
		customers = append(customers, &model.CustomerAggregate{
			UserID:           acc.userID,
			TotalPurchases:   acc.purchases,
			TotalRevenue:     acc.revenue,
			AvgOrderValue:    safeDivide(acc.revenue, float64(acc.purchases)),
			DaysActive:       acc.lastDate - acc.firstDate + 1,
			UniqueCategories: int64(len(acc.category)),
			DeviceDiversity:  int64(len(acc.device)),
			GeographicReach:  int64(len(acc.country)),
		})
	}

	s.logger.WithField("customers", len(customers)).Info("客户聚合完成")
	return customers
}

// safeDivide 空值安全除法：分母为0返回nil（绝不产生NaN/Inf，对齐SAFE_DIVIDE语义）
func safeDivide(numerator, denominator float64) *float64 {
	if denominator == 0 {
		return nil
	}
	v := numerator / denominator
	return &v
}

// dayOrdinalToDate 天序号还原为UTC日期
func dayOrdinalToDate(ordinal int64) time.Time {
	return time.Unix(ordinal*86400, 0).UTC()
}
