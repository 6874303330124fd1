package service

import (
	"sort"
	"time"

	"RetailSense/internal/config"
	"RetailSense/internal/model"

	"github.com/sirupsen/logrus"
)

// Normalizer 事件规范化：把不可信的原始行清洗为类型化Event序列。
// 过滤属于数据质量闸门而非错误：缺SKU、价格<=0、日期非法或超窗的行
// 一律静默丢弃并计数，流水线带着剩余有效事件继续（哪怕一条不剩）
type Normalizer struct {
	logger *logrus.Logger
}

func NewNormalizer(logger *logrus.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// NormalizeResult 规范化结果
type NormalizeResult struct {
	Events  []*model.Event // 有效事件，按（日期，入库顺序）稳定排序
	Dropped int64          // 被数据质量闸门排除的行数
}

// Normalize 清洗原始行。窗口须已通过config校验
func (n *Normalizer) Normalize(rows []*model.RawEventRow, window config.DateWindow) *NormalizeResult {
	start, end := window.Bounds()

	result := &NormalizeResult{Events: make([]*model.Event, 0, len(rows))}
	for _, row := range rows {
		event, ok := n.normalizeRow(row, start, end)
		if !ok {
			result.Dropped++
			continue
		}
		result.Events = append(result.Events, event)
	}

	// 稳定排序保证代表值选取与趋势样本顺序跨运行一致
	sort.SliceStable(result.Events, func(i, j int) bool {
		a, b := result.Events[i], result.Events[j]
		if !a.EventDate.Equal(b.EventDate) {
			return a.EventDate.Before(b.EventDate)
		}
		return a.Seq < b.Seq
	})

	n.logger.WithFields(logrus.Fields{
		"valid":   len(result.Events),
		"dropped": result.Dropped,
	}).Info("事件规范化完成")
	return result
}

// normalizeRow 单行清洗，不满足质量要求时返回false
func (n *Normalizer) normalizeRow(row *model.RawEventRow, start, end time.Time) (*model.Event, bool) {
	if row.ProductSKU == "" {
		return nil, false
	}
	if row.Price <= 0 {
		return nil, false
	}
	name := model.EventName(row.EventName)
	if !name.IsValid() {
		return nil, false
	}
	date, err := time.Parse(config.DateLayout, row.EventDate)
	if err != nil {
		return nil, false
	}
	if date.Before(start) || date.After(end) {
		return nil, false
	}

	// revenue只归属purchase事件；其他事件上的杂散revenue在此清零
	var revenue float64
	if name == model.EventPurchase && row.Revenue != nil {
		revenue = *row.Revenue
	}

	return &model.Event{
		ProductSKU:     row.ProductSKU,
		ProductName:    row.ProductName,
		Category:       row.Category,
		Brand:          row.Brand,
		Price:          row.Price,
		EventName:      name,
		EventDate:      date,
		DayOrdinal:     model.DayOrdinalOf(date),
		UserID:         row.UserID,
		Revenue:        revenue,
		Country:        row.Country,
		DeviceCategory: row.DeviceCategory,
		Seq:            row.ID,
	}, true
}
