package interfaces

import (
	"context"

	"RetailSense/internal/model"
)

// Collaborator 所有外部预测服务适配器必须实现的基础接口
// 具体能力（预测/分群/分类）通过下方窄接口按需断言获取
type Collaborator interface {
	GetName() string // 服务名称（forecast/segment/classify）
}

// RevenueForecaster 收入预测服务契约：
// 入参为按日期升序的（日期，当日总收入）序列和预测天数，
// 返回恰好horizon个按日期升序的预测点
type RevenueForecaster interface {
	Collaborator
	Forecast(ctx context.Context, series []model.DailyRevenue, horizon int) ([]model.ForecastPoint, error)
}

// CustomerSegmenter 客户分群服务契约：
// 入参为客户特征向量序列，返回按user_id键控的簇ID
type CustomerSegmenter interface {
	Collaborator
	Segment(ctx context.Context, customers []model.CustomerFeatures) (map[string]int64, error)
}

// ProductClassifier 产品分类服务契约：
// 入参为早期窗口产品特征向量序列，返回按product_sku键控的（标签，概率）
type ProductClassifier interface {
	Collaborator
	Classify(ctx context.Context, products []model.ProductFeatures) (map[string]model.ClassResult, error)
}
