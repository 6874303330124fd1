package model

// DailyRevenue 预测服务请求中的单日收入样本
type DailyRevenue struct {
	Date    string  `json:"date"` // YYYYMMDD
	Revenue float64 `json:"revenue"`
}

// ForecastPoint 预测服务返回的单个预测点
type ForecastPoint struct {
	Date  string  `json:"date"` // YYYYMMDD
	Value float64 `json:"value"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// CustomerFeatures 分群服务请求中的单客户特征向量
type CustomerFeatures struct {
	UserID           string  `json:"user_id"`
	TotalPurchases   int64   `json:"total_purchases"`
	TotalRevenue     float64 `json:"total_revenue"`
	AvgOrderValue    float64 `json:"avg_order_value"`
	DaysActive       int64   `json:"days_active"`
	UniqueCategories int64   `json:"unique_categories"`
	DeviceDiversity  int64   `json:"device_diversity"`
	GeographicReach  int64   `json:"geographic_reach"`
}

// ProductFeatures 分类服务请求中的单产品早期窗口特征向量
// 取SKU首次活跃起若干天内的事件，不含完整历史
type ProductFeatures struct {
	ProductSKU     string  `json:"product_sku"`
	Views          int64   `json:"views"`
	Purchases      int64   `json:"purchases"`
	AvgPrice       float64 `json:"avg_price"`
	UniqueUsers    int64   `json:"unique_users"`
	Countries      int64   `json:"countries"`
	ConversionRate float64 `json:"conversion_rate"` // 早期窗口内purchase/view，分母为0时取0
}

// ClassResult 分类服务返回的单产品（标签，概率）
type ClassResult struct {
	ProductSKU  string  `json:"product_sku"`
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}
