package model

import (
	"time"
)

// TrendStatus 趋势分类枚举
type TrendStatus string

const (
	TrendGrowing   TrendStatus = "Growing"
	TrendDeclining TrendStatus = "Declining"
	TrendStable    TrendStatus = "Stable"
)

// RevenuePoint 单次购买的（天序号，收入）样本，趋势分析的输入
type RevenuePoint struct {
	DayOrdinal int64
	Revenue    float64
}

// ProductAggregate 产品绩效聚合表（每次流水线运行整表重建，按run_id换代）
type ProductAggregate struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RunID      string `gorm:"column:run_id;type:varchar(64);index:idx_product_run;not null;comment:所属流水线运行ID" json:"-"`
	ProductSKU string `gorm:"column:product_sku;type:varchar(64);index:idx_product_run;not null;comment:产品SKU" json:"product_sku"`

	// 代表性描述字段（同SKU多事件取首见非空值，跨运行稳定）
	ProductName string  `gorm:"column:product_name;type:varchar(255)" json:"product_name"`
	Category    string  `gorm:"column:category;type:varchar(128);index" json:"category"`
	Brand       string  `gorm:"column:brand;type:varchar(128)" json:"brand"`
	AvgPrice    float64 `gorm:"column:avg_price;type:numeric(18,6)" json:"avg_price"`

	// 漏斗计数
	Views     int64 `gorm:"column:views;type:bigint;not null" json:"views"`
	CartAdds  int64 `gorm:"column:cart_adds;type:bigint;not null" json:"cart_adds"`
	Checkouts int64 `gorm:"column:checkouts;type:bigint;not null" json:"checkouts"`
	Purchases int64 `gorm:"column:purchases;type:bigint;not null" json:"purchases"`

	// 收入与基数
	TotalRevenue float64 `gorm:"column:total_revenue;type:numeric(18,6);not null;comment:仅purchase事件收入之和，无购买时为0" json:"total_revenue"`
	UniqueUsers  int64   `gorm:"column:unique_users;type:bigint;not null" json:"unique_users"`
	Countries    int64   `gorm:"column:countries;type:bigint;not null" json:"countries"`
	DeviceTypes  int64   `gorm:"column:device_types;type:bigint;not null" json:"device_types"`

	// 派生比率：分母为0时为null（绝不是0、NaN或Inf）
	ViewToPurchaseRate *float64 `gorm:"column:view_to_purchase_rate;type:numeric(12,8)" json:"view_to_purchase_rate"`
	ViewToCartRate     *float64 `gorm:"column:view_to_cart_rate;type:numeric(12,8)" json:"view_to_cart_rate"`
	CartToPurchaseRate *float64 `gorm:"column:cart_to_purchase_rate;type:numeric(12,8)" json:"cart_to_purchase_rate"`
	RevenuePerPurchase *float64 `gorm:"column:revenue_per_purchase;type:numeric(18,6)" json:"revenue_per_purchase"`
	RevenuePerView     *float64 `gorm:"column:revenue_per_view;type:numeric(18,6)" json:"revenue_per_view"`

	FirstActivityDate time.Time `gorm:"column:first_activity_date;type:date" json:"first_activity_date"`
	LastActivityDate  time.Time `gorm:"column:last_activity_date;type:date" json:"last_activity_date"`

	// 趋势：purchase事件（天序号，收入）的皮尔逊相关系数；样本不足时为null并归为Stable
	TrendCorrelation *float64    `gorm:"column:trend_correlation;type:numeric(12,8)" json:"trend_correlation"`
	TrendStatus      TrendStatus `gorm:"column:trend_status;type:varchar(16);not null;default:Stable" json:"trend_status"`

	// 综合绩效得分（加权和，保留2位小数，无上限截断）
	PerformanceScore float64 `gorm:"column:performance_score;type:numeric(12,2);not null" json:"performance_score"`

	// 外部分类服务的预测结果（缺失时保持null，不视为失败）
	PredictedLabel       *string  `gorm:"column:predicted_label;type:varchar(64)" json:"predicted_label"`
	PredictedProbability *float64 `gorm:"column:predicted_probability;type:numeric(12,8)" json:"predicted_probability"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now()" json:"-"`

	// 仅流水线内部传递：该SKU的购买样本（趋势分析输入），不落库
	PurchasePoints []RevenuePoint `gorm:"-" json:"-"`
}

func (ProductAggregate) TableName() string { return "product_performance" }

// CustomerAggregate 客户聚合表（仅含至少1次购买的用户，供外部分群服务使用）
type CustomerAggregate struct {
	ID               uint64   `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RunID            string   `gorm:"column:run_id;type:varchar(64);index:idx_customer_run;not null" json:"-"`
	UserID           string   `gorm:"column:user_id;type:varchar(64);index:idx_customer_run;not null" json:"user_id"`
	TotalPurchases   int64    `gorm:"column:total_purchases;type:bigint;not null" json:"total_purchases"`
	TotalRevenue     float64  `gorm:"column:total_revenue;type:numeric(18,6);not null" json:"total_revenue"`
	AvgOrderValue    *float64 `gorm:"column:avg_order_value;type:numeric(18,6);comment:无购买时为null" json:"avg_order_value"`
	DaysActive       int64    `gorm:"column:days_active;type:bigint;not null;comment:首末活跃日差+1" json:"days_active"`
	UniqueCategories int64    `gorm:"column:unique_categories;type:bigint;not null" json:"unique_categories"`
	DeviceDiversity  int64    `gorm:"column:device_diversity;type:bigint;not null" json:"device_diversity"`
	GeographicReach  int64    `gorm:"column:geographic_reach;type:bigint;not null" json:"geographic_reach"`

	// 外部分群服务返回的簇ID（缺失保持null）
	SegmentID *int64 `gorm:"column:segment_id;type:bigint" json:"segment_id"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now()" json:"-"`
}

func (CustomerAggregate) TableName() string { return "customer_aggregates" }
