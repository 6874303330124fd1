package model

import (
	"time"
)

// EventName 交互事件类型枚举
type EventName string

const (
	EventViewItem      EventName = "view_item"
	EventAddToCart     EventName = "add_to_cart"
	EventBeginCheckout EventName = "begin_checkout"
	EventPurchase      EventName = "purchase"
)

// IsValid 是否为已知事件类型
func (e EventName) IsValid() bool {
	switch e {
	case EventViewItem, EventAddToCart, EventBeginCheckout, EventPurchase:
		return true
	}
	return false
}

// RawEventRow 原始事件行（落库后作为流水线的输入，结构对齐GA4导出字段）
type RawEventRow struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"-"`
	ProductSKU     string    `gorm:"column:product_sku;type:varchar(64);index;comment:产品SKU" json:"product_sku"`
	ProductName    string    `gorm:"column:product_name;type:varchar(255);comment:产品名称" json:"product_name"`
	Category       string    `gorm:"column:category;type:varchar(128);comment:产品品类" json:"category"`
	Brand          string    `gorm:"column:brand;type:varchar(128);comment:品牌" json:"brand"`
	Price          float64   `gorm:"column:price;type:numeric(18,6);comment:单价USD" json:"price"`
	EventDate      string    `gorm:"column:event_date;type:varchar(8);index;comment:事件日期YYYYMMDD" json:"event_date"`
	UserID         string    `gorm:"column:user_id;type:varchar(64);comment:匿名用户ID（可为空）" json:"user_id"`
	EventName      string    `gorm:"column:event_name;type:varchar(32);comment:事件类型" json:"event_name"`
	Revenue        *float64  `gorm:"column:revenue;type:numeric(18,6);comment:购买收入（仅purchase有意义）" json:"revenue"`
	Country        string    `gorm:"column:country;type:varchar(64);comment:国家" json:"country"`
	DeviceCategory string    `gorm:"column:device_category;type:varchar(32);comment:设备类型" json:"device_category"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:入库时间" json:"-"`
}

func (RawEventRow) TableName() string { return "raw_events" }

// Event 规范化后的事件记录（仅存在于流水线内存中，不落库）
// 不变式：一条事件只属于一个产品和一个日期；revenue只在purchase事件上有值
type Event struct {
	ProductSKU     string
	ProductName    string
	Category       string
	Brand          string
	Price          float64
	EventName      EventName
	EventDate      time.Time
	DayOrdinal     int64 // 自Unix纪元起的天序号（对齐UNIX_DATE语义）
	UserID         string
	Revenue        float64 // 仅purchase事件非零
	Country        string
	DeviceCategory string
	Seq            uint64 // 入库顺序，用于代表值选取的稳定排序
}

// DayOrdinalOf 日期转天序号
func DayOrdinalOf(t time.Time) int64 {
	return t.Unix() / 86400
}
