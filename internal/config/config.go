package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server        ServerConfig                  `mapstructure:"server"`        // 服务器配置
	Postgres      PostgresConfig                `mapstructure:"postgres"`      // PostgreSQL配置
	Pipeline      PipelineConfig                `mapstructure:"pipeline"`      // 聚合流水线配置
	Collaborators map[string]CollaboratorConfig `mapstructure:"collaborators"` // 外部预测服务独立配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// PostgresConfig PostgreSQL数据库配置
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// PipelineConfig 聚合流水线配置
type PipelineConfig struct {
	Window          DateWindow   `mapstructure:"window"`            // 默认事件日期窗口
	MinActivity     int          `mapstructure:"min_activity"`      // 产品最低事件数门槛
	TrendThreshold  float64      `mapstructure:"trend_threshold"`   // 趋势分类阈值（±）
	EarlyWindowDays int          `mapstructure:"early_window_days"` // 分类特征的早期窗口天数
	Partitions      int          `mapstructure:"partitions"`        // 按SKU并行计算的分区数
	ScoreWeights    ScoreWeights `mapstructure:"score_weights"`     // 综合评分权重
}

// ScoreWeights 综合评分各项权重（来源脚本中硬编码为40/30/20/10，此处做成可配置）
type ScoreWeights struct {
	Conversion float64 `mapstructure:"conversion"` // 转化率项权重
	Revenue    float64 `mapstructure:"revenue"`    // 单次浏览收入项权重
	Reach      float64 `mapstructure:"reach"`      // 独立用户触达项权重
	Trend      float64 `mapstructure:"trend"`      // 上升趋势加分
}

// DateWindow 事件日期窗口（格式YYYYMMDD，闭区间）
type DateWindow struct {
	Start string `mapstructure:"start"` // 起始日期
	End   string `mapstructure:"end"`   // 截止日期
}

// CollaboratorConfig 单个外部预测服务的独立配置
type CollaboratorConfig struct {
	BaseURL    string `mapstructure:"base_url"`    // API基础地址
	Timeout    int    `mapstructure:"timeout"`     // 单次请求超时（秒）
	RetryCount int    `mapstructure:"retry_count"` // 重试次数
	AuthToken  string `mapstructure:"auth_token"`  // 认证Token
	Proxy      string `mapstructure:"proxy"`       // 代理地址
	Horizon    int    `mapstructure:"horizon"`     // 预测天数（forecast专属）
	BatchSize  int    `mapstructure:"batch_size"`  // 单批请求的键数量
	Parallel   int    `mapstructure:"parallel"`    // 并发批次上限
}

// DateLayout 原始事件日期格式
const DateLayout = "20060102"

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)

	// 4. 填充默认值并校验（窗口非法属于致命配置错误，直接拒绝启动）
	ApplyDefaults(&cfg)
	if err := cfg.Pipeline.Window.Validate(); err != nil {
		return nil, fmt.Errorf("配置的日期窗口非法: %w", err)
	}
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	for name, c := range cfg.Collaborators {
		if v := os.Getenv(collaboratorTokenEnv(name)); v != "" {
			c.AuthToken = v
			cfg.Collaborators[name] = c
		}
	}
}

// collaboratorTokenEnv 生成服务Token对应的环境变量名，如 FORECAST_AUTH_TOKEN
func collaboratorTokenEnv(name string) string {
	return strings.ToUpper(name) + "_AUTH_TOKEN"
}

// ApplyDefaults 未配置项的兜底默认值
func ApplyDefaults(cfg *Config) {
	if cfg.Pipeline.MinActivity <= 0 {
		cfg.Pipeline.MinActivity = 5
	}
	if cfg.Pipeline.TrendThreshold <= 0 {
		cfg.Pipeline.TrendThreshold = 0.1
	}
	if cfg.Pipeline.EarlyWindowDays <= 0 {
		cfg.Pipeline.EarlyWindowDays = 7
	}
	if cfg.Pipeline.Partitions <= 0 {
		cfg.Pipeline.Partitions = 8
	}
	w := &cfg.Pipeline.ScoreWeights
	if w.Conversion == 0 && w.Revenue == 0 && w.Reach == 0 && w.Trend == 0 {
		*w = ScoreWeights{Conversion: 40, Revenue: 30, Reach: 20, Trend: 10}
	}
}

// Validate 校验窗口格式与顺序
func (w DateWindow) Validate() error {
	start, err := time.Parse(DateLayout, w.Start)
	if err != nil {
		return fmt.Errorf("起始日期%q格式必须为YYYYMMDD: %w", w.Start, err)
	}
	end, err := time.Parse(DateLayout, w.End)
	if err != nil {
		return fmt.Errorf("截止日期%q格式必须为YYYYMMDD: %w", w.End, err)
	}
	if end.Before(start) {
		return fmt.Errorf("截止日期%s早于起始日期%s", w.End, w.Start)
	}
	return nil
}

// Bounds 返回窗口解析后的起止时间（调用前须先Validate）
func (w DateWindow) Bounds() (time.Time, time.Time) {
	start, _ := time.Parse(DateLayout, w.Start)
	end, _ := time.Parse(DateLayout, w.End)
	return start, end
}
