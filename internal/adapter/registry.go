package adapter

import (
	"RetailSense/internal/adapter/classify"
	"RetailSense/internal/adapter/forecast"
	"RetailSense/internal/adapter/segment"
	"RetailSense/internal/config"
	"RetailSense/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// CollaboratorRegistry 外部预测服务注册表：
// 按配置初始化各服务适配器实例，未配置的服务缺省为nil（流水线自动跳过）
type CollaboratorRegistry struct {
	cfg    *config.Config
	logger *logrus.Logger
	// 存储服务名→适配器实例的映射
	adapters map[string]interfaces.Collaborator
}

// factoryRegistry 服务名→工厂函数（新增外部服务仅需添加此处）
var factoryRegistry = map[string]interfaces.Factory{
	"forecast": forecast.NewAdapter,
	"segment":  segment.NewAdapter,
	"classify": classify.NewAdapter,
}

// NewCollaboratorRegistry 从配置初始化所有已知服务的适配器实例
func NewCollaboratorRegistry(cfg *config.Config, logger *logrus.Logger) *CollaboratorRegistry {
	r := &CollaboratorRegistry{
		cfg:      cfg,
		logger:   logger,
		adapters: make(map[string]interfaces.Collaborator),
	}

	for name, collabCfg := range cfg.Collaborators {
		factory, ok := factoryRegistry[name]
		if !ok {
			logger.WithField("collaborator", name).Error("未找到对应的工厂函数，忽略该配置项")
			continue
		}
		if collabCfg.BaseURL == "" {
			logger.WithField("collaborator", name).Warn("未配置base_url，该服务不启用")
			continue
		}
		cfgCopy := collabCfg
		ins := factory(&cfgCopy, logger)
		if ins == nil {
			logger.WithField("collaborator", name).Error("工厂函数返回nil适配器实例")
			continue
		}
		if ins.GetName() != name {
			logger.WithFields(logrus.Fields{
				"config_name":  name,
				"adapter_name": ins.GetName(),
			}).Error("适配器名称与配置不匹配")
			continue
		}
		r.adapters[name] = ins
		logger.WithField("collaborator", name).Info("外部服务适配器初始化成功")
	}

	logger.WithField("count", len(r.adapters)).Info("外部服务适配器初始化完成")
	return r
}

// Forecaster 获取收入预测服务实例（未配置时返回nil）
func (r *CollaboratorRegistry) Forecaster() interfaces.RevenueForecaster {
	if ins, ok := r.adapters["forecast"]; ok {
		if f, ok := ins.(interfaces.RevenueForecaster); ok {
			return f
		}
	}
	return nil
}

// Segmenter 获取客户分群服务实例（未配置时返回nil）
func (r *CollaboratorRegistry) Segmenter() interfaces.CustomerSegmenter {
	if ins, ok := r.adapters["segment"]; ok {
		if s, ok := ins.(interfaces.CustomerSegmenter); ok {
			return s
		}
	}
	return nil
}

// Classifier 获取产品分类服务实例（未配置时返回nil）
func (r *CollaboratorRegistry) Classifier() interfaces.ProductClassifier {
	if ins, ok := r.adapters["classify"]; ok {
		if c, ok := ins.(interfaces.ProductClassifier); ok {
			return c
		}
	}
	return nil
}
