package interfaces

import (
	"RetailSense/internal/config"

	"github.com/sirupsen/logrus"
)

// Factory 外部服务适配器工厂函数签名
// 入参：服务配置、日志实例
// 出参：实现Collaborator接口的适配器实例
type Factory func(cfg *config.CollaboratorConfig, logger *logrus.Logger) Collaborator
