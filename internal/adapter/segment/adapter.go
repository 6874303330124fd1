package segment

import (
	"context"
	"fmt"
	"net/http"

	"RetailSense/internal/config"
	"RetailSense/internal/interfaces"
	"RetailSense/internal/model"
	"RetailSense/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// Adapter 客户分群服务适配器（JSON over HTTP）
type Adapter struct {
	cfg        *config.CollaboratorConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewAdapter 创建分群服务适配器
func NewAdapter(cfg *config.CollaboratorConfig, logger *logrus.Logger) interfaces.Collaborator {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

func (a *Adapter) GetName() string {
	return "segment"
}

type segmentRequest struct {
	Customers []model.CustomerFeatures `json:"customers"`
}

type segmentResponse struct {
	Segments []struct {
		UserID    string `json:"user_id"`
		ClusterID int64  `json:"cluster_id"`
	} `json:"segments"`
}

// Segment 调用外部服务，返回按user_id键控的簇ID；响应中缺失的客户不报错（由调用方保持null）
func (a *Adapter) Segment(ctx context.Context, customers []model.CustomerFeatures) (map[string]int64, error) {
	if len(customers) == 0 {
		return map[string]int64{}, nil
	}

	var resp segmentResponse
	if err := httpclient.PostJSON(ctx, a.httpClient, a.cfg, "/segment", &segmentRequest{Customers: customers}, &resp); err != nil {
		return nil, fmt.Errorf("调用分群服务失败: %w", err)
	}

	result := make(map[string]int64, len(resp.Segments))
	for _, s := range resp.Segments {
		if s.UserID == "" {
			continue
		}
		result[s.UserID] = s.ClusterID
	}
	return result, nil
}
