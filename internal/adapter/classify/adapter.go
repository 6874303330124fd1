package classify

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

// Adapter 产品分类服务适配器（JSON over HTTP）
type Adapter struct {
	cfg        *config.CollaboratorConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewAdapter 创建分类服务适配器
func NewAdapter(cfg *config.CollaboratorConfig, logger *logrus.Logger) interfaces.Collaborator {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

func (a *Adapter) GetName() string {
	return "classify"
}

type classifyRequest struct {
	Products []model.ProductFeatures `json:"products"`
}

type classifyResponse struct {
	Results []model.ClassResult `json:"results"`
}

// Classify 调用外部服务，返回按product_sku键控的（标签，概率）；
// 响应中缺失的SKU不报错（由调用方保持null）
func (a *Adapter) Classify(ctx context.Context, products []model.ProductFeatures) (map[string]model.ClassResult, error) {
	if len(products) == 0 {
		return map[string]model.ClassResult{}, nil
	}

	var resp classifyResponse
	if err := httpclient.PostJSON(ctx, a.httpClient, a.cfg, "/classify", &classifyRequest{Products: products}, &resp); err != nil {
		return nil, fmt.Errorf("调用分类服务失败: %w", err)
	}

	result := make(map[string]model.ClassResult, len(resp.Results))
	for _, r := range resp.Results {
		if r.ProductSKU == "" {
			continue
		}
		result[r.ProductSKU] = r
	}
	return result, nil
}
