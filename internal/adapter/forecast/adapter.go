package forecast

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

// Adapter 收入预测服务适配器（JSON over HTTP）
type Adapter struct {
	cfg        *config.CollaboratorConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewAdapter 创建预测服务适配器
func NewAdapter(cfg *config.CollaboratorConfig, logger *logrus.Logger) interfaces.Collaborator {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

func (a *Adapter) GetName() string {
	return "forecast"
}

// forecastRequest 请求体：按日期升序的序列 + 预测天数
type forecastRequest struct {
	Series  []model.DailyRevenue `json:"series"`
	Horizon int                  `json:"horizon"`
}

type forecastResponse struct {
	Points []model.ForecastPoint `json:"points"`
}

// Forecast 调用外部服务，返回恰好horizon个按日期升序的预测点
func (a *Adapter) Forecast(ctx context.Context, series []model.DailyRevenue, horizon int) ([]model.ForecastPoint, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("收入序列为空，无法预测")
	}
	if horizon <= 0 {
		horizon = a.cfg.Horizon
	}
	if horizon <= 0 {
		horizon = 30
	}

	var resp forecastResponse
	if err := httpclient.PostJSON(ctx, a.httpClient, a.cfg, "/forecast", &forecastRequest{
		Series:  series,
		Horizon: horizon,
	}, &resp); err != nil {
		return nil, fmt.Errorf("调用预测服务失败: %w", err)
	}

	// 契约校验：响应必须覆盖恰好horizon个未来周期
	if len(resp.Points) != horizon {
		return nil, fmt.Errorf("预测点数量不符: 期望%d, 实际%d", horizon, len(resp.Points))
	}
	for i := 1; i < len(resp.Points); i++ {
		if resp.Points[i].Date < resp.Points[i-1].Date {
			return nil, fmt.Errorf("预测点未按日期升序排列")
		}
	}
	return resp.Points, nil
}
