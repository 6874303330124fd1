package api

import (
	"net/http"
	"strconv"

	"RetailSense/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InsightHandler 洞察报告、收入预测与客户分群查询接口
type InsightHandler struct {
	aggRepo repository.AggregateRepository
	logger  *logrus.Logger
}

func NewInsightHandler(db *gorm.DB, logger *logrus.Logger) *InsightHandler {
	return &InsightHandler{
		aggRepo: repository.NewAggregateRepository(db),
		logger:  logger,
	}
}

// GetInsights 取active运行生成的洞察报告
// GET /api/insights
func (h *InsightHandler) GetInsights(c *gin.Context) {
	run, err := h.aggRepo.GetActiveRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "尚无成功的流水线运行"})
		return
	}
	if len(run.Insights) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "该运行未生成洞察报告"})
		return
	}
	c.Data(http.StatusOK, "application/json", []byte(run.Insights))
}

// GetForecast 取active运行存储的收入预测序列
// GET /api/forecast?days=30
func (h *InsightHandler) GetForecast(c *gin.Context) {
	run, err := h.aggRepo.GetActiveRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "尚无成功的流水线运行"})
		return
	}

	forecasts, err := h.aggRepo.ListForecasts(c.Request.Context(), run.RunID)
	if err != nil {
		h.logger.WithError(err).Error("查询收入预测失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if days, _ := strconv.Atoi(c.DefaultQuery("days", "0")); days > 0 && days < len(forecasts) {
		forecasts = forecasts[:days]
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":    run.RunID,
		"forecasts": forecasts,
	})
}

// ListCustomerSegments 客户聚合及分群结果
// GET /api/customers/segments
func (h *InsightHandler) ListCustomerSegments(c *gin.Context) {
	run, err := h.aggRepo.GetActiveRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "尚无成功的流水线运行"})
		return
	}

	customers, err := h.aggRepo.ListCustomers(c.Request.Context(), run.RunID)
	if err != nil {
		h.logger.WithError(err).Error("查询客户聚合失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":    run.RunID,
		"customers": customers,
	})
}
