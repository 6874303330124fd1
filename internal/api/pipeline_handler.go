package api

import (
	"net/http"
	"strconv"

	"RetailSense/internal/config"
	"RetailSense/internal/repository"
	"RetailSense/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PipelineHandler 流水线触发与运行状态查询接口
type PipelineHandler struct {
	pipelineService *service.PipelineService
	aggRepo         repository.AggregateRepository
	cfg             *config.Config
	logger          *logrus.Logger
}

func NewPipelineHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config, prediction *service.PredictionService) *PipelineHandler {
	rawRepo := repository.NewRawEventRepository(db)
	aggRepo := repository.NewAggregateRepository(db)
	return &PipelineHandler{
		pipelineService: service.NewPipelineService(rawRepo, aggRepo, prediction, cfg, logger),
		aggRepo:         aggRepo,
		cfg:             cfg,
		logger:          logger,
	}
}

// RunPipeline 触发一次完整流水线运行
// POST /pipeline/run?start=20210101&end=20210331&predict=true
func (h *PipelineHandler) RunPipeline(c *gin.Context) {
	window := h.cfg.Pipeline.Window
	if start := c.Query("start"); start != "" {
		window.Start = start
	}
	if end := c.Query("end"); end != "" {
		window.End = end
	}
	// 窗口非法在任何聚合工作开始前拒绝
	if err := window.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	withPredictions, _ := strconv.ParseBool(c.DefaultQuery("predict", "true"))

	run, err := h.pipelineService.Run(c.Request.Context(), window, withPredictions)
	if err != nil {
		h.logger.WithError(err).Error("流水线运行失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetLatestRun 查询当前active运行记录
// GET /api/runs/latest
func (h *PipelineHandler) GetLatestRun(c *gin.Context) {
	run, err := h.aggRepo.GetActiveRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "尚无成功的流水线运行"})
		return
	}
	c.JSON(http.StatusOK, run)
}
