package api

import (
	"net/http"
	"strconv"

	"RetailSense/internal/config"
	"RetailSense/internal/model"
	"RetailSense/internal/repository"
	"RetailSense/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// IngestHandler 原始事件入库接口
type IngestHandler struct {
	rawRepo       repository.RawEventRepository
	sampleService *service.SampleService
	cfg           *config.Config
	logger        *logrus.Logger
}

func NewIngestHandler(db *gorm.DB, logger *logrus.Logger, cfg *config.Config) *IngestHandler {
	return &IngestHandler{
		rawRepo:       repository.NewRawEventRepository(db),
		sampleService: service.NewSampleService(),
		cfg:           cfg,
		logger:        logger,
	}
}

// IngestEvents 批量接收原始事件行（不做质量过滤，过滤在流水线规范化阶段进行）
// POST /ingest
func (h *IngestHandler) IngestEvents(c *gin.Context) {
	var rows []*model.RawEventRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体必须是事件行JSON数组: " + err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "事件行数组为空"})
		return
	}

	if err := h.rawRepo.SaveRows(c.Request.Context(), rows); err != nil {
		h.logger.WithError(err).Error("保存原始事件失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	total, _ := h.rawRepo.CountRows(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"ingested":   len(rows),
		"total_rows": total,
	})
}

// IngestSample 生成确定性样本数据并入库（同seed重复调用产出相同事件集）
// POST /ingest/sample?products=20&seed=42
func (h *IngestHandler) IngestSample(c *gin.Context) {
	nProducts, _ := strconv.Atoi(c.DefaultQuery("products", "20"))
	seed, _ := strconv.ParseInt(c.DefaultQuery("seed", "42"), 10, 64)

	window := h.cfg.Pipeline.Window
	if start := c.Query("start"); start != "" {
		window.Start = start
	}
	if end := c.Query("end"); end != "" {
		window.End = end
	}
	if err := window.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows := h.sampleService.Generate(nProducts, window, seed)
	if err := h.rawRepo.SaveRows(c.Request.Context(), rows); err != nil {
		h.logger.WithError(err).Error("保存样本事件失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ingested": len(rows),
		"products": nProducts,
		"seed":     seed,
	})
}
