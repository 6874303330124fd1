package api

import (
	"net/http"
	"strconv"

	"RetailSense/internal/model"
	"RetailSense/internal/repository"
	"RetailSense/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProductHandler 产品聚合查询接口（只读，始终查询active运行的一代）
type ProductHandler struct {
	aggRepo    repository.AggregateRepository
	similarity *service.SimilarityService
	insights   *service.InsightsService
	logger     *logrus.Logger
}

func NewProductHandler(db *gorm.DB, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		aggRepo:    repository.NewAggregateRepository(db),
		similarity: service.NewSimilarityService(),
		insights:   service.NewInsightsService(),
		logger:     logger,
	}
}

// activeRunID 取当前可见代的run_id，没有active运行时返回404
func (h *ProductHandler) activeRunID(c *gin.Context) (string, bool) {
	run, err := h.aggRepo.GetActiveRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "尚无成功的流水线运行"})
		return "", false
	}
	return run.RunID, true
}

// ListProducts 产品绩效列表
// GET /api/products?category=Electronics&brand=TechPro&trend=Growing&page=1&page_size=20
func (h *ProductHandler) ListProducts(c *gin.Context) {
	runID, ok := h.activeRunID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := repository.ProductFilter{
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		Trend:    model.TrendStatus(c.Query("trend")),
	}

	list, total, err := h.aggRepo.ListProducts(c.Request.Context(), runID, filter, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("查询产品列表失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"products":  list,
	})
}

// GetProduct 单个产品绩效详情
// GET /api/products/:sku
func (h *ProductHandler) GetProduct(c *gin.Context) {
	runID, ok := h.activeRunID(c)
	if !ok {
		return
	}

	sku := c.Param("sku")
	agg, err := h.aggRepo.GetProductBySKU(c.Request.Context(), runID, sku)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "产品不存在: " + sku})
		return
	}
	c.JSON(http.StatusOK, agg)
}

// GetSimilarProducts 相似产品检索
// GET /api/products/:sku/similar?top_k=5
func (h *ProductHandler) GetSimilarProducts(c *gin.Context) {
	runID, ok := h.activeRunID(c)
	if !ok {
		return
	}

	sku := c.Param("sku")
	topK, _ := strconv.Atoi(c.DefaultQuery("top_k", "5"))

	products, err := h.aggRepo.ListAllProducts(c.Request.Context(), runID)
	if err != nil {
		h.logger.WithError(err).Error("查询产品列表失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	similar, err := h.similarity.FindSimilar(products, sku, topK)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sku":     sku,
		"similar": similar,
	})
}

// ListCategories 品类维度统计
// GET /api/categories
func (h *ProductHandler) ListCategories(c *gin.Context) {
	runID, ok := h.activeRunID(c)
	if !ok {
		return
	}

	products, err := h.aggRepo.ListAllProducts(c.Request.Context(), runID)
	if err != nil {
		h.logger.WithError(err).Error("查询产品列表失败")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": h.insights.AnalyzeCategories(products),
	})
}
