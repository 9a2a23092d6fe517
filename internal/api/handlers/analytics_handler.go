package handlers

import (
	"net/http"
	"strings"

	"github.com/agrolytics/dealer-insights/internal/domain"
	"github.com/agrolytics/dealer-insights/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// GetDealers returns the ranked dealer metrics. Supports search, tier and
// sort (growthRate|loyaltyScore|totalOrders) query params.
func (h *AnalyticsHandler) GetDealers(c *gin.Context) {
	filter := domain.DealerFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Tier:   strings.TrimSpace(c.Query("tier")),
		Sort:   strings.TrimSpace(c.Query("sort")),
	}

	dealers, err := h.service.Dealers(c.Request.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("dealer analytics failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute dealer metrics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dealers": dealers, "count": len(dealers)})
}

func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	stats, err := h.service.Overview(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("overview analytics failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute overview"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AnalyticsHandler) GetCategories(c *gin.Context) {
	summaries, err := h.service.Categories(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("category analytics failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute category summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": summaries})
}

func (h *AnalyticsHandler) GetProducts(c *gin.Context) {
	summaries, err := h.service.Products(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("product analytics failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute product summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": summaries})
}

func (h *AnalyticsHandler) GetTiers(c *gin.Context) {
	summaries, err := h.service.Tiers(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("tier analytics failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute tier summary"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tiers": summaries})
}

// GetTimeline returns the product quantity-by-month pivot. Supports category
// and search query params.
func (h *AnalyticsHandler) GetTimeline(c *gin.Context) {
	filter := domain.TimelineFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
	}

	timeline, err := h.service.Timeline(c.Request.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("timeline analytics failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute timeline"})
		return
	}
	c.JSON(http.StatusOK, timeline)
}
