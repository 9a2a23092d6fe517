package api

import (
	"strings"
	"time"

	"github.com/agrolytics/dealer-insights/internal/api/handlers"
	"github.com/agrolytics/dealer-insights/internal/api/middleware"
	"github.com/agrolytics/dealer-insights/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Ingest    *service.IngestService
	Analytics *service.AnalyticsService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Ingest != nil {
			challanHandler := handlers.NewChallanHandler(services.Ingest)
			challanGroup := apiGroup.Group("/challans")
			{
				challanGroup.POST("/upload", challanHandler.Upload)
				challanGroup.POST("/import", challanHandler.ImportFromBlob)
				challanGroup.GET("/files", challanHandler.ListFiles)
			}
			apiGroup.GET("/storage/objects", challanHandler.ListBlobObjects)
			apiGroup.POST("/storage/import-all", challanHandler.ImportAllFromBlob)
		}

		if services.Analytics != nil {
			analyticsHandler := handlers.NewAnalyticsHandler(services.Analytics)
			analyticsGroup := apiGroup.Group("/analytics")
			{
				analyticsGroup.GET("/dealers", analyticsHandler.GetDealers)
				analyticsGroup.GET("/overview", analyticsHandler.GetOverview)
				analyticsGroup.GET("/categories", analyticsHandler.GetCategories)
				analyticsGroup.GET("/products", analyticsHandler.GetProducts)
				analyticsGroup.GET("/tiers", analyticsHandler.GetTiers)
				analyticsGroup.GET("/timeline", analyticsHandler.GetTimeline)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
