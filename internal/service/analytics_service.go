package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agrolytics/dealer-insights/internal/analytics"
	"github.com/agrolytics/dealer-insights/internal/cache"
	"github.com/agrolytics/dealer-insights/internal/domain"
	"github.com/agrolytics/dealer-insights/internal/repository"
	"github.com/rs/zerolog/log"
)

// AnalyticsService serves the dashboard aggregations. Each call loads the
// current record set and recomputes the requested view; Redis fronts the
// marshaled responses when caching is enabled. Cache failures degrade to a
// recompute, never to an error.
type AnalyticsService struct {
	repo  repository.Database
	cache cache.AnalyticsCache
}

func NewAnalyticsService(repo repository.Database, c cache.AnalyticsCache) *AnalyticsService {
	if c == nil {
		c = cache.NewNoopAnalyticsCache()
	}
	return &AnalyticsService{repo: repo, cache: c}
}

// Dealers returns the ranked dealer metrics. Percentiles and ranks are
// computed over the full dealer set before search/tier filtering.
func (s *AnalyticsService) Dealers(ctx context.Context, filter domain.DealerFilter) ([]domain.DealerMetrics, error) {
	parts := []string{"search=" + filter.Search, "tier=" + filter.Tier, "sort=" + filter.Sort}

	var cached []domain.DealerMetrics
	if ok := s.fromCache(ctx, &cached, "dealers", parts...); ok {
		return cached, nil
	}

	records, err := s.repo.GetRecords(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	metrics := analytics.Dealers(records)
	metrics = analytics.FilterDealers(metrics, filter)
	analytics.SortDealers(metrics, filter.Sort)

	s.toCache(ctx, metrics, "dealers", parts...)
	return metrics, nil
}

func (s *AnalyticsService) Overview(ctx context.Context) (*domain.OverallStats, error) {
	var cached domain.OverallStats
	if ok := s.fromCache(ctx, &cached, "overview"); ok {
		return &cached, nil
	}

	records, err := s.repo.GetRecords(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	stats := analytics.Overall(records)
	s.toCache(ctx, stats, "overview")
	return &stats, nil
}

func (s *AnalyticsService) Categories(ctx context.Context) ([]domain.CategorySummary, error) {
	var cached []domain.CategorySummary
	if ok := s.fromCache(ctx, &cached, "categories"); ok {
		return cached, nil
	}

	records, err := s.repo.GetRecords(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	summaries := analytics.Categories(records)
	s.toCache(ctx, summaries, "categories")
	return summaries, nil
}

func (s *AnalyticsService) Products(ctx context.Context) ([]domain.ProductSummary, error) {
	var cached []domain.ProductSummary
	if ok := s.fromCache(ctx, &cached, "products"); ok {
		return cached, nil
	}

	records, err := s.repo.GetRecords(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	summaries := analytics.Products(records)
	s.toCache(ctx, summaries, "products")
	return summaries, nil
}

func (s *AnalyticsService) Tiers(ctx context.Context) ([]domain.TierSummary, error) {
	var cached []domain.TierSummary
	if ok := s.fromCache(ctx, &cached, "tiers"); ok {
		return cached, nil
	}

	records, err := s.repo.GetRecords(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	summaries := analytics.Tiers(records)
	s.toCache(ctx, summaries, "tiers")
	return summaries, nil
}

func (s *AnalyticsService) Timeline(ctx context.Context, filter domain.TimelineFilter) (*domain.ProductTimeline, error) {
	parts := []string{"category=" + filter.Category, "search=" + filter.Search}

	var cached domain.ProductTimeline
	if ok := s.fromCache(ctx, &cached, "timeline", parts...); ok {
		return &cached, nil
	}

	records, err := s.repo.GetRecords(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	timeline := analytics.Timeline(records, filter)
	s.toCache(ctx, timeline, "timeline", parts...)
	return &timeline, nil
}

func (s *AnalyticsService) fromCache(ctx context.Context, dest interface{}, view string, parts ...string) bool {
	payload, hit, err := s.cache.Get(ctx, view, parts...)
	if err != nil {
		log.Warn().Err(err).Str("view", view).Msg("cache read failed")
		return false
	}
	if !hit {
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		log.Warn().Err(err).Str("view", view).Msg("cache decode failed")
		return false
	}
	return true
}

func (s *AnalyticsService) toCache(ctx context.Context, value interface{}, view string, parts ...string) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, payload, view, parts...); err != nil {
		log.Warn().Err(err).Str("view", view).Msg("cache write failed")
	}
}
