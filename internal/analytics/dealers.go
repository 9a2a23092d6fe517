// Package analytics computes derived dashboard views over canonical delivery
// records. Everything here is a pure function of its input slice: no storage,
// no shared state, empty input yields empty output.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/agrolytics/dealer-insights/internal/domain"
)

// Loyalty score weights. Each term is capped so the sum stays in [0,100];
// every term is monotonic non-decreasing in its input.
const (
	loyaltyOrderWeight     = 2.0  // per order, capped at 30
	loyaltyOrderCap        = 30.0
	loyaltyDiversityWeight = 5.0 // per distinct category, capped at 20
	loyaltyDiversityCap    = 20.0
	loyaltyFrequencyWeight = 10.0 // per order-per-month, capped at 25
	loyaltyFrequencyCap    = 25.0
	loyaltyTenureDivisor   = 30.0 // one point per ~month of tenure, capped at 25
	loyaltyTenureCap       = 25.0
)

// Tier thresholds. Checked strictly in Platinum > Gold > Silver order, first
// match wins; Bronze is the floor. Raising either market share or loyalty
// never demotes a dealer.
const (
	platinumShare   = 10.0
	platinumLoyalty = 75.0
	goldShare       = 5.0
	goldLoyalty     = 60.0
	silverShare     = 2.0
	silverLoyalty   = 40.0
)

type dealerAccumulator struct {
	name       string
	totalSales float64
	challans   map[string]struct{}
	categories map[string]*domain.CategorySales
	months     map[string]*monthlyBucket
	firstOrder time.Time
}

type monthlyBucket struct {
	year     int
	monthNum int
	label    string
	sales    float64
	challans map[string]struct{}
}

// Dealers aggregates records into per-dealer metrics, sorted descending by
// total sales. Percentiles are computed over the full dealer set before any
// caller-side filtering.
func Dealers(records []domain.DeliveryRecord) []domain.DealerMetrics {
	return DealersAt(records, time.Now())
}

// DealersAt is Dealers with an explicit "now" for the tenure term of the
// loyalty score. Tests pin it.
func DealersAt(records []domain.DeliveryRecord, now time.Time) []domain.DealerMetrics {
	if len(records) == 0 {
		return []domain.DealerMetrics{}
	}

	var grandTotal float64
	groups := make(map[string]*dealerAccumulator)

	for _, rec := range records {
		grandTotal += rec.ItemTotal

		acc, ok := groups[rec.CustomerName]
		if !ok {
			acc = &dealerAccumulator{
				name:       rec.CustomerName,
				challans:   make(map[string]struct{}),
				categories: make(map[string]*domain.CategorySales),
				months:     make(map[string]*monthlyBucket),
				firstOrder: rec.ChallanDate,
			}
			groups[rec.CustomerName] = acc
		}

		acc.totalSales += rec.ItemTotal
		if rec.ChallanNumber != "" {
			acc.challans[rec.ChallanNumber] = struct{}{}
		}
		if rec.ChallanDate.Before(acc.firstOrder) {
			acc.firstOrder = rec.ChallanDate
		}

		cat, ok := acc.categories[rec.Category]
		if !ok {
			cat = &domain.CategorySales{}
			acc.categories[rec.Category] = cat
		}
		cat.Sales += rec.ItemTotal
		cat.Orders++

		key := monthKey(rec.Year, rec.MonthNum)
		bucket, ok := acc.months[key]
		if !ok {
			bucket = &monthlyBucket{
				year:     rec.Year,
				monthNum: rec.MonthNum,
				label:    rec.Month,
				challans: make(map[string]struct{}),
			}
			acc.months[key] = bucket
		}
		bucket.sales += rec.ItemTotal
		if rec.ChallanNumber != "" {
			bucket.challans[rec.ChallanNumber] = struct{}{}
		}
	}

	metrics := make([]domain.DealerMetrics, 0, len(groups))
	for _, acc := range groups {
		metrics = append(metrics, acc.finalize(grandTotal, now))
	}

	assignPercentiles(metrics)

	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].TotalSales != metrics[j].TotalSales {
			return metrics[i].TotalSales > metrics[j].TotalSales
		}
		return metrics[i].DealerName < metrics[j].DealerName
	})

	return metrics
}

func (acc *dealerAccumulator) finalize(grandTotal float64, now time.Time) domain.DealerMetrics {
	totalOrders := len(acc.challans)

	avgOrderValue := 0.0
	if totalOrders > 0 {
		avgOrderValue = acc.totalSales / float64(totalOrders)
	}

	marketShare := 0.0
	if grandTotal > 0 {
		marketShare = acc.totalSales / grandTotal * 100
	}

	breakdown := make(map[string]domain.CategorySales, len(acc.categories))
	for name, cat := range acc.categories {
		share := 0.0
		if acc.totalSales > 0 {
			share = cat.Sales / acc.totalSales * 100
		}
		breakdown[name] = domain.CategorySales{Sales: cat.Sales, Orders: cat.Orders, Share: share}
	}

	trend := acc.monthlyTrend()

	orderFrequency := 0.0
	if len(trend) > 0 {
		orderFrequency = float64(totalOrders) / float64(len(trend))
	}

	growthRate := rollingGrowth(trend)

	tenureDays := now.Sub(acc.firstOrder).Hours() / 24
	loyalty := loyaltyScore(totalOrders, len(acc.categories), orderFrequency, tenureDays)

	return domain.DealerMetrics{
		DealerName:        acc.name,
		TotalSales:        acc.totalSales,
		TotalOrders:       totalOrders,
		AvgOrderValue:     avgOrderValue,
		MarketShare:       marketShare,
		CategoryDiversity: len(acc.categories),
		OrderFrequency:    orderFrequency,
		GrowthRate:        growthRate,
		LoyaltyScore:      loyalty,
		Tier:              assignTier(marketShare, loyalty),
		CategoryBreakdown: breakdown,
		MonthlyTrend:      trend,
	}
}

// monthlyTrend returns the dealer's monthly buckets in chronological order.
func (acc *dealerAccumulator) monthlyTrend() []domain.MonthlySales {
	keys := make([]string, 0, len(acc.months))
	for key := range acc.months {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	trend := make([]domain.MonthlySales, 0, len(keys))
	for _, key := range keys {
		bucket := acc.months[key]
		trend = append(trend, domain.MonthlySales{
			Month:  bucket.label,
			Year:   bucket.year,
			Sales:  bucket.sales,
			Orders: len(bucket.challans),
		})
	}
	return trend
}

// rollingGrowth compares the last 3 months of the trend against the 3 before
// that. Fewer than 6 months of history gives a degenerate but defined result:
// an empty previous window sums to 0, which yields 0.
func rollingGrowth(trend []domain.MonthlySales) float64 {
	recentStart := len(trend) - 3
	if recentStart < 0 {
		recentStart = 0
	}
	prevStart := recentStart - 3
	if prevStart < 0 {
		prevStart = 0
	}

	var recentSum, prevSum float64
	for _, m := range trend[recentStart:] {
		recentSum += m.Sales
	}
	for _, m := range trend[prevStart:recentStart] {
		prevSum += m.Sales
	}

	if prevSum == 0 {
		return 0
	}
	return (recentSum - prevSum) / prevSum * 100
}

// loyaltyScore is a weighted linear combination with per-term caps, clipped
// to [0,100]. The exact weights are scoring policy; what matters is that the
// score is monotonic non-decreasing in each input and bounded.
func loyaltyScore(orders, diversity int, frequency, tenureDays float64) float64 {
	score := math.Min(float64(orders)*loyaltyOrderWeight, loyaltyOrderCap)
	score += math.Min(float64(diversity)*loyaltyDiversityWeight, loyaltyDiversityCap)
	score += math.Min(frequency*loyaltyFrequencyWeight, loyaltyFrequencyCap)
	if tenureDays > 0 {
		score += math.Min(tenureDays/loyaltyTenureDivisor, loyaltyTenureCap)
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func assignTier(marketShare, loyalty float64) string {
	switch {
	case marketShare >= platinumShare && loyalty >= platinumLoyalty:
		return domain.TierPlatinum
	case marketShare >= goldShare || loyalty >= goldLoyalty:
		return domain.TierGold
	case marketShare >= silverShare || loyalty >= silverLoyalty:
		return domain.TierSilver
	default:
		return domain.TierBronze
	}
}

// assignPercentiles ranks dealers by a composite performance score and writes
// percentile = round((N - rank + 1) / N * 100) into each entry.
func assignPercentiles(metrics []domain.DealerMetrics) {
	n := len(metrics)
	if n == 0 {
		return
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return compositeScore(metrics[order[a]]) > compositeScore(metrics[order[b]])
	})

	for rank, idx := range order {
		metrics[idx].Percentile = int(math.Round(float64(n-rank) / float64(n) * 100))
	}
}

func compositeScore(m domain.DealerMetrics) float64 {
	return m.MarketShare*0.4 + m.LoyaltyScore*0.3 + math.Max(0, m.GrowthRate+50)*0.3
}

// SortDealers re-sorts a ranking in place by the requested key. Unknown keys
// keep the default total-sales order.
func SortDealers(metrics []domain.DealerMetrics, key string) {
	switch strings.ToLower(key) {
	case "growthrate", "growth_rate":
		sort.SliceStable(metrics, func(i, j int) bool {
			return metrics[i].GrowthRate > metrics[j].GrowthRate
		})
	case "loyaltyscore", "loyalty_score":
		sort.SliceStable(metrics, func(i, j int) bool {
			return metrics[i].LoyaltyScore > metrics[j].LoyaltyScore
		})
	case "totalorders", "total_orders":
		sort.SliceStable(metrics, func(i, j int) bool {
			return metrics[i].TotalOrders > metrics[j].TotalOrders
		})
	}
}

// FilterDealers applies search/tier filters after percentile assignment, so
// ranks always reflect the full dealer set.
func FilterDealers(metrics []domain.DealerMetrics, filter domain.DealerFilter) []domain.DealerMetrics {
	out := make([]domain.DealerMetrics, 0, len(metrics))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, m := range metrics {
		if search != "" && !strings.Contains(strings.ToLower(m.DealerName), search) {
			continue
		}
		if filter.Tier != "" && !strings.EqualFold(m.Tier, filter.Tier) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func monthKey(year, monthNum int) string {
	return fmt.Sprintf("%04d-%02d", year, monthNum)
}
