package analytics

import (
	"time"

	"github.com/agrolytics/dealer-insights/internal/domain"
)

var tierOrder = []string{
	domain.TierPlatinum,
	domain.TierGold,
	domain.TierSilver,
	domain.TierBronze,
}

// Tiers groups the dealer ranking into the per-tier summary table: how many
// dealers, orders and sales each tier accounts for. Tiers with no dealers are
// omitted.
func Tiers(records []domain.DeliveryRecord) []domain.TierSummary {
	return TiersAt(records, time.Now())
}

func TiersAt(records []domain.DeliveryRecord, now time.Time) []domain.TierSummary {
	dealers := DealersAt(records, now)
	if len(dealers) == 0 {
		return []domain.TierSummary{}
	}

	byTier := make(map[string]*domain.TierSummary)
	for _, d := range dealers {
		sum, ok := byTier[d.Tier]
		if !ok {
			sum = &domain.TierSummary{Tier: d.Tier}
			byTier[d.Tier] = sum
		}
		sum.DealerCount++
		sum.TotalOrders += d.TotalOrders
		sum.TotalSales += d.TotalSales
	}

	out := make([]domain.TierSummary, 0, len(byTier))
	for _, tier := range tierOrder {
		if sum, ok := byTier[tier]; ok {
			out = append(out, *sum)
		}
	}
	return out
}
