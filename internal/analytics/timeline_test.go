package analytics

import (
	"testing"

	"github.com/agrolytics/dealer-insights/internal/domain"
)

func TestTiersGrouping(t *testing.T) {
	records := []domain.DeliveryRecord{
		rec("Dominant", "C1", "Bio-Fertilizers", 9000, 2024, 1),
		rec("Minor", "C2", "Bio-Fertilizers", 100, 2024, 1),
	}

	tiers := TiersAt(records, testNow)
	if len(tiers) == 0 {
		t.Fatal("expected at least one tier")
	}

	var dealerCount, orderCount int
	var sales float64
	for _, tier := range tiers {
		dealerCount += tier.DealerCount
		orderCount += tier.TotalOrders
		sales += tier.TotalSales
	}
	if dealerCount != 2 {
		t.Errorf("dealer count: got %d, want 2", dealerCount)
	}
	if orderCount != 2 {
		t.Errorf("order count: got %d, want 2", orderCount)
	}
	if sales != 9100 {
		t.Errorf("sales: got %v, want 9100", sales)
	}

	// Tiers come back in Platinum > Gold > Silver > Bronze order.
	rank := func(tier string) int { return tierRank(tier) }
	for i := 1; i < len(tiers); i++ {
		if rank(tiers[i].Tier) > rank(tiers[i-1].Tier) {
			t.Errorf("tier order: %q after %q", tiers[i].Tier, tiers[i-1].Tier)
		}
	}
}

func TestTiersEmpty(t *testing.T) {
	if got := TiersAt(nil, testNow); got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty slice", got)
	}
}

func TestTimelinePivot(t *testing.T) {
	records := []domain.DeliveryRecord{
		itemRec("A", "C1", "npk gold", "Bio-Fertilizers", 100, 10, 2024, 1),
		itemRec("A", "C2", "npk gold", "Bio-Fertilizers", 100, 5, 2024, 2),
		itemRec("B", "C3", "zinc plus", "Micronutrients", 50, 3, 2024, 1),
	}

	tl := Timeline(records, domain.TimelineFilter{})
	wantMonths := []string{"Jan 2024", "Feb 2024"}
	if len(tl.Months) != len(wantMonths) {
		t.Fatalf("months: got %v, want %v", tl.Months, wantMonths)
	}
	for i, m := range tl.Months {
		if m != wantMonths[i] {
			t.Errorf("months[%d]: got %q, want %q", i, m, wantMonths[i])
		}
	}

	if len(tl.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(tl.Entries))
	}

	npk := tl.Entries[0]
	if npk.ItemName != "npk gold" {
		t.Fatalf("first entry: got %q, want npk gold", npk.ItemName)
	}
	if npk.TotalQuantity != 15 {
		t.Errorf("TotalQuantity: got %v, want 15", npk.TotalQuantity)
	}
	if npk.Monthly["Jan 2024"] != 10 || npk.Monthly["Feb 2024"] != 5 {
		t.Errorf("monthly quantities: got %v", npk.Monthly)
	}
	if npk.TotalCost != 200 {
		t.Errorf("TotalCost: got %v, want 200", npk.TotalCost)
	}
}

func TestTimelineCategoryFilter(t *testing.T) {
	records := []domain.DeliveryRecord{
		itemRec("A", "C1", "npk gold", "Bio-Fertilizers", 100, 10, 2024, 1),
		itemRec("B", "C2", "zinc plus", "Micronutrients", 50, 3, 2024, 2),
	}

	tl := Timeline(records, domain.TimelineFilter{Category: "Micronutrients"})
	if len(tl.Entries) != 1 || tl.Entries[0].ItemName != "zinc plus" {
		t.Fatalf("category filter: got %v", tl.Entries)
	}
	// Months from filtered-out records are excluded too.
	if len(tl.Months) != 1 || tl.Months[0] != "Feb 2024" {
		t.Errorf("months: got %v, want [Feb 2024]", tl.Months)
	}
}

func TestTimelineSearchFilter(t *testing.T) {
	records := []domain.DeliveryRecord{
		itemRec("A", "C1", "npk gold", "Bio-Fertilizers", 100, 10, 2024, 1),
		itemRec("B", "C2", "npk silver", "Bio-Fertilizers", 80, 4, 2024, 1),
		itemRec("B", "C3", "zinc plus", "Micronutrients", 50, 3, 2024, 1),
	}

	tl := Timeline(records, domain.TimelineFilter{Search: "NPK"})
	if len(tl.Entries) != 2 {
		t.Fatalf("search filter: got %d entries, want 2", len(tl.Entries))
	}
	for _, e := range tl.Entries {
		if e.Category != "Bio-Fertilizers" {
			t.Errorf("unexpected entry %q in category %q", e.ItemName, e.Category)
		}
	}
}

func TestTimelineEmpty(t *testing.T) {
	tl := Timeline(nil, domain.TimelineFilter{})
	if len(tl.Months) != 0 || len(tl.Entries) != 0 {
		t.Errorf("empty input produced %v", tl)
	}
}
