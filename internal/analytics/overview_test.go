package analytics

import (
	"math"
	"testing"

	"github.com/agrolytics/dealer-insights/internal/domain"
)

func itemRec(customer, challan, item, category string, total, qty float64, year, month int) domain.DeliveryRecord {
	r := rec(customer, challan, category, total, year, month)
	r.ItemName = item
	r.ItemNameCleaned = item
	r.Quantity = qty
	return r
}

func TestOverallEmpty(t *testing.T) {
	stats := Overall(nil)
	if stats.TotalSales != 0 || stats.TotalOrders != 0 || stats.TotalCustomers != 0 {
		t.Errorf("empty input produced non-zero stats: %+v", stats)
	}
	if stats.GrowthRate != 0 {
		t.Errorf("GrowthRate: got %v, want 0", stats.GrowthRate)
	}
}

func TestOverallTotals(t *testing.T) {
	records := []domain.DeliveryRecord{
		rec("A", "C1", "Bio-Fertilizers", 1000, 2024, 1),
		rec("A", "C1", "Micronutrients", 500, 2024, 1),
		rec("B", "C2", "Bio-Fertilizers", 2000, 2024, 2),
	}

	stats := Overall(records)
	if stats.TotalSales != 3500 {
		t.Errorf("TotalSales: got %v, want 3500", stats.TotalSales)
	}
	if stats.TotalOrders != 2 {
		t.Errorf("TotalOrders: got %d, want 2", stats.TotalOrders)
	}
	if stats.TotalCustomers != 2 {
		t.Errorf("TotalCustomers: got %d, want 2", stats.TotalCustomers)
	}
	if stats.AvgOrderValue != 1750 {
		t.Errorf("AvgOrderValue: got %v, want 1750", stats.AvgOrderValue)
	}
	if stats.TopCategory != "Bio-Fertilizers" {
		t.Errorf("TopCategory: got %q, want Bio-Fertilizers", stats.TopCategory)
	}
}

func TestOverallYearOverYearGrowth(t *testing.T) {
	records := []domain.DeliveryRecord{
		rec("A", "C1", "Bio-Fertilizers", 1000, 2023, 6),
		rec("A", "C2", "Bio-Fertilizers", 1500, 2024, 6),
	}

	stats := Overall(records)
	if math.Abs(stats.GrowthRate-50) > 1e-9 {
		t.Errorf("GrowthRate: got %v, want 50", stats.GrowthRate)
	}
}

func TestOverallGrowthSingleYear(t *testing.T) {
	records := []domain.DeliveryRecord{
		rec("A", "C1", "Bio-Fertilizers", 1000, 2024, 1),
		rec("A", "C2", "Bio-Fertilizers", 2000, 2024, 12),
	}

	if got := Overall(records).GrowthRate; got != 0 {
		t.Errorf("single-year GrowthRate: got %v, want 0", got)
	}
}

func TestCategoriesShareAndOrder(t *testing.T) {
	records := []domain.DeliveryRecord{
		itemRec("A", "C1", "npk gold", "Bio-Fertilizers", 3000, 10, 2024, 1),
		itemRec("A", "C1", "zinc plus", "Micronutrients", 1000, 5, 2024, 1),
		itemRec("B", "C2", "npk gold", "Bio-Fertilizers", 1000, 4, 2024, 2),
	}

	summaries := Categories(records)
	if len(summaries) != 2 {
		t.Fatalf("got %d categories, want 2", len(summaries))
	}

	top := summaries[0]
	if top.Category != "Bio-Fertilizers" {
		t.Errorf("top category: got %q, want Bio-Fertilizers", top.Category)
	}
	if math.Abs(top.Share-80) > 1e-9 {
		t.Errorf("top share: got %v, want 80", top.Share)
	}
	if top.TotalOrders != 2 {
		t.Errorf("top orders: got %d, want 2", top.TotalOrders)
	}
	if top.ItemCount != 1 {
		t.Errorf("top item count: got %d, want 1", top.ItemCount)
	}

	var shareSum float64
	for _, s := range summaries {
		shareSum += s.Share
	}
	if math.Abs(shareSum-100) > 1e-9 {
		t.Errorf("shares sum to %v, want 100", shareSum)
	}
}

func TestProductsAggregation(t *testing.T) {
	records := []domain.DeliveryRecord{
		itemRec("A", "C1", "npk gold", "Bio-Fertilizers", 3000, 10, 2024, 1),
		itemRec("B", "C2", "npk gold", "Bio-Fertilizers", 1500, 5, 2024, 2),
		itemRec("A", "C3", "zinc plus", "Micronutrients", 200, 2, 2024, 1),
	}

	summaries := Products(records)
	if len(summaries) != 2 {
		t.Fatalf("got %d products, want 2", len(summaries))
	}

	npk := summaries[0]
	if npk.ItemName != "npk gold" {
		t.Fatalf("top product: got %q, want npk gold", npk.ItemName)
	}
	if npk.TotalSales != 4500 {
		t.Errorf("TotalSales: got %v, want 4500", npk.TotalSales)
	}
	if npk.TotalQuantity != 15 {
		t.Errorf("TotalQuantity: got %v, want 15", npk.TotalQuantity)
	}
	if npk.DealerCount != 2 {
		t.Errorf("DealerCount: got %d, want 2", npk.DealerCount)
	}
	if npk.TotalOrders != 2 {
		t.Errorf("TotalOrders: got %d, want 2", npk.TotalOrders)
	}
}

func TestProductsEmpty(t *testing.T) {
	if got := Products(nil); got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty slice", got)
	}
}
