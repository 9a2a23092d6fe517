package analytics

import (
	"sort"
	"strings"

	"github.com/agrolytics/dealer-insights/internal/domain"
)

// Overall produces the whole-dataset summary card. Its growth rate compares
// calendar-year buckets (latest year vs the one before), which is a different
// policy from the dealers' rolling 3-month window. The divergence is
// deliberate and must not be unified.
func Overall(records []domain.DeliveryRecord) domain.OverallStats {
	stats := domain.OverallStats{}
	if len(records) == 0 {
		return stats
	}

	challans := make(map[string]struct{})
	customers := make(map[string]struct{})
	categorySales := make(map[string]float64)
	yearSales := make(map[int]float64)

	for _, rec := range records {
		stats.TotalSales += rec.ItemTotal
		if rec.ChallanNumber != "" {
			challans[rec.ChallanNumber] = struct{}{}
		}
		if rec.CustomerName != "" {
			customers[rec.CustomerName] = struct{}{}
		}
		categorySales[rec.Category] += rec.ItemTotal
		yearSales[rec.Year] += rec.ItemTotal
	}

	stats.TotalOrders = len(challans)
	stats.TotalCustomers = len(customers)
	if stats.TotalOrders > 0 {
		stats.AvgOrderValue = stats.TotalSales / float64(stats.TotalOrders)
	}

	topSales := -1.0
	for cat, sales := range categorySales {
		if sales > topSales || (sales == topSales && cat < stats.TopCategory) {
			stats.TopCategory = cat
			topSales = sales
		}
	}

	stats.GrowthRate = yearOverYearGrowth(yearSales)
	return stats
}

func yearOverYearGrowth(yearSales map[int]float64) float64 {
	if len(yearSales) < 2 {
		return 0
	}

	years := make([]int, 0, len(yearSales))
	for y := range yearSales {
		years = append(years, y)
	}
	sort.Ints(years)

	latest := years[len(years)-1]
	previous := years[len(years)-2]
	if yearSales[previous] == 0 {
		return 0
	}
	return (yearSales[latest] - yearSales[previous]) / yearSales[previous] * 100
}

// Categories aggregates the dataset by product category, sorted by sales.
func Categories(records []domain.DeliveryRecord) []domain.CategorySummary {
	if len(records) == 0 {
		return []domain.CategorySummary{}
	}

	type catAcc struct {
		sales    float64
		challans map[string]struct{}
		items    map[string]struct{}
	}

	var grandTotal float64
	groups := make(map[string]*catAcc)
	for _, rec := range records {
		grandTotal += rec.ItemTotal
		acc, ok := groups[rec.Category]
		if !ok {
			acc = &catAcc{
				challans: make(map[string]struct{}),
				items:    make(map[string]struct{}),
			}
			groups[rec.Category] = acc
		}
		acc.sales += rec.ItemTotal
		if rec.ChallanNumber != "" {
			acc.challans[rec.ChallanNumber] = struct{}{}
		}
		if rec.ItemNameCleaned != "" {
			acc.items[rec.ItemNameCleaned] = struct{}{}
		}
	}

	summaries := make([]domain.CategorySummary, 0, len(groups))
	for name, acc := range groups {
		share := 0.0
		if grandTotal > 0 {
			share = acc.sales / grandTotal * 100
		}
		summaries = append(summaries, domain.CategorySummary{
			Category:    name,
			TotalSales:  acc.sales,
			TotalOrders: len(acc.challans),
			ItemCount:   len(acc.items),
			Share:       share,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalSales != summaries[j].TotalSales {
			return summaries[i].TotalSales > summaries[j].TotalSales
		}
		return summaries[i].Category < summaries[j].Category
	})
	return summaries
}

// Products aggregates the dataset by item name, sorted by sales.
func Products(records []domain.DeliveryRecord) []domain.ProductSummary {
	if len(records) == 0 {
		return []domain.ProductSummary{}
	}

	type prodAcc struct {
		category string
		sales    float64
		quantity float64
		challans map[string]struct{}
		dealers  map[string]struct{}
	}

	groups := make(map[string]*prodAcc)
	for _, rec := range records {
		name := rec.ItemNameCleaned
		if name == "" {
			name = strings.ToLower(rec.ItemName)
		}
		acc, ok := groups[name]
		if !ok {
			acc = &prodAcc{
				category: rec.Category,
				challans: make(map[string]struct{}),
				dealers:  make(map[string]struct{}),
			}
			groups[name] = acc
		}
		acc.sales += rec.ItemTotal
		acc.quantity += rec.Quantity
		if rec.ChallanNumber != "" {
			acc.challans[rec.ChallanNumber] = struct{}{}
		}
		if rec.CustomerName != "" {
			acc.dealers[rec.CustomerName] = struct{}{}
		}
	}

	summaries := make([]domain.ProductSummary, 0, len(groups))
	for name, acc := range groups {
		summaries = append(summaries, domain.ProductSummary{
			ItemName:      name,
			Category:      acc.category,
			TotalSales:    acc.sales,
			TotalQuantity: acc.quantity,
			TotalOrders:   len(acc.challans),
			DealerCount:   len(acc.dealers),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalSales != summaries[j].TotalSales {
			return summaries[i].TotalSales > summaries[j].TotalSales
		}
		return summaries[i].ItemName < summaries[j].ItemName
	})
	return summaries
}
