package analytics

import (
	"sort"
	"strings"

	"github.com/agrolytics/dealer-insights/internal/classify"
	"github.com/agrolytics/dealer-insights/internal/domain"
)

// Timeline builds the product-quantity-by-month pivot: one row per item, one
// column per month seen in the data, ordered chronologically. Filters narrow
// by category and item-name substring before pivoting.
func Timeline(records []domain.DeliveryRecord, filter domain.TimelineFilter) domain.ProductTimeline {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	type rowAcc struct {
		category string
		monthly  map[string]float64
		totalQty float64
		cost     float64
	}

	monthKeys := make(map[string]string) // sortable key -> display label
	rows := make(map[string]*rowAcc)

	for _, rec := range records {
		if filter.Category != "" && rec.Category != filter.Category {
			continue
		}
		name := rec.ItemNameCleaned
		if name == "" {
			name = strings.ToLower(rec.ItemName)
		}
		if search != "" && !strings.Contains(name, search) {
			continue
		}

		key := monthKey(rec.Year, rec.MonthNum)
		monthKeys[key] = rec.Month

		acc, ok := rows[name]
		if !ok {
			acc = &rowAcc{category: rec.Category, monthly: make(map[string]float64)}
			rows[name] = acc
		}
		acc.monthly[rec.Month] += rec.Quantity
		acc.totalQty += rec.Quantity
		acc.cost += rec.ItemTotal
	}

	sortable := make([]string, 0, len(monthKeys))
	for key := range monthKeys {
		sortable = append(sortable, key)
	}
	sort.Strings(sortable)

	months := make([]string, 0, len(sortable))
	for _, key := range sortable {
		months = append(months, monthKeys[key])
	}

	entries := make([]domain.TimelineEntry, 0, len(rows))
	for name, acc := range rows {
		entries = append(entries, domain.TimelineEntry{
			ItemName:      name,
			Category:      acc.category,
			Monthly:       acc.monthly,
			TotalQuantity: acc.totalQty,
			TotalCost:     acc.cost,
		})
	}

	// Group rows by category (classifier order), then by quantity within.
	catRank := make(map[string]int)
	for i, cat := range classify.Categories() {
		catRank[cat] = i
	}
	sort.Slice(entries, func(i, j int) bool {
		ri, rj := catRank[entries[i].Category], catRank[entries[j].Category]
		if ri != rj {
			return ri < rj
		}
		if entries[i].TotalQuantity != entries[j].TotalQuantity {
			return entries[i].TotalQuantity > entries[j].TotalQuantity
		}
		return entries[i].ItemName < entries[j].ItemName
	})

	return domain.ProductTimeline{Months: months, Entries: entries}
}
