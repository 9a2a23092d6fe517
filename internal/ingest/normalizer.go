package ingest

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agrolytics/dealer-insights/internal/classify"
	"github.com/agrolytics/dealer-insights/internal/domain"
)

// Canonical headers exported by the upstream accounting system. These are the
// exact-match fast path; anything else goes through the keyword heuristics.
const (
	headerChallanDate   = "Challan Date"
	headerChallanNumber = "Delivery Challan Number"
	headerChallanID     = "Delivery Challan ID"
	headerCustomerName  = "Customer Name"
	headerItemName      = "Item Name"
	headerItemTotal     = "Item Total"
	headerQuantity      = "QuantityOrdered"
)

// Normalizer converts raw CSV rows into canonical delivery records. It is a
// pure transform; Now is injectable so tests can pin the synthetic-date
// fallback.
type Normalizer struct {
	Now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{Now: time.Now}
}

// Normalize resolves the date/customer/item/total/challan fields of a raw row
// and coerces them into a DeliveryRecord. Returns nil only when no usable
// identifying field can be resolved at all (effectively an empty row).
func (n *Normalizer) Normalize(row RawRow) *domain.DeliveryRecord {
	customer := n.resolveCustomer(row)
	item := n.resolveItem(row)
	challan := n.resolveChallan(row)
	total := ParseAmount(n.resolveTotal(row))
	qty := ParseAmount(n.resolveQuantity(row))

	// Drop the row only when nothing identifies it.
	if customer == "" && item == "" && challan == "" && total == 0 {
		return nil
	}

	date, synthetic := n.resolveDate(row)

	cleaned := strings.ToLower(strings.TrimSpace(item))
	rec := &domain.DeliveryRecord{
		CustomerName:    strings.TrimSpace(customer),
		ItemName:        item,
		ItemNameCleaned: cleaned,
		ItemTotal:       total,
		Quantity:        qty,
		ChallanNumber:   challan,
		ChallanDate:     date,
		SyntheticDate:   synthetic,
		Category:        classify.Category(cleaned),
		Month:           date.Format("Jan 2006"),
		Year:            date.Year(),
		MonthNum:        int(date.Month()),
	}
	return rec
}

func (n *Normalizer) resolveCustomer(row RawRow) string {
	if v, ok := row[headerCustomerName]; ok && v != "" {
		return v
	}
	return findColumn(row, func(col string) bool {
		return strings.Contains(col, "customer") ||
			strings.Contains(col, "dealer") ||
			strings.Contains(col, "party")
	})
}

func (n *Normalizer) resolveItem(row RawRow) string {
	if v, ok := row[headerItemName]; ok && v != "" {
		return v
	}
	return findColumn(row, func(col string) bool {
		return strings.Contains(col, "item") || strings.Contains(col, "product")
	})
}

func (n *Normalizer) resolveChallan(row RawRow) string {
	if v, ok := row[headerChallanNumber]; ok && v != "" {
		return v
	}
	if v, ok := row[headerChallanID]; ok && v != "" {
		return v
	}
	return findColumn(row, func(col string) bool {
		if !strings.Contains(col, "challan") &&
			!strings.Contains(col, "invoice") &&
			!strings.Contains(col, "order") {
			return false
		}
		return strings.Contains(col, "number") ||
			strings.Contains(col, "no") ||
			strings.Contains(col, "id")
	})
}

func (n *Normalizer) resolveTotal(row RawRow) string {
	if v, ok := row[headerItemTotal]; ok && v != "" {
		return v
	}
	return findColumn(row, func(col string) bool {
		if strings.Contains(col, "discount") || strings.Contains(col, "sub") {
			return false
		}
		return strings.Contains(col, "total") || strings.Contains(col, "amount")
	})
}

func (n *Normalizer) resolveQuantity(row RawRow) string {
	if v, ok := row[headerQuantity]; ok && v != "" {
		return v
	}
	return findColumn(row, func(col string) bool {
		return strings.Contains(col, "qty") || strings.Contains(col, "quantity")
	})
}

// resolveDate parses the resolved date cell through the known formats.
// Unparseable dates are substituted with the current timestamp; this is a
// policy choice so dirty rows are retained, and the second return marks it.
func (n *Normalizer) resolveDate(row RawRow) (time.Time, bool) {
	raw, ok := row[headerChallanDate]
	if !ok || raw == "" {
		raw = findColumn(row, func(col string) bool {
			if strings.Contains(col, "id") || strings.Contains(col, "number") {
				return false
			}
			return strings.Contains(col, "date")
		})
	}

	if raw != "" {
		if t, ok := parseDate(raw); ok {
			return t, false
		}
	}
	return n.Now(), true
}

// findColumn returns the value of the first column whose lower-cased name
// matches. Map iteration order is not stable, so candidates are checked in
// sorted-key order for determinism.
func findColumn(row RawRow, match func(colLower string) bool) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if match(strings.ToLower(k)) && row[k] != "" {
			return row[k]
		}
	}
	return ""
}

var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"2006/01/02",
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseAmount strips currency symbols and thousands separators and parses the
// rest as a float. Non-numeric values become 0; negatives clamp to 0 to keep
// the non-negativity invariant.
func ParseAmount(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0
	}

	cleaned = strings.ReplaceAll(cleaned, "₹", "")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.TrimPrefix(cleaned, "Rs.")
	cleaned = strings.TrimPrefix(cleaned, "Rs")

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
