package domain

// Dealer tiers, highest first. Assignment is first-match over fixed
// market-share/loyalty thresholds; the order here is part of the contract.
const (
	TierPlatinum = "Platinum"
	TierGold     = "Gold"
	TierSilver   = "Silver"
	TierBronze   = "Bronze"
)

// CategorySales is a per-category slice of one dealer's spend.
type CategorySales struct {
	Sales  float64 `json:"sales"`
	Orders int     `json:"orders"`
	Share  float64 `json:"share"`
}

// MonthlySales is one point in a chronological monthly trend.
type MonthlySales struct {
	Month  string  `json:"month"`
	Year   int     `json:"year"`
	Sales  float64 `json:"sales"`
	Orders int     `json:"orders"`
}

// DealerMetrics is a pure derived view over the current record set. It is
// recomputed on every query and never persisted; DealerName is the only
// identity it carries.
type DealerMetrics struct {
	DealerName        string                   `json:"dealer_name"`
	TotalSales        float64                  `json:"total_sales"`
	TotalOrders       int                      `json:"total_orders"`
	AvgOrderValue     float64                  `json:"avg_order_value"`
	MarketShare       float64                  `json:"market_share"`
	CategoryDiversity int                      `json:"category_diversity"`
	OrderFrequency    float64                  `json:"order_frequency"`
	GrowthRate        float64                  `json:"growth_rate"`
	LoyaltyScore      float64                  `json:"loyalty_score"`
	Tier              string                   `json:"tier"`
	Percentile        int                      `json:"percentile"`
	CategoryBreakdown map[string]CategorySales `json:"category_breakdown"`
	MonthlyTrend      []MonthlySales           `json:"monthly_trend"`
}

// CategorySummary aggregates the whole dataset by product category.
type CategorySummary struct {
	Category    string  `json:"category"`
	TotalSales  float64 `json:"total_sales"`
	TotalOrders int     `json:"total_orders"`
	ItemCount   int     `json:"item_count"`
	Share       float64 `json:"share"`
}

// ProductSummary aggregates the whole dataset by item name.
type ProductSummary struct {
	ItemName      string  `json:"item_name"`
	Category      string  `json:"category"`
	TotalSales    float64 `json:"total_sales"`
	TotalQuantity float64 `json:"total_quantity"`
	TotalOrders   int     `json:"total_orders"`
	DealerCount   int     `json:"dealer_count"`
}

// OverallStats is the whole-dataset summary card. GrowthRate here is
// year-over-year (calendar buckets), unlike the dealers' rolling window.
type OverallStats struct {
	TotalSales     float64 `json:"total_sales"`
	TotalOrders    int     `json:"total_orders"`
	TotalCustomers int     `json:"total_customers"`
	AvgOrderValue  float64 `json:"avg_order_value"`
	TopCategory    string  `json:"top_category"`
	GrowthRate     float64 `json:"growth_rate"`
}

// TierSummary groups dealers by tier for the summary table.
type TierSummary struct {
	Tier        string  `json:"tier"`
	DealerCount int     `json:"dealer_count"`
	TotalOrders int     `json:"total_orders"`
	TotalSales  float64 `json:"total_sales"`
}

// TimelineEntry is one product row of the quantity-by-month pivot.
type TimelineEntry struct {
	ItemName      string             `json:"item_name"`
	Category      string             `json:"category"`
	Monthly       map[string]float64 `json:"monthly"`
	TotalQuantity float64            `json:"total_quantity"`
	TotalCost     float64            `json:"total_cost"`
}

// ProductTimeline is the full pivot with its chronological month columns.
type ProductTimeline struct {
	Months  []string        `json:"months"`
	Entries []TimelineEntry `json:"entries"`
}

// DealerFilter narrows the dealer ranking endpoint.
type DealerFilter struct {
	Search string `json:"search"`
	Tier   string `json:"tier"`
	Sort   string `json:"sort"`
}

// TimelineFilter narrows the product timeline endpoint.
type TimelineFilter struct {
	Category string `json:"category"`
	Search   string `json:"search"`
}
