// Package classify maps free-text item names to the fixed set of product
// categories via keyword substring matching.
package classify

import "strings"

// Uncategorized is returned when no keyword matches.
const Uncategorized = "Uncategorized"

type categoryKeywords struct {
	name     string
	keywords []string
}

// categoryTable is ordered: the first category with a matching keyword wins,
// so declaration order is part of the contract. Keywords are the known item
// names from the product catalog, lower-cased.
var categoryTable = []categoryKeywords{
	{
		name: "Bio-Fertilizers",
		keywords: []string{
			"peek sanjivani - consortia", "bio surakshak - tryka (trichoderma)",
			"peek sanjivani - p (psb)", "sanjivani kit (5 ltrs)", "peek sanjivani - k (kmb)",
			"peek sanjivani - p (azotobacter)", "bio surakshak - ryzia (metarhizium)",
			"bio surakshak - rekha (psudomonas)", "peek sanjivani - n (azotobacter)",
			"sanjivani granules", "rhizo-vishwa (200 gm)",
		},
	},
	{
		name: "Micronutrients",
		keywords: []string{
			"nutrisac kit - (50 kg)", "nutrisac kit - (25 kg)", "nutrisac kit - (10 kg)",
			"dimond kit 50kg", "micromax kit (50 kg)", "ferrous sulphate (feso4) - 20 kg",
			"nutrisac mg -20kg", "nutrisac fe - 10 kg", "nutrisac mg - 10 kg",
			"nutrisac fe  - 20 kg", "jackpot kit", "orient kit - (50 kg)",
			"magnesium sulphate (mgso4) - 20 kg", "orient kit - (53 kg)", "diamond kit 50kg",
			"ferrous sulphate - feso4 (20 kg bag)",
		},
	},
	{
		name: "Chelated Micronutrients",
		keywords: []string{
			"iron man - eddha ferrous (500 gm)", "micro man - fe (500 gm)",
			"micro man - fe (250 gm)", "micro man - zn (250 gm)", "micro man - zn (500 gm)",
			"micro man - pro (1 ltr)", "micro man - pro (500 ml)", "micro man pro (250 ml)",
			"iron man - eddha ferrous (1 kg)",
		},
	},
	{
		name: "Bio-Stimulants",
		keywords: []string{
			"titanic kit - (25 kg)", "jeeto - 95 (100 ml)", "jeeto - 95 (200 ml)",
			"flora - 95 (100 ml)", "flora - 95 (200 ml)", "mantra humic acid (500 gm)",
			"mantra humic acid (250 gm)", "mantra humic acid (1 kg)", "jeeto - 95 (400 ml)",
			"pickup - 99 (100 ml)", "pickup - 99 (200 ml)", "pickup - 99 (400 ml)",
			"micro man plus (250 gm)", "micro man plus (500 gm)", "flora - 95 (400 ml)",
			"boomer - 90 (100 ml)", "boomer - 90 (200 ml)", "boomer - 90 (400 ml)",
			"bingo 100 ml", "bingo 200 ml", "bingo 400 ml", "rainbow 200", "rainbow 400",
			"rainbow 100ml", "mantra humic acid (100 gm)", "zumbaa", "turma max", "simba",
			"captain (100 ml)", "ferrari (200 ml)", "ferrari (400 ml)", "bio stimulant - f",
			"bio stimulant - j", "ozone power (10 kg bucket)", "fountain 1 liter",
			"fountain 500 ml",
		},
	},
	{
		name: "Other Bulk Orders",
		keywords: []string{
			"biomass briquette", "nandi choona", "calcimag",
		},
	},
}

// Category returns the product category for a lower-cased item name, or
// Uncategorized when no keyword matches. Pure and deterministic.
func Category(itemNameLower string) string {
	if itemNameLower == "" {
		return Uncategorized
	}
	for _, entry := range categoryTable {
		for _, kw := range entry.keywords {
			if strings.Contains(itemNameLower, kw) {
				return entry.name
			}
		}
	}
	return Uncategorized
}

// Categories returns the fixed category names in declaration order, with
// Uncategorized last. Useful for stable dashboard column ordering.
func Categories() []string {
	names := make([]string, 0, len(categoryTable)+1)
	for _, entry := range categoryTable {
		names = append(names, entry.name)
	}
	return append(names, Uncategorized)
}
