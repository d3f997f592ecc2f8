package catalog

// Rarity tiers, from most to least common.
const (
	RarityCommon    = "Common"
	RarityUncommon  = "Uncommon"
	RarityRare      = "Rare"
	RarityEpic      = "Epic"
	RarityLegendary = "Legendary"
)

// Rarity maps a combination's numeric rating to its discrete tier.
//
// Thresholds are inclusive lower bounds, evaluated from highest to lowest:
//
//	rating ≥ 0.98 → Legendary
//	rating ≥ 0.95 → Epic
//	rating ≥ 0.85 → Rare
//	rating ≥ 0.70 → Uncommon
//	otherwise     → Common
//
// Pure function — no side effects, no errors. Ratings outside [0,1] are the
// loader's problem (Load rejects them); this function just classifies.
func Rarity(rating float64) string {
	switch {
	case rating >= 0.98:
		return RarityLegendary
	case rating >= 0.95:
		return RarityEpic
	case rating >= 0.85:
		return RarityRare
	case rating >= 0.70:
		return RarityUncommon
	default:
		return RarityCommon
	}
}
