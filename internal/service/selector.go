package service

import (
	"math/rand/v2"

	"github.com/tanvir/cardforge/internal/apperror"
	"github.com/tanvir/cardforge/internal/catalog"
)

// The selector is pure in-memory computation over the static catalog — no
// I/O, no suspension. Uniqueness against existingKeys is enforced here
// defensively, but the generation transaction re-checks it inside the
// atomic unit: two concurrent requests can both pass this filter with the
// same pick, and only the transaction can decide which one wins.

// candidates filters the catalog down to records eligible for random
// selection:
//
//   - the record's key is not already owned,
//   - if any APIs are locked, at least ONE of the pair is locked
//     ("at least one must match", not "all locks present" — each locked
//     API independently unlocks its combinations),
//   - NEITHER of the pair is ignored (hard exclusion on both sides).
func candidates(cat *catalog.Catalog, existing, locked, ignored map[string]bool) []*catalog.Combination {
	all := cat.All()
	eligible := make([]*catalog.Combination, 0, len(all))

	for i := range all {
		c := &all[i]
		if existing[c.Key()] {
			continue
		}
		if len(locked) > 0 && !locked[c.APIs[0]] && !locked[c.APIs[1]] {
			continue
		}
		if ignored[c.APIs[0]] || ignored[c.APIs[1]] {
			continue
		}
		eligible = append(eligible, c)
	}

	return eligible
}

// selectRandom picks uniformly from the eligible candidates.
// Returns nil when nothing is selectable.
func selectRandom(cat *catalog.Catalog, existing, locked, ignored map[string]bool) *catalog.Combination {
	eligible := candidates(cat, existing, locked, ignored)
	if len(eligible) == 0 {
		return nil
	}
	return eligible[rand.IntN(len(eligible))]
}

// selectRequested resolves a caller-specified pair: exact key lookup, no
// fuzzy matching.
//
// Returns:
//   - an error for invalid requests: unknown API names, a pair containing
//     an ignored API (rejected explicitly — a user-requested pair does not
//     bypass the ignore rule), or a pair the user already owns,
//   - (nil, nil) when the pair simply isn't in the catalog; the caller
//     falls through to random selection.
func selectRequested(cat *catalog.Catalog, existing, ignored map[string]bool, a, b string) (*catalog.Combination, error) {
	if a == b {
		return nil, apperror.ValidationFailed("apis", "requested pair must be two distinct APIs")
	}
	for _, name := range []string{a, b} {
		if !cat.HasAPI(name) {
			return nil, apperror.ValidationFailed("apis", "unknown API: "+name)
		}
		if ignored[name] {
			return nil, apperror.ValidationFailed("apis", name+" is on your ignore list")
		}
	}

	key := catalog.Key(a, b)
	if existing[key] {
		return nil, apperror.DuplicateCombination(key)
	}

	return cat.ByKey(key), nil
}
