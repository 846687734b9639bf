package pricing

import (
	"math"
	"time"

	"github.com/iliyamo/yacht-charter/internal/model"
)

// IsCurrentlyActive reports whether p is switched on and now falls inside
// its optional inclusive validity window.
func IsCurrentlyActive(p model.Promotion, now time.Time) bool {
	if !p.IsActive {
		return false
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	return true
}

// AppliesTo reports whether p is scoped to item: same catalog, and either
// catalog-wide or bound to this exact item.
func AppliesTo(p model.Promotion, item model.CatalogItem) bool {
	if p.Catalog != item.Kind.Catalog() {
		return false
	}
	if p.ItemID == nil {
		return true
	}
	if *p.ItemID != item.ID {
		return false
	}
	kind, ok := scopeKind(p)
	return ok && kind == item.Kind
}

// scopeKind returns the kind an item-specific promotion is bound to.  The
// yachts catalog has a single kind so the column may be left empty there.
func scopeKind(p model.Promotion) (model.ItemKind, bool) {
	if p.ItemKind != nil {
		return *p.ItemKind, true
	}
	if p.Catalog == model.CatalogYachts {
		return model.KindYacht, true
	}
	return "", false
}

// FindApplicablePromotion returns the promotion to display for item, or
// nil.  Among currently active promotions in scope the winner is chosen
// deterministically:
//
//  1. item-specific beats catalog-wide
//  2. higher discount percentage
//  3. higher discount amount
//  4. lower id
//
// The result is informational only and never changes a stored total.
func FindApplicablePromotion(promos []model.Promotion, item model.CatalogItem, now time.Time) *model.Promotion {
	var best *model.Promotion
	for i := range promos {
		p := promos[i]
		if !IsCurrentlyActive(p, now) || !AppliesTo(p, item) {
			continue
		}
		if best == nil || outranks(p, *best) {
			cp := p
			best = &cp
		}
	}
	return best
}

// ActivePromotions filters promos down to those active at now, keeping order.
func ActivePromotions(promos []model.Promotion, now time.Time) []model.Promotion {
	out := make([]model.Promotion, 0, len(promos))
	for _, p := range promos {
		if IsCurrentlyActive(p, now) {
			out = append(out, p)
		}
	}
	return out
}

func outranks(a, b model.Promotion) bool {
	if a.ItemSpecific() != b.ItemSpecific() {
		return a.ItemSpecific()
	}
	if a.DiscountPercent != b.DiscountPercent {
		return a.DiscountPercent > b.DiscountPercent
	}
	if a.DiscountAmountCents != b.DiscountAmountCents {
		return a.DiscountAmountCents > b.DiscountAmountCents
	}
	return a.ID < b.ID
}

// DisplayPrice is the strike-through hint shown next to a promotion badge:
// the percentage is taken first, then the flat amount, never below zero.
// It must not be persisted.
func DisplayPrice(total int64, p *model.Promotion) int64 {
	if p == nil {
		return total
	}
	out := total
	if p.DiscountPercent > 0 {
		pct := math.Min(p.DiscountPercent, 100)
		out -= int64(math.Round(float64(total) * pct / 100))
	}
	out -= p.DiscountAmountCents
	if out < 0 {
		return 0
	}
	return out
}
