package pricing

import (
	"log/slog"

	"github.com/iliyamo/yacht-charter/internal/model"
)

// ResolveOptions maps selected option ids onto the available options of
// the same item.  Ids that are unknown or inactive are dropped with a
// warning instead of failing the booking; duplicates are counted once.
// The result keeps selection order and carries the prices to snapshot.
func (c *Calculator) ResolveOptions(selected []uint64, available []model.YachtOption) []model.YachtOption {
	if len(selected) == 0 {
		return nil
	}
	byID := make(map[uint64]model.YachtOption, len(available))
	for _, o := range available {
		byID[o.ID] = o
	}
	out := make([]model.YachtOption, 0, len(selected))
	seen := make(map[uint64]struct{}, len(selected))
	for _, id := range selected {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		o, ok := byID[id]
		if !ok || !o.IsActive {
			c.log.Warn("selected option is not available, counting 0",
				slog.Uint64("option_id", id),
				slog.Bool("known", ok),
			)
			continue
		}
		out = append(out, o)
	}
	return out
}

// OptionsTotal sums the prices of the selected options.
func (c *Calculator) OptionsTotal(selected []uint64, available []model.YachtOption) int64 {
	return SumOptions(c.ResolveOptions(selected, available))
}

// SumOptions adds up already resolved options.
func SumOptions(opts []model.YachtOption) int64 {
	var sum int64
	for _, o := range opts {
		sum += o.PriceCents
	}
	return sum
}
