package pricing

import (
	"math"
	"time"

	"github.com/iliyamo/yacht-charter/internal/model"
)

// Total is unit price plus selected options.  Promotions are deliberately
// not part of it: this is the figure written to bookings.total_price_cents.
func (c *Calculator) Total(item model.CatalogItem, quantity int, selected []uint64, available []model.YachtOption) (int64, error) {
	unit, err := c.UnitPrice(item, quantity)
	if err != nil {
		return 0, err
	}
	return unit + c.OptionsTotal(selected, available), nil
}

// Quote is the priced view returned to clients.  TotalCents is the
// payable figure; DisplayCents only accompanies a promotion badge.
type Quote struct {
	Quantity     int                 `json:"quantity"`
	UnitCents    int64               `json:"unit_cents"`
	OptionsCents int64               `json:"options_cents"`
	TotalCents   int64               `json:"total_cents"`
	Options      []model.YachtOption `json:"options"`
	Promotion    *model.Promotion    `json:"promotion,omitempty"`
	DisplayCents *int64              `json:"display_cents,omitempty"`
}

// Quote prices item and attaches the promotion to display, if any.
func (c *Calculator) Quote(item model.CatalogItem, quantity int, selected []uint64, available []model.YachtOption, promos []model.Promotion, now time.Time) (Quote, error) {
	unit, err := c.UnitPrice(item, quantity)
	if err != nil {
		return Quote{}, err
	}
	opts := c.ResolveOptions(selected, available)
	if opts == nil {
		opts = []model.YachtOption{}
	}
	q := Quote{
		Quantity:     quantity,
		UnitCents:    unit,
		OptionsCents: SumOptions(opts),
		Options:      opts,
	}
	q.TotalCents = q.UnitCents + q.OptionsCents
	if p := FindApplicablePromotion(promos, item, now); p != nil {
		q.Promotion = p
		hint := DisplayPrice(q.TotalCents, p)
		q.DisplayCents = &hint
	}
	return q, nil
}

// WithVAT returns the VAT share of subtotal at percent and the gross
// amount.  VAT is rounded half away from zero to the cent.
func WithVAT(subtotal int64, percent float64) (vat, gross int64) {
	vat = int64(math.Round(float64(subtotal) * percent / 100))
	return vat, subtotal + vat
}
