package model

import "time"

// ItemKind identifies which catalog table a bookable item comes from.
type ItemKind string

const (
	KindYacht             ItemKind = "yacht"
	KindWaterSport        ItemKind = "water_sport"
	KindFood              ItemKind = "food"
	KindAdditionalService ItemKind = "additional_service"
)

// Catalog groups item kinds for promotion scoping.  A catalog-wide
// promotion never crosses from one catalog into the other.
type Catalog string

const (
	CatalogYachts   Catalog = "yachts"
	CatalogServices Catalog = "services"
)

// Catalog returns the catalog the kind belongs to.
func (k ItemKind) Catalog() Catalog {
	if k == KindYacht {
		return CatalogYachts
	}
	return CatalogServices
}

// Valid reports whether k is one of the known kinds.
func (k ItemKind) Valid() bool {
	switch k {
	case KindYacht, KindWaterSport, KindFood, KindAdditionalService:
		return true
	}
	return false
}

// CatalogItem is the pricing view of any bookable thing.  Only the price
// fields relevant to Kind are populated; a nil price means the column was
// NULL in the database.
//
// Fields:
//  Kind           – source table of the item.
//  ID             – primary key within that table.
//  Name           – display name.
//  PricePerHour   – yachts: hourly rate in cents.
//  Price30Min     – water sports: price of the 30 minute bucket.
//  Price60Min     – water sports: price of the 60 minute bucket.
//  PricePerPerson – food: price per person.
//  Price          – additional services: flat price.
//  Available      – availability flag.
type CatalogItem struct {
	Kind           ItemKind
	ID             uint64
	Name           string
	PricePerHour   *int64
	Price30Min     *int64
	Price60Min     *int64
	PricePerPerson *int64
	Price          *int64
	Available      bool
}

// Yacht mirrors a row in the `yachts` table.
type Yacht struct {
	ID                uint64    `json:"id"`                            // yachts.id
	Name              string    `json:"name"`                          // yachts.name
	NameAR            string    `json:"name_ar,omitempty"`             // yachts.name_ar
	Description       string    `json:"description,omitempty"`         // yachts.description
	DescriptionAR     string    `json:"description_ar,omitempty"`      // yachts.description_ar
	Capacity          int       `json:"capacity"`                      // yachts.capacity
	LengthFt          int       `json:"length_ft"`                     // yachts.length_ft
	PricePerHourCents *int64    `json:"price_per_hour_cents"`          // nullable
	PricePerDayCents  *int64    `json:"price_per_day_cents,omitempty"` // nullable, display only
	IsAvailable       bool      `json:"is_available"`                  // yachts.is_available
	CreatedAt         time.Time `json:"created_at"`                    // yachts.created_at
	UpdatedAt         time.Time `json:"updated_at"`                    // yachts.updated_at
}

// CatalogItem returns the pricing view of the yacht.
func (y Yacht) CatalogItem() CatalogItem {
	return CatalogItem{
		Kind:         KindYacht,
		ID:           y.ID,
		Name:         y.Name,
		PricePerHour: y.PricePerHourCents,
		Available:    y.IsAvailable,
	}
}

// YachtImage mirrors the `yacht_images` table.
type YachtImage struct {
	ID           uint64 `json:"id"`
	YachtID      uint64 `json:"yacht_id"`
	URL          string `json:"url"`
	DisplayOrder int    `json:"display_order"`
}

// YachtOption is a paid add-on attached to exactly one yacht.  Its price
// is flat and added once per booking.
type YachtOption struct {
	ID           uint64 `json:"id"`
	YachtID      uint64 `json:"yacht_id"`
	Name         string `json:"name"`
	NameAR       string `json:"name_ar,omitempty"`
	PriceCents   int64  `json:"price_cents"`
	IsActive     bool   `json:"is_active"`
	DisplayOrder int    `json:"display_order"`
}

// WaterSport is priced by a fixed 30 or 60 minute bucket.
type WaterSport struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	NameAR          string `json:"name_ar,omitempty"`
	Price30MinCents *int64 `json:"price_30min_cents"`
	Price60MinCents *int64 `json:"price_60min_cents"`
	IsAvailable     bool   `json:"is_available"`
}

func (w WaterSport) CatalogItem() CatalogItem {
	return CatalogItem{
		Kind:       KindWaterSport,
		ID:         w.ID,
		Name:       w.Name,
		Price30Min: w.Price30MinCents,
		Price60Min: w.Price60MinCents,
		Available:  w.IsAvailable,
	}
}

// FoodItem is priced per person.
type FoodItem struct {
	ID                  uint64 `json:"id"`
	Name                string `json:"name"`
	NameAR              string `json:"name_ar,omitempty"`
	PricePerPersonCents *int64 `json:"price_per_person_cents"`
	IsAvailable         bool   `json:"is_available"`
}

func (f FoodItem) CatalogItem() CatalogItem {
	return CatalogItem{
		Kind:           KindFood,
		ID:             f.ID,
		Name:           f.Name,
		PricePerPerson: f.PricePerPersonCents,
		Available:      f.IsAvailable,
	}
}

// AdditionalService has a flat price regardless of quantity.
type AdditionalService struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	NameAR      string `json:"name_ar,omitempty"`
	PriceCents  *int64 `json:"price_cents"`
	IsAvailable bool   `json:"is_available"`
}

func (a AdditionalService) CatalogItem() CatalogItem {
	return CatalogItem{
		Kind:      KindAdditionalService,
		ID:        a.ID,
		Name:      a.Name,
		Price:     a.PriceCents,
		Available: a.IsAvailable,
	}
}
