package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/yacht-charter/internal/model"
	"github.com/iliyamo/yacht-charter/internal/repository"
)

func cents(v int64) *int64 { return &v }

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

// fakeCatalog serves yachts, services, promotions and settings from memory.
type fakeCatalog struct {
	yachts     map[uint64]model.Yacht
	images     map[uint64][]model.YachtImage
	options    map[uint64][]model.YachtOption
	water      []model.WaterSport
	food       []model.FoodItem
	additional []model.AdditionalService
	promos     []model.Promotion
	settings   map[string]string
	err        error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		yachts: map[uint64]model.Yacht{
			1: {ID: 1, Name: "Azimut 60", NameAR: "أزيموت 60", Capacity: 20, PricePerHourCents: cents(50000), IsAvailable: true},
			2: {ID: 2, Name: "Old Timer", PricePerHourCents: cents(30000), IsAvailable: false},
		},
		images: map[uint64][]model.YachtImage{1: {{ID: 1, YachtID: 1, URL: "/img/a.jpg", DisplayOrder: 1}}},
		options: map[uint64][]model.YachtOption{1: {
			{ID: 11, YachtID: 1, Name: "Jet Ski", PriceCents: 20000, IsActive: true, DisplayOrder: 1},
			{ID: 12, YachtID: 1, Name: "Retired", PriceCents: 99999, IsActive: false, DisplayOrder: 2},
		}},
		water: []model.WaterSport{{ID: 5, Name: "Flyboard", Price30MinCents: cents(15000), Price60MinCents: cents(25000), IsAvailable: true}},
		food:  []model.FoodItem{{ID: 6, Name: "BBQ", PricePerPersonCents: cents(8000), IsAvailable: true}},
		additional: []model.AdditionalService{
			{ID: 7, Name: "Photographer", PriceCents: cents(40000), IsAvailable: true},
			{ID: 8, Name: "DJ", PriceCents: cents(60000), IsAvailable: false},
		},
		promos: []model.Promotion{
			{ID: 1, Title: "Summer", Catalog: model.CatalogYachts, DiscountPercent: 10, IsActive: true},
			{ID: 2, Title: "Off", Catalog: model.CatalogYachts, DiscountPercent: 50, IsActive: false},
		},
		settings: map[string]string{
			model.SettingWhatsAppNumber: "+971 50 123 4567",
			model.SettingCurrency:       "AED",
			"internal_note":             "secret",
		},
	}
}

func (f *fakeCatalog) ListYachts(_ context.Context, availableOnly bool) ([]model.Yacht, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Yacht
	for _, id := range []uint64{1, 2} {
		if y, ok := f.yachts[id]; ok && (!availableOnly || y.IsAvailable) {
			out = append(out, y)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetYacht(_ context.Context, id uint64) (*model.Yacht, error) {
	if f.err != nil {
		return nil, f.err
	}
	y, ok := f.yachts[id]
	if !ok {
		return nil, repository.ErrYachtNotFound
	}
	return &y, nil
}

func (f *fakeCatalog) ListImages(_ context.Context, id uint64) ([]model.YachtImage, error) {
	return f.images[id], nil
}

func (f *fakeCatalog) ListOptions(_ context.Context, id uint64) ([]model.YachtOption, error) {
	return f.options[id], nil
}

func (f *fakeCatalog) ListWaterSports(context.Context) ([]model.WaterSport, error) { return f.water, nil }
func (f *fakeCatalog) ListFood(context.Context) ([]model.FoodItem, error) { return f.food, nil }
func (f *fakeCatalog) ListAdditional(context.Context) ([]model.AdditionalService, error) {
	return f.additional, nil
}

func (f *fakeCatalog) GetItem(_ context.Context, kind model.ItemKind, id uint64) (model.CatalogItem, error) {
	switch kind {
	case model.KindWaterSport:
		for _, w := range f.water {
			if w.ID == id {
				return w.CatalogItem(), nil
			}
		}
	case model.KindFood:
		for _, x := range f.food {
			if x.ID == id {
				return x.CatalogItem(), nil
			}
		}
	case model.KindAdditionalService:
		for _, a := range f.additional {
			if a.ID == id {
				return a.CatalogItem(), nil
			}
		}
	}
	return model.CatalogItem{}, repository.ErrItemNotFound
}

func (f *fakeCatalog) ListPromotions(context.Context) ([]model.Promotion, error) {
	return f.promos, nil
}

func (f *fakeCatalog) All(context.Context) ([]model.SiteSetting, error) {
	out := []model.SiteSetting{}
	for k, v := range f.settings {
		out = append(out, model.SiteSetting{Key: k, Value: v})
	}
	return out, nil
}

func (f *fakeCatalog) Get(_ context.Context, key string) (string, error) {
	v, ok := f.settings[key]
	if !ok {
		return "", repository.ErrSettingNotFound
	}
	return v, nil
}

func (f *fakeCatalog) Set(_ context.Context, key, value string) error {
	f.settings[key] = value
	return nil
}

// fakeBookings stores bookings in memory for the booking and admin routes.
type fakeBookings struct {
	nextID   uint64
	bookings map[uint64]*model.Booking
	err      error
}

func newFakeBookings() *fakeBookings { return &fakeBookings{bookings: map[uint64]*model.Booking{}} }

func (s *fakeBookings) CreateBooking(_ context.Context, b *model.Booking, opts []model.BookingOption) error {
	if s.err != nil {
		return s.err
	}
	s.nextID++
	b.ID = s.nextID
	cp := *b
	cp.Options = append([]model.BookingOption(nil), opts...)
	s.bookings[b.ID] = &cp
	return nil
}

func (s *fakeBookings) List(_ context.Context, status model.BookingStatus) ([]model.Booking, error) {
	out := []model.Booking{}
	for id := uint64(1); id <= s.nextID; id++ {
		if b, ok := s.bookings[id]; ok && (status == "" || b.Status == status) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeBookings) ListIncomplete(context.Context) ([]model.Booking, error) {
	out := []model.Booking{}
	for _, b := range s.bookings {
		if len(b.Options) != b.OptionsExpected {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeBookings) Get(_ context.Context, id uint64) (*model.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeBookings) UpdateStatus(_ context.Context, id uint64, status model.BookingStatus) error {
	b, ok := s.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (s *fakeBookings) DeleteBooking(_ context.Context, id uint64) error {
	if _, ok := s.bookings[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}

type recordedChange struct {
	Table string
	Op    string
	ID    uint64
}

type fakeChanges struct{ got []recordedChange }

func (f *fakeChanges) PublishChange(_ context.Context, table, op string, id uint64) error {
	f.got = append(f.got, recordedChange{table, op, id})
	return nil
}

func do(e *echo.Echo, method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}
