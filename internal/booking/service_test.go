package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/yacht-charter/internal/model"
	"github.com/iliyamo/yacht-charter/internal/pricing"
)

type catalogMock struct{ mock.Mock }

func (m *catalogMock) GetYacht(ctx context.Context, id uint64) (*model.Yacht, error) {
	args := m.Called(ctx, id)
	y, _ := args.Get(0).(*model.Yacht)
	return y, args.Error(1)
}

func (m *catalogMock) ListOptions(ctx context.Context, yachtID uint64) ([]model.YachtOption, error) {
	args := m.Called(ctx, yachtID)
	opts, _ := args.Get(0).([]model.YachtOption)
	return opts, args.Error(1)
}

type promosStub struct {
	promos []model.Promotion
	err    error
}

func (p promosStub) ListPromotions(context.Context) ([]model.Promotion, error) { return p.promos, p.err }

type publisherMock struct{ mock.Mock }

func (m *publisherMock) PublishBookingCreated(ctx context.Context, b model.Booking) error {
	return m.Called(ctx, b).Error(0)
}

// memStore keeps bookings and option rows the way the tables would.
type memStore struct {
	nextID   uint64
	bookings []model.Booking
	options  []model.BookingOption
	err      error
}

func (s *memStore) CreateBooking(_ context.Context, b *model.Booking, opts []model.BookingOption) error {
	if s.err != nil {
		return s.err
	}
	s.nextID++
	b.ID = s.nextID
	s.bookings = append(s.bookings, *b)
	for _, o := range opts {
		o.BookingID = b.ID
		s.options = append(s.options, o)
	}
	return nil
}

func price(v int64) *int64 { return &v }

func fixture() (*catalogMock, []model.YachtOption) {
	cat := &catalogMock{}
	yacht := &model.Yacht{ID: 1, Name: "Azimut 60", PricePerHourCents: price(50000), IsAvailable: true}
	opts := []model.YachtOption{
		{ID: 11, YachtID: 1, Name: "Jet Ski", PriceCents: 20000, IsActive: true},
		{ID: 12, YachtID: 1, Name: "BBQ", PriceCents: 15000, IsActive: true},
	}
	cat.On("GetYacht", mock.Anything, uint64(1)).Return(yacht, nil)
	cat.On("ListOptions", mock.Anything, uint64(1)).Return(opts, nil)
	return cat, opts
}

func TestSubmitStoresUndiscountedTotal(t *testing.T) {
	cat, _ := fixture()
	store := &memStore{}
	promos := promosStub{promos: []model.Promotion{{ID: 1, Catalog: model.CatalogYachts, DiscountPercent: 10, IsActive: true}}}
	pub := &publisherMock{}
	pub.On("PublishBookingCreated", mock.Anything, mock.AnythingOfType("model.Booking")).Return(nil)

	svc := NewService(cat, promos, store, pub, pricing.NewCalculator(nil), nil)
	d := validDraft()
	d.OptionIDs = []uint64{11}

	b, err := svc.Submit(context.Background(), d)
	require.NoError(t, err)

	assert.Equal(t, int64(170000), b.TotalPriceCents)
	assert.Equal(t, model.BookingPending, b.Status)
	require.Len(t, store.bookings, 1)
	assert.Equal(t, int64(170000), store.bookings[0].TotalPriceCents)
	assert.Equal(t, time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), store.bookings[0].BookingDate)
	pub.AssertNumberOfCalls(t, "PublishBookingCreated", 1)
}

func TestSubmitSnapshotsOptionPrices(t *testing.T) {
	cat, opts := fixture()
	store := &memStore{}
	svc := NewService(cat, nil, store, nil, pricing.NewCalculator(nil), nil)
	d := validDraft()
	d.OptionIDs = []uint64{11, 12}

	b, err := svc.Submit(context.Background(), d)
	require.NoError(t, err)

	// Later catalog edits must not reach stored rows.
	opts[0].PriceCents = 99999
	opts[1].Name = "Renamed"

	require.Len(t, store.bookings, 1)
	require.Len(t, store.options, 2)
	assert.Equal(t, 2, store.bookings[0].OptionsExpected)
	assert.Equal(t, model.BookingOption{BookingID: b.ID, OptionID: 11, OptionName: "Jet Ski", OptionPriceCents: 20000}, store.options[0])
	assert.Equal(t, model.BookingOption{BookingID: b.ID, OptionID: 12, OptionName: "BBQ", OptionPriceCents: 15000}, store.options[1])
	assert.Equal(t, int64(3*50000+20000+15000), b.TotalPriceCents)
}

func TestSubmitDropsStaleOption(t *testing.T) {
	cat, _ := fixture()
	store := &memStore{}
	svc := NewService(cat, nil, store, nil, pricing.NewCalculator(nil), nil)
	d := validDraft()
	d.OptionIDs = []uint64{11, 404}

	b, err := svc.Submit(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, int64(170000), b.TotalPriceCents)
	assert.Len(t, store.options, 1)
}

func TestSubmitValidationDoesNotTouchBackend(t *testing.T) {
	cat := &catalogMock{}
	store := &memStore{}
	svc := NewService(cat, nil, store, nil, pricing.NewCalculator(nil), nil)
	d := validDraft()
	d.Hours = 73

	_, err := svc.Submit(context.Background(), d)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	cat.AssertNotCalled(t, "GetYacht", mock.Anything, mock.Anything)
	assert.Empty(t, store.bookings)
}

func TestSubmitUnavailableYacht(t *testing.T) {
	cat := &catalogMock{}
	cat.On("GetYacht", mock.Anything, uint64(1)).Return(&model.Yacht{ID: 1, IsAvailable: false}, nil)
	svc := NewService(cat, nil, &memStore{}, nil, pricing.NewCalculator(nil), nil)

	_, err := svc.Submit(context.Background(), validDraft())
	assert.ErrorIs(t, err, ErrYachtUnavailable)
}

func TestSubmitStoreFailure(t *testing.T) {
	cat, _ := fixture()
	boom := errors.New("db down")
	pub := &publisherMock{}
	svc := NewService(cat, nil, &memStore{err: boom}, pub, pricing.NewCalculator(nil), nil)

	_, err := svc.Submit(context.Background(), validDraft())
	assert.ErrorIs(t, err, boom)
	pub.AssertNotCalled(t, "PublishBookingCreated", mock.Anything, mock.Anything)
}

func TestSubmitPublishFailureIsNotFatal(t *testing.T) {
	cat, _ := fixture()
	pub := &publisherMock{}
	pub.On("PublishBookingCreated", mock.Anything, mock.Anything).Return(errors.New("broker gone"))
	store := &memStore{}
	svc := NewService(cat, nil, store, pub, pricing.NewCalculator(nil), nil)

	b, err := svc.Submit(context.Background(), validDraft())
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Len(t, store.bookings, 1)
}

func TestPrepareToleratesPromotionFailure(t *testing.T) {
	cat, _ := fixture()
	svc := NewService(cat, promosStub{err: errors.New("timeout")}, &memStore{}, nil, pricing.NewCalculator(nil), nil)

	p, err := svc.Prepare(context.Background(), validDraft())
	require.NoError(t, err)
	assert.Nil(t, p.Quote.Promotion)
	assert.Equal(t, int64(150000), p.Quote.TotalCents)
}
