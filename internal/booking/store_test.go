package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/yacht-charter/internal/model"
)

type stepsMock struct{ mock.Mock }

func (m *stepsMock) InsertBooking(ctx context.Context, b *model.Booking) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil {
		b.ID = 42
	}
	return args.Error(0)
}

func (m *stepsMock) InsertOptions(ctx context.Context, id uint64, opts []model.BookingOption) error {
	return m.Called(ctx, id, opts).Error(0)
}

func (m *stepsMock) DeleteBooking(ctx context.Context, id uint64) error {
	return m.Called(ctx, id).Error(0)
}

func TestCompensatingWritesBoth(t *testing.T) {
	steps := &stepsMock{}
	steps.On("InsertBooking", mock.Anything, mock.Anything).Return(nil)
	steps.On("InsertOptions", mock.Anything, uint64(42), mock.Anything).Return(nil)

	opts := []model.BookingOption{{OptionID: 1}, {OptionID: 2}}
	b := &model.Booking{}
	require.NoError(t, NewCompensating(steps, nil).CreateBooking(context.Background(), b, opts))

	assert.Equal(t, uint64(42), b.ID)
	assert.Equal(t, uint64(42), opts[0].BookingID)
	assert.Equal(t, uint64(42), opts[1].BookingID)
	steps.AssertNotCalled(t, "DeleteBooking", mock.Anything, mock.Anything)
}

func TestCompensatingSkipsEmptyOptions(t *testing.T) {
	steps := &stepsMock{}
	steps.On("InsertBooking", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, NewCompensating(steps, nil).CreateBooking(context.Background(), &model.Booking{}, nil))
	steps.AssertNotCalled(t, "InsertOptions", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompensatingDeletesOnOptionFailure(t *testing.T) {
	boom := errors.New("options insert failed")
	steps := &stepsMock{}
	steps.On("InsertBooking", mock.Anything, mock.Anything).Return(nil)
	steps.On("InsertOptions", mock.Anything, uint64(42), mock.Anything).Return(boom)
	steps.On("DeleteBooking", mock.Anything, uint64(42)).Return(nil)

	b := &model.Booking{}
	err := NewCompensating(steps, nil).CreateBooking(context.Background(), b, []model.BookingOption{{OptionID: 1}})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, b.ID)
	steps.AssertCalled(t, "DeleteBooking", mock.Anything, uint64(42))

	var partial *PartialBookingError
	assert.False(t, errors.As(err, &partial))
}

func TestCompensatingReportsOrphan(t *testing.T) {
	boom := errors.New("options insert failed")
	steps := &stepsMock{}
	steps.On("InsertBooking", mock.Anything, mock.Anything).Return(nil)
	steps.On("InsertOptions", mock.Anything, uint64(42), mock.Anything).Return(boom)
	steps.On("DeleteBooking", mock.Anything, uint64(42)).Return(errors.New("connection lost"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewCompensating(steps, nil).CreateBooking(ctx, &model.Booking{}, []model.BookingOption{{OptionID: 1}})

	var partial *PartialBookingError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, uint64(42), partial.BookingID)
	assert.ErrorIs(t, err, boom)
}

func TestCompensatingBookingInsertFailure(t *testing.T) {
	boom := errors.New("duplicate")
	steps := &stepsMock{}
	steps.On("InsertBooking", mock.Anything, mock.Anything).Return(boom)

	err := NewCompensating(steps, nil).CreateBooking(context.Background(), &model.Booking{}, []model.BookingOption{{OptionID: 1}})
	require.ErrorIs(t, err, boom)
	steps.AssertNotCalled(t, "InsertOptions", mock.Anything, mock.Anything, mock.Anything)
}
