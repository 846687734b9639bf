package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowHappyPath(t *testing.T) {
	f := NewFlow()
	assert.Equal(t, CollectingDetails, f.State())

	require.NoError(t, f.Update(validDraft()))
	require.NoError(t, f.Continue())
	assert.Equal(t, CollectingConfirmation, f.State())

	calls := 0
	var submitted Draft
	err := f.Submit(context.Background(), func(_ context.Context, d Draft) error {
		calls++
		submitted = d
		assert.Equal(t, Submitting, f.State())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Jane O'Neil-Smith", submitted.CustomerName)
	assert.Equal(t, Submitted, f.State())
	assert.Equal(t, Draft{}, f.Draft(), "draft is cleared on success")
}

func TestFlowValidationKeepsDetails(t *testing.T) {
	f := NewFlow()
	d := validDraft()
	d.Hours = 0
	require.NoError(t, f.Update(d))

	var verr *ValidationError
	require.ErrorAs(t, f.Continue(), &verr)
	assert.Equal(t, CollectingDetails, f.State())
}

func TestFlowBackPreservesDraft(t *testing.T) {
	f := NewFlow()
	require.NoError(t, f.Update(validDraft()))
	require.NoError(t, f.Continue())
	require.NoError(t, f.Back())

	assert.Equal(t, CollectingDetails, f.State())
	assert.Equal(t, validDraft().Normalize(), f.Draft())
}

func TestFlowFailure(t *testing.T) {
	f := NewFlow()
	require.NoError(t, f.Update(validDraft()))
	require.NoError(t, f.Continue())

	boom := errors.New("insert failed")
	err := f.Submit(context.Background(), func(context.Context, Draft) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, Failed, f.State())
	assert.ErrorIs(t, f.Err(), boom)
	assert.Equal(t, validDraft().Normalize(), f.Draft(), "draft survives a failed submit")

	require.NoError(t, f.Retry())
	assert.Equal(t, CollectingConfirmation, f.State())
	assert.NoError(t, f.Err())
}

func TestFlowRejectsOutOfOrderSteps(t *testing.T) {
	f := NewFlow()
	noop := func(context.Context, Draft) error { return nil }

	assert.ErrorIs(t, f.Submit(context.Background(), noop), ErrInvalidTransition)
	assert.ErrorIs(t, f.Back(), ErrInvalidTransition)
	assert.ErrorIs(t, f.Retry(), ErrInvalidTransition)

	require.NoError(t, f.Update(validDraft()))
	require.NoError(t, f.Continue())
	assert.ErrorIs(t, f.Update(validDraft()), ErrInvalidTransition)
	assert.ErrorIs(t, f.Continue(), ErrInvalidTransition)

	require.NoError(t, f.Submit(context.Background(), noop))
	assert.ErrorIs(t, f.Submit(context.Background(), noop), ErrInvalidTransition)
}
