package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotFound, KindOf(New(NotFound, "gone")))
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
	assert.Equal(t, Internal, KindOf(nil))
}

func TestKindOfWrappedChain(t *testing.T) {
	inner := New(InsufficientStock, "insufficient stock")
	outer := fmt.Errorf("checkout failed: %w", inner)
	assert.Equal(t, InsufficientStock, KindOf(outer))
	assert.True(t, IsKind(outer, InsufficientStock))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "cart is empty", MessageOf(New(Validation, "cart is empty")))
	assert.Equal(t, "internal server error", MessageOf(errors.New("pq: connection refused")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Internal, "something failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "something failed")
	assert.Contains(t, err.Error(), "boom")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "scheduling_rejected", SchedulingRejected.String())
	assert.Equal(t, "invalid_transition", InvalidTransition.String())
	assert.Equal(t, "internal", Internal.String())
	assert.Equal(t, "internal", Kind(99).String())
}
