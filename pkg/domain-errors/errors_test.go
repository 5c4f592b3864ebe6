package derrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches the direct code", func(t *testing.T) {
		err := New(CodeConflict, "already claimed")
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches a code buried in the chain", func(t *testing.T) {
		inner := New(CodeConflict, "already claimed")
		outer := Wrap(fmt.Errorf("store: %w", inner), CodeInternal, "claim failed")
		assert.True(t, HasCode(outer, CodeConflict))
		assert.True(t, HasCode(outer, CodeInternal))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("preserves the cause for errors.Is", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeInternal, "store failure")
		assert.ErrorIs(t, err, cause)
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeForbidden, CodeOf(New(CodeForbidden, "not the plan owner")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "plan not found", MessageOf(New(CodeNotFound, "plan not found")))
	assert.Empty(t, MessageOf(errors.New("boom")))
}
