//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"storefront-gateway/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	cause := errors.New("redis: connection refused")
	err := errs.Mark(errs.Wrap(cause, "save cart"), errs.ErrPersistenceFailed)

	assert.True(t, errs.Is(err, errs.ErrPersistenceFailed))
	assert.True(t, errs.Is(err, cause))
	assert.Contains(t, err.Error(), "save cart")
	assert.False(t, errs.Is(err, errs.ErrCartStoreClosed))
}

func TestMark_NilErrorReturnsMark(t *testing.T) {
	assert.Equal(t, errs.ErrInsufficientStock, errs.Mark(nil, errs.ErrInsufficientStock))
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, errs.Wrap(nil, "ignored"))
	assert.NoError(t, errs.Wrapf(nil, "ignored %d", 1))
}

func TestExtractStackLines(t *testing.T) {
	lines := errs.ExtractStackLines(errs.New("boom"), 3)
	assert.Len(t, lines, 3)
	assert.Equal(t, "boom", lines[0])
	assert.Nil(t, errs.ExtractStackLines(nil, 3))
}
