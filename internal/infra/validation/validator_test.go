package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID    string   `validate:"required"`
	Title string   `validate:"max=5"`
	Tags  []string `validate:"omitempty,max=2"`
}

func TestValidate(t *testing.T) {
	v := New()
	ctx := context.Background()

	require.NoError(t, v.Validate(ctx, sample{ID: "x", Title: "short"}))

	err := v.Validate(ctx, sample{Title: "too long"})
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "ID is required")
	assert.Contains(t, err.Error(), "Title must be at most 5")

	err = v.Validate(ctx, &sample{ID: "x", Tags: []string{"a", "b", "c"}})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidateIgnoresNonStructs(t *testing.T) {
	assert.NoError(t, New().Validate(context.Background(), "plain"))
}
