package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "url", Message: "url is required"}
	assert.Equal(t, "validation error on field 'url': url is required", err.Error())
}

func TestValidationError_IsValidationFailed(t *testing.T) {
	wrapped := fmt.Errorf("create source: %w", &ValidationError{Field: "name", Message: "name is required"})

	assert.True(t, errors.Is(wrapped, ErrValidationFailed))
	assert.False(t, errors.Is(wrapped, ErrNotFound))

	var ve *ValidationError
	assert.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, "name", ve.Field)
}
