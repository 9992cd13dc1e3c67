package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmissionError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := NewEmissionError("write", "models/post.go", "write output file", cause)

		assert.Contains(t, err.Error(), "via: emission error")
		assert.Contains(t, err.Error(), "in write")
		assert.Contains(t, err.Error(), "path: models/post.go")
		assert.Contains(t, err.Error(), "write output file")
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("Error message with op only", func(t *testing.T) {
		err := &EmissionError{Op: "commit", Message: "swap failed"}
		assert.Contains(t, err.Error(), "in commit")
		assert.NotContains(t, err.Error(), "path:")
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewEmissionError("stage", "", "", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("Is matches ErrEmission", func(t *testing.T) {
		err := NewEmissionError("write", "a.go", "failed", nil)
		assert.True(t, err.Is(ErrEmission))
		assert.True(t, errors.Is(err, ErrEmission))
	})

	t.Run("IsEmissionError helper", func(t *testing.T) {
		err := NewEmissionError("write", "a.go", "failed", nil)
		assert.True(t, IsEmissionError(err))
		assert.False(t, IsEmissionError(errors.New("other")))
	})
}

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("Workers", 0, "worker count must be positive")

		assert.Contains(t, err.Error(), "via: config error")
		assert.Contains(t, err.Error(), "Workers")
		assert.Contains(t, err.Error(), "0")
		assert.Contains(t, err.Error(), "must be positive")
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("Module", nil, "cannot be empty")

		assert.Contains(t, err.Error(), "Module")
		assert.Contains(t, err.Error(), "cannot be empty")
		assert.NotContains(t, err.Error(), "value:")
	})

	t.Run("Is matches ErrMissingConfig", func(t *testing.T) {
		err := NewConfigError("Module", nil, "missing")
		assert.True(t, err.Is(ErrMissingConfig))
	})

	t.Run("IsConfigError helper", func(t *testing.T) {
		err := NewConfigError("Module", nil, "missing")
		assert.True(t, IsConfigError(err))
		assert.False(t, IsConfigError(errors.New("other")))
	})
}
