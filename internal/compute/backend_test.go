//go:build !gl

package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutoSelectFallsBackToCPU(t *testing.T) {
	b := AutoSelectBackend(1024, "shaders/particle_step.comp", 0, 0)
	assert.Equal(t, "cpu", b.Name())
	assert.True(t, b.Available())
}

func TestOpenGLStubUnavailable(t *testing.T) {
	b := NewOpenGLBackend(16, "shaders/particle_step.comp", 0, 0)
	assert.False(t, b.Available())

	_, err := b.Dispatch(nil, Uniforms{})
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}
