//go:build gl

package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenGLBackendTuning(t *testing.T) {
	b := NewOpenGLBackend(16, "shaders/particle_step.comp", 128, 50)
	assert.Equal(t, 128, b.workGroupSize)
	assert.Equal(t, 50, b.maxPolls)
}

func TestOpenGLBackendTuningDefaults(t *testing.T) {
	b := NewOpenGLBackend(16, "shaders/particle_step.comp", 0, 0)
	assert.Equal(t, defaultWorkGroupSize, b.workGroupSize)
	assert.Equal(t, defaultMaxPolls, b.maxPolls)
}
