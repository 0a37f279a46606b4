//go:build !gl

package compute

import (
	"fmt"

	"github.com/san-kum/horizon/internal/particles"
)

type OpenGLBackend struct{}

func NewOpenGLBackend(capacity int, shaderPath string, workGroupSize, maxPolls int) *OpenGLBackend {
	return &OpenGLBackend{}
}

func (b *OpenGLBackend) Name() string    { return "opengl (not available)" }
func (b *OpenGLBackend) Available() bool { return false }
func (b *OpenGLBackend) Cleanup()        {}

func (b *OpenGLBackend) Dispatch(records []particles.Record, u Uniforms) ([]particles.Record, error) {
	return nil, fmt.Errorf("%w: built without gl support", ErrDeviceUnavailable)
}
