//go:build gl

package compute

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-gl/gl/v4.3-core/gl"

	"github.com/san-kum/horizon/internal/particles"
)

const (
	// defaultWorkGroupSize matches local_size_x in the stock compute shader.
	defaultWorkGroupSize = 64

	// defaultMaxPolls bounds the fence wait; with the per-poll timeout this
	// gives the device roughly one second before the dispatch is declared
	// dead.
	defaultMaxPolls = 500
)

var pollTimeout = uint64((2 * time.Millisecond).Nanoseconds())

// OpenGLBackend advances particles in a compute shader over a shader storage
// buffer. The particle layout in device memory is the packed Record layout.
// A usable GL context must be current on the calling thread.
type OpenGLBackend struct {
	program  uint32
	ssbo     uint32
	capacity int

	shaderPath    string
	workGroupSize int
	maxPolls      int

	initialized bool
	initTried   bool
	initErr     error
}

// NewOpenGLBackend configures a device backend. workGroupSize must match
// local_size_x in the shader at shaderPath; zero or negative tuning values
// take the defaults.
func NewOpenGLBackend(capacity int, shaderPath string, workGroupSize, maxPolls int) *OpenGLBackend {
	if workGroupSize <= 0 {
		workGroupSize = defaultWorkGroupSize
	}
	if maxPolls <= 0 {
		maxPolls = defaultMaxPolls
	}
	return &OpenGLBackend{
		capacity:      capacity,
		shaderPath:    shaderPath,
		workGroupSize: workGroupSize,
		maxPolls:      maxPolls,
	}
}

func (b *OpenGLBackend) Name() string { return "opengl" }

func (b *OpenGLBackend) Available() bool {
	return b.ensureInit() == nil
}

func (b *OpenGLBackend) Cleanup() {
	if !b.initialized {
		return
	}
	gl.DeleteBuffers(1, &b.ssbo)
	gl.DeleteProgram(b.program)
	b.initialized = false
	b.initTried = false
}

func (b *OpenGLBackend) ensureInit() error {
	if b.initialized {
		return nil
	}
	if b.initTried {
		return b.initErr
	}
	b.initTried = true
	b.initErr = b.init()
	return b.initErr
}

func (b *OpenGLBackend) init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("init opengl: %v", err)
	}

	program, err := createComputeProgram(b.shaderPath)
	if err != nil {
		return err
	}
	b.program = program

	size := b.capacity * particles.RecordStride
	gl.GenBuffers(1, &b.ssbo)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.ssbo)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, nil, gl.DYNAMIC_COPY)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 0, b.ssbo)

	b.initialized = true
	return nil
}

func (b *OpenGLBackend) Dispatch(records []particles.Record, u Uniforms) ([]particles.Record, error) {
	if err := b.ensureInit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if len(records) > b.capacity {
		return nil, fmt.Errorf("%w: %d records exceed device capacity %d",
			ErrDeviceFault, len(records), b.capacity)
	}
	if len(records) == 0 {
		return []particles.Record{}, nil
	}

	packed := particles.PackRecords(records)

	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.ssbo)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, len(packed), gl.Ptr(packed))

	gl.UseProgram(b.program)
	b.setUniforms(len(records), u)

	groups := (len(records) + b.workGroupSize - 1) / b.workGroupSize
	gl.DispatchCompute(uint32(groups), 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT | gl.BUFFER_UPDATE_BARRIER_BIT)

	if err := b.waitForCompletion(); err != nil {
		return nil, err
	}

	readback := make([]byte, len(packed))
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, len(readback), gl.Ptr(readback))

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		return nil, fmt.Errorf("%w: gl error 0x%04x", ErrDeviceFault, glErr)
	}

	return particles.UnpackRecords(readback), nil
}

// waitForCompletion polls a fence with a bounded budget. An unbounded wait
// would hang the frame loop on a wedged driver.
func (b *OpenGLBackend) waitForCompletion() error {
	fence := gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
	if fence == 0 {
		return fmt.Errorf("%w: fence creation failed", ErrDeviceFault)
	}
	defer gl.DeleteSync(fence)

	for i := 0; i < b.maxPolls; i++ {
		switch gl.ClientWaitSync(fence, gl.SYNC_FLUSH_COMMANDS_BIT, pollTimeout) {
		case gl.ALREADY_SIGNALED, gl.CONDITION_SATISFIED:
			return nil
		case gl.WAIT_FAILED:
			return fmt.Errorf("%w: fence wait failed", ErrDeviceFault)
		}
	}
	return ErrDeviceTimeout
}

func (b *OpenGLBackend) setUniforms(count int, u Uniforms) {
	bh := u.BlackHolePosition
	rs := (2.0 * u.G * u.BlackHoleMass) / (u.C * u.C)

	uniform1f(b.program, "u_dt", float32(u.Dt))
	uniform1f(b.program, "u_bh_mass", float32(u.BlackHoleMass))
	uniform1f(b.program, "u_g", float32(u.G))
	uniform1f(b.program, "u_c", float32(u.C))
	uniform1f(b.program, "u_rs", float32(rs))
	uniform1f(b.program, "u_min_distance", float32(u.MinDistance))
	uniform1f(b.program, "u_bounds_radius", float32(u.BoundsRadius))
	uniform1f(b.program, "u_max_velocity_fraction", float32(u.MaxVelocityFraction))

	loc := gl.GetUniformLocation(b.program, gl.Str("u_bh_position\x00"))
	gl.Uniform3f(loc, float32(bh.X), float32(bh.Y), float32(bh.Z))

	locN := gl.GetUniformLocation(b.program, gl.Str("u_num_particles\x00"))
	gl.Uniform1i(locN, int32(count))
}

func uniform1f(program uint32, name string, v float32) {
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	gl.Uniform1f(loc, v)
}

func createComputeProgram(path string) (uint32, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content := string(source) + "\x00"

	shader := gl.CreateShader(gl.COMPUTE_SHADER)
	csources, free := gl.Strs(content)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return 0, fmt.Errorf("failed to compile compute shader: %v", log)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, shader)
	gl.LinkProgram(program)

	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		return 0, fmt.Errorf("failed to link compute program")
	}

	gl.DeleteShader(shader)
	return program, nil
}
