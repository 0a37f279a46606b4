package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/horizon/internal/physics"
)

const (
	DefaultTimeStep            = 0.016
	DefaultMaxParticles        = 10000
	DefaultMaxVelocityFraction = 0.1
	DefaultMinDistanceFactor   = 1e-3
	DefaultBoundsRadiusFactor  = 1e4
	DefaultBlackHoleMass       = 1.989e30
	DefaultWorkGroupSize       = 64
	DefaultMaxPollAttempts     = 500
	DefaultFrames              = 1000
	DefaultSpawnCount          = 1000
	DefaultSpawnRadiusFactor   = 100.0
)

type Config struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	BlackHole BlackHoleConfig `yaml:"black_hole"`
	Compute   ComputeConfig   `yaml:"compute"`
	Run       RunConfig       `yaml:"run"`
}

type PhysicsConfig struct {
	GravitationalConstant float64 `yaml:"gravitational_constant"`
	SpeedOfLight          float64 `yaml:"speed_of_light"`
	TimeStep              float64 `yaml:"time_step"`
	MaxParticles          int     `yaml:"max_particles"`
	IntegrationMethod     string  `yaml:"integration_method"`
	MaxVelocityFraction   float64 `yaml:"max_velocity_fraction"`

	// MinDistanceFactor and BoundsRadiusFactor are multiples of the
	// Schwarzschild radius.
	MinDistanceFactor  float64 `yaml:"min_distance_factor"`
	BoundsRadiusFactor float64 `yaml:"bounds_radius_factor"`
}

type BlackHoleConfig struct {
	Mass     float64        `yaml:"mass"`
	Position PositionConfig `yaml:"position"`
}

type PositionConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type ComputeConfig struct {
	// Backend selects the execution domain: auto, cpu, or gl.
	Backend         string `yaml:"backend"`
	ShaderPath      string `yaml:"shader_path"`
	WorkGroupSize   int    `yaml:"work_group_size"`
	MaxPollAttempts int    `yaml:"max_poll_attempts"`
}

type RunConfig struct {
	Frames            int     `yaml:"frames"`
	SpawnCount        int     `yaml:"spawn_count"`
	SpawnRadiusFactor float64 `yaml:"spawn_radius_factor"`
	Seed              int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Physics: PhysicsConfig{
			GravitationalConstant: physics.DefaultG,
			SpeedOfLight:          physics.DefaultC,
			TimeStep:              DefaultTimeStep,
			MaxParticles:          DefaultMaxParticles,
			IntegrationMethod:     "rk4",
			MaxVelocityFraction:   DefaultMaxVelocityFraction,
			MinDistanceFactor:     DefaultMinDistanceFactor,
			BoundsRadiusFactor:    DefaultBoundsRadiusFactor,
		},
		BlackHole: BlackHoleConfig{
			Mass: DefaultBlackHoleMass,
		},
		Compute: ComputeConfig{
			Backend:         "auto",
			ShaderPath:      "shaders/particle_step.comp",
			WorkGroupSize:   DefaultWorkGroupSize,
			MaxPollAttempts: DefaultMaxPollAttempts,
		},
		Run: RunConfig{
			Frames:            DefaultFrames,
			SpawnCount:        DefaultSpawnCount,
			SpawnRadiusFactor: DefaultSpawnRadiusFactor,
			Seed:              42,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects out-of-range parameters. Configuration errors are the
// only fatal error class; everything past this point is contained per-frame.
func (c *Config) Validate() error {
	p := c.Physics
	if p.GravitationalConstant <= 0 {
		return fmt.Errorf("gravitational_constant must be positive, got %g", p.GravitationalConstant)
	}
	if p.SpeedOfLight <= 0 {
		return fmt.Errorf("speed_of_light must be positive, got %g", p.SpeedOfLight)
	}
	if p.TimeStep < 1e-6 || p.TimeStep > 1.0 {
		return fmt.Errorf("time_step must be in [1e-6, 1], got %g", p.TimeStep)
	}
	if p.MaxParticles <= 0 || p.MaxParticles > 1_000_000 {
		return fmt.Errorf("max_particles must be in (0, 1e6], got %d", p.MaxParticles)
	}
	switch p.IntegrationMethod {
	case "rk4", "euler", "verlet":
	default:
		return fmt.Errorf("unknown integration_method: %q", p.IntegrationMethod)
	}
	if p.MaxVelocityFraction <= 0 || p.MaxVelocityFraction >= 1 {
		return fmt.Errorf("max_velocity_fraction must be in (0, 1), got %g", p.MaxVelocityFraction)
	}
	if p.MinDistanceFactor <= 0 {
		return fmt.Errorf("min_distance_factor must be positive, got %g", p.MinDistanceFactor)
	}
	// Zero disables the escape-bounds check.
	if p.BoundsRadiusFactor < 0 {
		return fmt.Errorf("bounds_radius_factor must be non-negative, got %g", p.BoundsRadiusFactor)
	}

	if c.BlackHole.Mass <= 0 {
		return fmt.Errorf("black hole mass must be positive, got %g", c.BlackHole.Mass)
	}

	switch c.Compute.Backend {
	case "auto", "cpu", "gl":
	default:
		return fmt.Errorf("unknown compute backend: %q", c.Compute.Backend)
	}
	if c.Compute.MaxPollAttempts <= 0 {
		return fmt.Errorf("max_poll_attempts must be positive, got %d", c.Compute.MaxPollAttempts)
	}

	if c.Run.Frames < 0 {
		return fmt.Errorf("frames must be non-negative, got %d", c.Run.Frames)
	}
	if c.Run.SpawnCount < 0 {
		return fmt.Errorf("spawn_count must be non-negative, got %d", c.Run.SpawnCount)
	}
	if c.Run.SpawnCount > p.MaxParticles {
		return fmt.Errorf("spawn_count %d exceeds max_particles %d", c.Run.SpawnCount, p.MaxParticles)
	}
	return nil
}
