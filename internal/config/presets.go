package config

// Presets trade particle count and timestep against fidelity. All of them
// use the default solar-mass black hole.
var Presets = map[string]*Config{
	"low": presetWith(func(c *Config) {
		c.Physics.MaxParticles = 2000
		c.Physics.TimeStep = 0.033
		c.Run.SpawnCount = 500
	}),
	"medium": presetWith(func(c *Config) {
		c.Physics.MaxParticles = 10000
		c.Physics.TimeStep = 0.016
		c.Run.SpawnCount = 2000
	}),
	"high": presetWith(func(c *Config) {
		c.Physics.MaxParticles = 50000
		c.Physics.TimeStep = 0.008
		c.Run.SpawnCount = 10000
	}),
}

func presetWith(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

// GetPreset returns a private copy of the named preset, so callers can
// layer overrides on it without corrupting the shared table.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
