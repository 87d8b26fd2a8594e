package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "GRIDWALK_CONFIG"

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Movement   MovementConfig   `toml:"movement"`
	Level      LevelConfig      `toml:"level"`
	Scripts    ScriptsConfig    `toml:"scripts"`
	Visualizer VisualizerConfig `toml:"visualizer"`
	Logging    LoggingConfig    `toml:"logging"`
}

type SimulationConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
}

// MovementConfig holds agent defaults. Level files may override speed and
// budget per agent.
type MovementConfig struct {
	Speed          float32 `toml:"speed"`           // world units per second
	ArriveEpsilon  float32 `toml:"arrive_epsilon"`  // snap distance in world units
	MovementBudget int     `toml:"movement_budget"` // -1 = unlimited
}

type LevelConfig struct {
	Path string `toml:"path"`
}

type ScriptsConfig struct {
	Dir string `toml:"dir"`
}

type VisualizerConfig struct {
	BindAddress string `toml:"bind_address"` // empty disables the websocket feed
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func (c *Config) validate() error {
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("simulation.tick_rate must be positive, got %s", c.Simulation.TickRate)
	}
	if c.Movement.Speed <= 0 {
		return fmt.Errorf("movement.speed must be positive, got %v", c.Movement.Speed)
	}
	if c.Movement.ArriveEpsilon <= 0 {
		return fmt.Errorf("movement.arrive_epsilon must be positive, got %v", c.Movement.ArriveEpsilon)
	}
	if c.Movement.MovementBudget < -1 {
		return fmt.Errorf("movement.movement_budget must be -1 or more, got %d", c.Movement.MovementBudget)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate: 50 * time.Millisecond,
		},
		Movement: MovementConfig{
			Speed:          4,
			ArriveEpsilon:  0.1,
			MovementBudget: -1,
		},
		Level: LevelConfig{
			Path: "data/levels/demo.yaml",
		},
		Scripts: ScriptsConfig{
			Dir: "scripts",
		},
		Visualizer: VisualizerConfig{
			BindAddress: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
