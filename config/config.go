// Package config holds the tunable parameters for the environment, the
// agent and the training loop, with YAML overrides on top of defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GameConfig parameterizes the environment.
type GameConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Seed   uint64 `yaml:"seed"` // 0 means seed from the clock
}

// AgentConfig holds the learning hyperparameters.
type AgentConfig struct {
	LearningRate   float64 `yaml:"learning_rate"`
	Gamma          float64 `yaml:"gamma"`
	Epsilon        float64 `yaml:"epsilon"`
	EpsilonMin     float64 `yaml:"epsilon_min"`
	EpsilonDecay   float64 `yaml:"epsilon_decay"`
	Tau            float64 `yaml:"tau"`
	HiddenSize     int     `yaml:"hidden_size"`
	BatchSize      int     `yaml:"batch_size"`
	ReplayCapacity int     `yaml:"replay_capacity"`
	UpdateEvery    int     `yaml:"update_every"`
	SyncEvery      int     `yaml:"sync_every"`
}

// TrainConfig drives the outer training loop.
type TrainConfig struct {
	Episodes        int    `yaml:"episodes"`
	LogEvery        int    `yaml:"log_every"`
	CheckpointEvery int    `yaml:"checkpoint_every"`
	CheckpointDir   string `yaml:"checkpoint_dir"`
	PlotDir         string `yaml:"plot_dir"`
	Resume          string `yaml:"resume"` // checkpoint to continue from
	Render          bool   `yaml:"render"`
	TickMillis      int    `yaml:"tick_millis"`
}

// Config is the full configuration tree.
type Config struct {
	Game  GameConfig  `yaml:"game"`
	Agent AgentConfig `yaml:"agent"`
	Train TrainConfig `yaml:"train"`
}

// Default returns the configuration the system was tuned with.
func Default() Config {
	return Config{
		Game: GameConfig{
			Width:  20,
			Height: 20,
		},
		Agent: AgentConfig{
			LearningRate:   0.001,
			Gamma:          0.99,
			Epsilon:        1.0,
			EpsilonMin:     0.01,
			EpsilonDecay:   0.995,
			Tau:            0.005,
			HiddenSize:     256,
			BatchSize:      64,
			ReplayCapacity: 50000,
			UpdateEvery:    4,
			SyncEvery:      100,
		},
		Train: TrainConfig{
			Episodes:        2000,
			LogEvery:        20,
			CheckpointEvery: 200,
			CheckpointDir:   "models",
			PlotDir:         "plots",
			TickMillis:      25,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Game.Width < 5 || c.Game.Height < 5 {
		return fmt.Errorf("grid %dx%d too small, need at least 5x5", c.Game.Width, c.Game.Height)
	}
	if c.Agent.BatchSize <= 0 || c.Agent.ReplayCapacity < c.Agent.BatchSize {
		return fmt.Errorf("replay capacity %d must cover batch size %d", c.Agent.ReplayCapacity, c.Agent.BatchSize)
	}
	if c.Agent.EpsilonMin > c.Agent.Epsilon {
		return fmt.Errorf("epsilon_min %v exceeds epsilon %v", c.Agent.EpsilonMin, c.Agent.Epsilon)
	}
	if c.Agent.UpdateEvery <= 0 || c.Agent.SyncEvery <= 0 {
		return fmt.Errorf("update_every and sync_every must be positive")
	}
	return nil
}
