// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string
	Env         string
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Exchange describes connectivity to the simulated venue's REST API.
type Exchange struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
	TimeoutMs      int    `yaml:"timeout_ms"`
}

// Session bounds one trading run and parameterizes the estimator decay.
type Session struct {
	LengthTicks   int     `yaml:"length_ticks"`
	CutoverTick   int     `yaml:"cutover_tick"`
	DecayConstant float64 `yaml:"decay_constant"`
}

// Trading groups order sizing and pricing knobs shared by the strategies.
type Trading struct {
	OrderSize    int     `yaml:"order_size"`
	MaxOrderSize int     `yaml:"max_order_size"`
	MaxPosition  int     `yaml:"max_position"`
	CostOffset   float64 `yaml:"cost_offset"`
}

// News configures the fair-value strategy: which component symbols the
// headline feed discloses values for, and the composite built from them.
type News struct {
	Symbols   []string `yaml:"symbols"`
	Composite string   `yaml:"composite"`
}

// Maker configures the inventory market-making strategy.
type Maker struct {
	Symbol       string  `yaml:"symbol"`
	Alpha        float64 `yaml:"alpha"`
	WindowSize   int     `yaml:"window_size"`
	SpreadFloor  float64 `yaml:"spread_floor"`
	HistoryLimit int     `yaml:"history_limit"`
}

// Latency configures the dual-listing arbitrage strategy and its active window.
type Latency struct {
	Primary   string `yaml:"primary"`
	Alternate string `yaml:"alternate"`
	MinTick   int    `yaml:"min_tick"`
	MaxTick   int    `yaml:"max_tick"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Exchange Exchange `yaml:"exchange"`
	Session  Session  `yaml:"session"`
	Trading  Trading  `yaml:"trading"`
	News     News     `yaml:"news"`
	Maker    Maker    `yaml:"maker"`
	Latency  Latency  `yaml:"latency"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
