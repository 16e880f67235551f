// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"mimac-sim/internal/mac"
)

// Phase is one row of a profile: how long a frame lasts and what the
// sender draws while transmitting it.
type Phase struct {
	DurationMS float64 `yaml:"duration_ms"`
	CurrentA   float64 `yaml:"current_a"`
}

// PhaseTable describes one coil configuration.
type PhaseTable struct {
	WakeUp Phase `yaml:"wake_up"`
	Ack    Phase `yaml:"ack"`
	Data   Phase `yaml:"data"`
}

// Electrical overrides the supply and non-transmit currents.
type Electrical struct {
	SupplyVoltage   float64 `yaml:"supply_voltage"`
	IdleCurrentA    float64 `yaml:"idle_current_a"`
	SenseCurrentA   float64 `yaml:"sense_current_a"`
	ReceiveCurrentA float64 `yaml:"receive_current_a"`
}

// Timing overrides the fixed parts of the exchange.
type Timing struct {
	SenseMS        float64 `yaml:"sense_ms"`
	NoAckTimeoutMS float64 `yaml:"no_ack_timeout_ms"`
	AckGapMS       float64 `yaml:"ack_gap_ms"`
	DataGapMS      float64 `yaml:"data_gap_ms"`
}

// Packets overrides the frame sizes in bytes.
type Packets struct {
	WakeUp int `yaml:"wake_up"`
	Ack    int `yaml:"ack"`
	Data   int `yaml:"data"`
}

// SimulationConfig is the root configuration of a simulation batch. Zero or
// absent fields, including those inside a section, fall back to the
// reference scenario.
type SimulationConfig struct {
	Nodes      int                   `yaml:"nodes"`
	HorizonMS  float64               `yaml:"horizon_ms"`
	RatePerMS  float64               `yaml:"rate_per_ms"`
	Seed       int64                 `yaml:"seed"`
	TimeUnitS  float64               `yaml:"time_unit_s"`
	Electrical *Electrical           `yaml:"electrical"`
	Timing     *Timing               `yaml:"timing"`
	Packets    *Packets              `yaml:"packets"`
	Profiles   map[string]PhaseTable `yaml:"profiles"`
}

// Load loads YAML config, validates it against a CUE schema and applies
// defaults and environment overrides. An empty schema path skips the CUE step.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if _, err := cfg.Params(); err != nil {
		return nil, err
	}

	slog.Debug("loaded configuration",
		"path", configPath,
		"nodes", cfg.Nodes,
		"horizon_ms", cfg.HorizonMS,
		"rate_per_ms", cfg.RatePerMS,
		"seed", cfg.Seed,
	)
	return &cfg, nil
}

// Default returns the reference scenario as a config.
func Default() *SimulationConfig {
	cfg := &SimulationConfig{}
	cfg.applyDefaults()
	return cfg
}

func (c *SimulationConfig) applyDefaults() {
	def := mac.DefaultParams()
	if c.Nodes == 0 {
		c.Nodes = def.Nodes
	}
	if c.HorizonMS == 0 {
		c.HorizonMS = def.Horizon
	}
	if c.RatePerMS == 0 {
		c.RatePerMS = def.Rate
	}
	if c.TimeUnitS == 0 {
		c.TimeUnitS = def.TimeUnitSeconds
	}
}

// applyEnv honours MIMAC_SEED and MIMAC_RATE.
func (c *SimulationConfig) applyEnv() error {
	if v := os.Getenv("MIMAC_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MIMAC_SEED: %w", err)
		}
		c.Seed = seed
	}
	if v := os.Getenv("MIMAC_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid MIMAC_RATE: %w", err)
		}
		c.RatePerMS = rate
	}
	return nil
}

// Params converts the config into engine parameters. Profile keys may use
// canonical names or the config1..config3 aliases.
func (c *SimulationConfig) Params() (mac.Params, error) {
	p := mac.DefaultParams()
	p.Nodes = c.Nodes
	p.Horizon = c.HorizonMS
	p.Rate = c.RatePerMS
	p.TimeUnitSeconds = c.TimeUnitS
	if e := c.Electrical; e != nil {
		setIfNonZero(&p.Electrical.SupplyVoltage, e.SupplyVoltage)
		setIfNonZero(&p.Electrical.IdleCurrent, e.IdleCurrentA)
		setIfNonZero(&p.Electrical.SenseCurrent, e.SenseCurrentA)
		setIfNonZero(&p.Electrical.ReceiveCurrent, e.ReceiveCurrentA)
	}
	if t := c.Timing; t != nil {
		setIfNonZero(&p.Timing.Sense, t.SenseMS)
		setIfNonZero(&p.Timing.NoAckTimeout, t.NoAckTimeoutMS)
		setIfNonZero(&p.Timing.AckGap, t.AckGapMS)
		setIfNonZero(&p.Timing.DataGap, t.DataGapMS)
	}
	if pk := c.Packets; pk != nil {
		setIfNonZero(&p.Packets.WakeUp, pk.WakeUp)
		setIfNonZero(&p.Packets.Ack, pk.Ack)
		setIfNonZero(&p.Packets.Data, pk.Data)
	}
	for name, tbl := range c.Profiles {
		id, err := mac.ParseProfileID(name)
		if err != nil {
			return mac.Params{}, fmt.Errorf("profiles: %w", err)
		}
		p.Table[id] = mac.Profile{
			ID:     id,
			WakeUp: mac.PhaseSpec{Duration: tbl.WakeUp.DurationMS, Current: tbl.WakeUp.CurrentA},
			Ack:    mac.PhaseSpec{Duration: tbl.Ack.DurationMS, Current: tbl.Ack.CurrentA},
			Data:   mac.PhaseSpec{Duration: tbl.Data.DurationMS, Current: tbl.Data.CurrentA},
		}
	}
	if err := p.Validate(); err != nil {
		return mac.Params{}, err
	}
	return p, nil
}

// setIfNonZero overlays v on a default; zero keeps the default.
func setIfNonZero[T int | float64](dst *T, v T) {
	if v != 0 {
		*dst = v
	}
}
