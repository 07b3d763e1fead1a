// Package config describes the tunable parameters of an emulated
// Archimedes-class system: RAM tier, ROM sizes, clock speed, and the
// trace/statistics toggles a future execution engine would consult.
package config

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// Config represents the emulator configuration.
type Config struct {
	// Memory settings
	Memory struct {
		RAMSizeBytes    uint32 `toml:"ram_size_bytes"`     // rounded up to the next supported tier
		LowROMSizeBytes uint32 `toml:"low_rom_size_bytes"` // max 4 MiB
		HiROMSizeBytes  uint32 `toml:"hi_rom_size_bytes"`  // max 8 MiB
		DefaultPageSize uint32 `toml:"default_page_size"`  // one of 4096, 8192, 16384, 32768
	} `toml:"memory"`

	// Clock settings
	Clock struct {
		CPUFrequencyMHz uint64 `toml:"cpu_frequency_mhz"`
	} `toml:"clock"`

	// Execution settings (consumed by a future execution engine, not the core)
	Execution struct {
		MaxCycles   uint64 `toml:"max_cycles"`
		EnableTrace bool   `toml:"enable_trace"`
		EnableStats bool   `toml:"enable_stats"`
	} `toml:"execution"`

	// Trace settings
	Trace struct {
		OutputFile    string `toml:"output_file"`
		IncludeTiming bool   `toml:"include_timing"`
		MaxEntries    int    `toml:"max_entries"`
	} `toml:"trace"`

	// Statistics settings
	Statistics struct {
		OutputFile string `toml:"output_file"`
		Format     string `toml:"format"` // json, csv, html
	} `toml:"statistics"`
}

// DefaultConfig returns a configuration with default values matching a
// stock Archimedes: 4 MiB RAM, 2 MiB low ROM, no high ROM, 4 KiB pages,
// an 8 MHz ARM2.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Memory.RAMSizeBytes = 4 * 1024 * 1024
	cfg.Memory.LowROMSizeBytes = 2 * 1024 * 1024
	cfg.Memory.HiROMSizeBytes = 0
	cfg.Memory.DefaultPageSize = 4096

	cfg.Clock.CPUFrequencyMHz = 8

	cfg.Execution.MaxCycles = 1000000
	cfg.Execution.EnableTrace = false
	cfg.Execution.EnableStats = false

	cfg.Trace.OutputFile = "trace.log"
	cfg.Trace.IncludeTiming = true
	cfg.Trace.MaxEntries = 100000

	cfg.Statistics.OutputFile = "stats.json"
	cfg.Statistics.Format = "json"

	return cfg
}

// Load reads a TOML configuration, starting from DefaultConfig and
// overriding whatever fields the document specifies.
func Load(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
