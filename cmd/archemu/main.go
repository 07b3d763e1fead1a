// archemu boots MEMC, IOC, VIDC, and the keyboard controller from a
// TOML configuration and optional ROM images, resets the machine,
// logs that it is ready and exits: the instruction-execution pipeline
// that would drive it is out of scope for this module.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/lookbusy1344/archemu/addrmap"
	"github.com/lookbusy1344/archemu/config"
	"github.com/lookbusy1344/archemu/keyboard"
	"github.com/lookbusy1344/archemu/memc"
	"github.com/lookbusy1344/archemu/system"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		configPath  = flag.String("config", "", "Path to a TOML configuration file (default: built-in defaults)")
		lowRomPath  = flag.String("low-rom", "", "Path to the low ROM image")
		highRomPath = flag.String("high-rom", "", "Path to the high ROM image")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("archemu %s (%s)\n", Version, Commit)
		os.Exit(0)
	}

	logger := log.New(os.Stderr, "archemu: ", log.LstdFlags)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatalf("loading configuration: %v", err)
	}

	hw, err := buildHardware(cfg, logger)
	if err != nil {
		logger.Fatalf("building hardware: %v", err)
	}

	if *lowRomPath != "" {
		if err := loadRom(*lowRomPath, hw.SetLowRom); err != nil {
			logger.Fatalf("loading low ROM: %v", err)
		}
	}

	if *highRomPath != "" {
		if err := loadRom(*highRomPath, hw.SetHighRom); err != nil {
			logger.Fatalf("loading high ROM: %v", err)
		}
	}

	hw.Reset()

	logger.Printf("machine ready: %d bytes RAM, %d MHz CPU", cfg.Memory.RAMSizeBytes, cfg.Clock.CPUFrequencyMHz)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return config.Load(f)
}

// buildHardware wires system.Context, the read/write address maps,
// MEMC (which owns IOC and VIDC), and the keyboard controller into one
// running machine. The keyboard controller is constructed and
// connected here rather than owned by memc.Hardware, since it has no
// fixed place in the guest address space of its own: it only ever
// talks to IOC's KART RX/TX path.
func buildHardware(cfg *config.Config, logger *log.Logger) (*memc.Hardware, error) {
	sys := system.NewContext(cfg.Clock.CPUFrequencyMHz*1_000_000, nil)

	hw, err := memc.New(sys, cfg.Memory.RAMSizeBytes, nil, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("constructing MEMC: %w", err)
	}

	kbd := keyboard.New()

	var readMap, writeMap addrmap.AddressMap
	cc := addrmap.NewConnectionContext(sys, &readMap, &writeMap)

	// The keyboard controller must be registered before hw.Connect runs,
	// since MEMC's Connect resolves IOC, and IOC.Connect in turn looks
	// up the keyboard controller by name to wire the KART TX path.
	cc.RegisterDevice(kbd)
	hw.Connect(cc)
	kbd.Connect(cc)

	return hw, nil
}

func loadRom(path string, set func([]byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	return set(data)
}
