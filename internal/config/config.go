package config

import (
	"flag"
	"fmt"

	"github.com/hnrck/gorle/internal/rle"
)

type Config struct {
	// Mode selects the cmd/gorle subcommand: "demo", "send", or "recv".
	Mode       string
	ListenAddr string // e.g. ":8282"
	LogLevel   string // "info", "debug", etc.

	// BurstCapacity bounds every PPDU the Fragmentation Engine builds,
	// mirroring the burst size a return-link scheduler would hand it.
	BurstCapacity int

	ImplicitProtoType  uint16
	UseAlpduCRC        bool
	UseCompressedPType bool
	UsePTypeOmission   bool
}

const (
	DefaultMode               = "demo"
	DefaultListenAddr         = ":8282"
	DefaultLogLevel           = "info"
	DefaultBurstCapacity      = 64
	DefaultImplicitProtoType  = uint16(0x0800) // IPv4
	DefaultUseAlpduCRC        = true
	DefaultUseCompressedPType = true
	DefaultUsePTypeOmission   = true
)

// Load reads config from CLI flags, falling back to the package
// defaults for anything not given.
func Load() (*Config, error) {
	cfg := &Config{
		Mode:               DefaultMode,
		ListenAddr:         DefaultListenAddr,
		LogLevel:           DefaultLogLevel,
		BurstCapacity:      DefaultBurstCapacity,
		ImplicitProtoType:  DefaultImplicitProtoType,
		UseAlpduCRC:        DefaultUseAlpduCRC,
		UseCompressedPType: DefaultUseCompressedPType,
		UsePTypeOmission:   DefaultUsePTypeOmission,
	}

	mode := flag.String("mode", cfg.Mode, "Run mode: demo, send, or recv")
	listen := flag.String("listen", cfg.ListenAddr, "Address to listen on (e.g. :8282)")
	loglevel := flag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	burst := flag.Int("burst-capacity", cfg.BurstCapacity, "Maximum PPDU size handed to the fragmentation engine, in bytes")
	implicit := flag.Uint("implicit-ptype", uint(cfg.ImplicitProtoType), "Implicit protocol type assumed when the label permits omission")
	useCRC := flag.Bool("alpdu-crc", cfg.UseAlpduCRC, "Use a CRC-32 ALPDU trailer instead of a sequence number")
	useCompressed := flag.Bool("compressed-ptype", cfg.UseCompressedPType, "Use the one-octet compressed protocol-type encoding where possible")
	useOmission := flag.Bool("ptype-omission", cfg.UsePTypeOmission, "Omit the protocol-type header when it matches the implicit default")

	flag.Parse()

	if *burst < 3 {
		return nil, fmt.Errorf("config: burst-capacity %d is too small to hold any PPDU header", *burst)
	}
	switch *mode {
	case "demo", "send", "recv":
	default:
		return nil, fmt.Errorf("config: unknown mode %q, want demo, send, or recv", *mode)
	}

	cfg.Mode = *mode
	cfg.ListenAddr = *listen
	cfg.LogLevel = *loglevel
	cfg.BurstCapacity = *burst
	cfg.ImplicitProtoType = uint16(*implicit)
	cfg.UseAlpduCRC = *useCRC
	cfg.UseCompressedPType = *useCompressed
	cfg.UsePTypeOmission = *useOmission

	return cfg, nil
}

// RLEConfig adapts Config's flat fields into the rle package's Config
// and validates it the way rle.NewTransmitter/rle.NewReceiver would.
func (c *Config) RLEConfig() (rle.Config, error) {
	conf := rle.Config{
		ImplicitProtoType:  rle.ProtocolType(c.ImplicitProtoType),
		UseAlpduCRC:        c.UseAlpduCRC,
		UseCompressedPType: c.UseCompressedPType,
		UsePTypeOmission:   c.UsePTypeOmission,
	}
	if err := conf.Validate(); err != nil {
		return rle.Config{}, err
	}
	return conf, nil
}
