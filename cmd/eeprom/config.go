package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/urfave/cli"

	"github.com/ardnew/softeeprom/eeprom"
	"github.com/ardnew/softeeprom/hal"
	"github.com/ardnew/softeeprom/pkg"
)

// Configuration keys. The TOML file uses the same dotted names as tables.
const (
	keyBackend      = "bus.backend"
	keyBusName      = "bus.name"
	keyBusSpeed     = "bus.speed"
	keyFifoDir      = "bus.fifo_dir"
	keyAddress      = "device.address"
	keySize         = "device.size"
	keyProbe        = "device.probe"
	keyPollAttempts = "write.poll_attempts"
	keyPollInterval = "write.poll_interval"
	keyLogLevel     = "log.level"
	keyLogFormat    = "log.format"
)

// flagKeys maps global flags onto configuration keys. A flag given on the
// command line overrides the file.
var flagKeys = map[string]string{
	"backend":       keyBackend,
	"bus":           keyBusName,
	"speed":         keyBusSpeed,
	"fifo-dir":      keyFifoDir,
	"addr":          keyAddress,
	"size":          keySize,
	"probe":         keyProbe,
	"poll-attempts": keyPollAttempts,
	"poll-interval": keyPollInterval,
	"log-level":     keyLogLevel,
	"log-format":    keyLogFormat,
}

// settings is the resolved configuration of one invocation.
type settings struct {
	Backend   string
	BusName   string
	BusSpeed  int64
	FifoDir   string
	Address   hal.Address
	Driver    eeprom.Config
	LogLevel  slog.Level
	LogFormat pkg.LogFormat
}

// newConfig returns a viper instance holding the defaults.
func newConfig() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyBackend, "periph")
	v.SetDefault(keyBusName, "")
	v.SetDefault(keyBusSpeed, 0)
	v.SetDefault(keyFifoDir, "/tmp/softeeprom")
	v.SetDefault(keyAddress, fmt.Sprintf("%#02x", uint8(eeprom.DefaultAddress)))
	v.SetDefault(keySize, eeprom.AddressSpace)
	v.SetDefault(keyProbe, hal.ProbeRead.String())
	v.SetDefault(keyPollAttempts, eeprom.DefaultPollAttempts)
	v.SetDefault(keyPollInterval, eeprom.DefaultPollInterval.String())
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyLogFormat, "text")
	return v
}

// loadSettings merges defaults, the optional config file, and any global
// flags set on the command line.
func loadSettings(c *cli.Context) (settings, error) {
	v := newConfig()

	if path := c.GlobalString("config"); path != "" {
		v.SetConfigType("toml")
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
		pkg.LogDebug(pkg.ComponentCLI, "config loaded", "file", path)
	}

	for flag, key := range flagKeys {
		if c.GlobalIsSet(flag) {
			v.Set(key, c.GlobalString(flag))
		}
	}
	if c.GlobalBool("verbose") {
		v.Set(keyLogLevel, "debug")
	}
	if c.GlobalBool("json") {
		v.Set(keyLogFormat, "json")
	}

	return resolve(v)
}

// resolve validates and converts the merged configuration.
func resolve(v *viper.Viper) (settings, error) {
	s := settings{
		Backend: strings.ToLower(v.GetString(keyBackend)),
		BusName: v.GetString(keyBusName),
		FifoDir: v.GetString(keyFifoDir),
	}

	switch s.Backend {
	case backendPeriph, backendLinux, backendFifo, backendSim:
	default:
		return s, fmt.Errorf("%w: backend %q", pkg.ErrInvalidParameter, s.Backend)
	}

	speed, err := strconv.ParseInt(v.GetString(keyBusSpeed), 0, 64)
	if err != nil || speed < 0 {
		return s, fmt.Errorf("%w: bus speed %q", pkg.ErrInvalidParameter, v.GetString(keyBusSpeed))
	}
	s.BusSpeed = speed

	addr, err := parseAddress(v.GetString(keyAddress))
	if err != nil {
		return s, err
	}
	s.Address = addr

	size, err := strconv.ParseInt(v.GetString(keySize), 0, 64)
	if err != nil || size <= 0 || size > eeprom.AddressSpace {
		return s, fmt.Errorf("%w: device size %q", pkg.ErrInvalidParameter, v.GetString(keySize))
	}

	probe, err := hal.ParseProbeMode(v.GetString(keyProbe))
	if err != nil {
		return s, err
	}

	attempts, err := strconv.Atoi(v.GetString(keyPollAttempts))
	if err != nil || attempts <= 0 {
		return s, fmt.Errorf("%w: poll attempts %q", pkg.ErrInvalidParameter, v.GetString(keyPollAttempts))
	}

	interval, err := time.ParseDuration(v.GetString(keyPollInterval))
	if err != nil || interval <= 0 {
		return s, fmt.Errorf("%w: poll interval %q", pkg.ErrInvalidParameter, v.GetString(keyPollInterval))
	}

	s.Driver = eeprom.Config{
		PollAttempts: attempts,
		PollInterval: interval,
		Size:         int(size),
		Probe:        probe,
	}

	if s.LogLevel, err = pkg.ParseLogLevel(v.GetString(keyLogLevel)); err != nil {
		return s, err
	}
	if s.LogFormat, err = pkg.ParseLogFormat(v.GetString(keyLogFormat)); err != nil {
		return s, err
	}
	return s, nil
}

// parseAddress parses a 7-bit slave address in any Go integer syntax.
func parseAddress(s string) (hal.Address, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil || !hal.Address(n).Valid() {
		return 0, fmt.Errorf("%w: %q", pkg.ErrInvalidAddress, s)
	}
	return hal.Address(n), nil
}

// parseMemAddress parses a 16-bit memory address.
func parseMemAddress(s string) (uint16, error) {
	n, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: memory address %q", pkg.ErrInvalidParameter, s)
	}
	return uint16(n), nil
}

// parseLength parses a transfer length between 0 and the address space.
func parseLength(s string) (int, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil || n > eeprom.AddressSpace {
		return 0, fmt.Errorf("%w: length %q", pkg.ErrInvalidParameter, s)
	}
	return int(n), nil
}

// parseByte parses a data byte in any Go integer syntax.
func parseByte(s string) (byte, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: byte value %q", pkg.ErrInvalidParameter, s)
	}
	return byte(n), nil
}
