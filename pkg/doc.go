// Package pkg provides shared utilities for the softeeprom driver and its
// bus backends.
//
// This package contains common functionality used across the driver, the
// HAL backends, and the command-line tools, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error values for bus and EEPROM failures
//   - Transaction status codes used on the fifo wire protocol
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] with a component attribute:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentEEPROM, "device opened", "addr", addr)
//
// # Errors
//
// Failures are reported as sentinel values wrapped with context:
//
//	if errors.Is(err, pkg.ErrNoDevice) {
//	    // Nothing acknowledged at the slave address
//	}
package pkg
