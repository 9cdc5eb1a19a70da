// Package linux provides an I²C bus for Linux using the i2c-dev interface.
//
// Each transaction is a single I2C_RDWR ioctl on /dev/i2c-N, so a memory
// address write followed by a read uses a repeated start with no STOP in
// between. The package uses raw syscalls and has no cgo dependencies.
//
// # Requirements
//
// The i2c-dev kernel module must be loaded, and the user must have
// read/write access to the device node. This typically requires either:
//   - Membership in the i2c group
//   - Running as root
//
// # Error Mapping
//
// ENXIO and EREMOTEIO, which adapter drivers return when an address or data
// byte is not acknowledged, map to pkg.ErrNAK. Other errnos map to
// pkg.ErrBus. The original errno stays in the error chain.
package linux
