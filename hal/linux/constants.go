package linux

// =============================================================================
// System Paths
// =============================================================================

// DevfsI2CPrefix is the path prefix of i2c-dev character devices.
const DevfsI2CPrefix = "/dev/i2c-"

// SysfsI2CDevPath is the sysfs class directory listing i2c-dev adapters.
const SysfsI2CDevPath = "/sys/class/i2c-dev"

// =============================================================================
// i2c-dev ioctl Requests (linux/i2c-dev.h)
// =============================================================================

// ioctl request numbers. i2c-dev uses plain numbers, not _IOC encodings,
// so they are the same on every architecture.
const (
	ioctlI2CRetries = 0x0701 // Number of times a device address is polled
	ioctlI2CTimeout = 0x0702 // Transaction timeout in units of 10 ms
	ioctlI2CFuncs   = 0x0705 // Get adapter functionality mask
	ioctlI2CRdwr    = 0x0707 // Combined R/W transfer (one STOP only)
)

// =============================================================================
// Message Flags (linux/i2c.h)
// =============================================================================

// msgRead marks an i2c_msg as a read from slave to master.
const msgRead = 0x0001

// =============================================================================
// Adapter Functionality (linux/i2c.h)
// =============================================================================

// Functionality bits reported by I2C_FUNCS.
const (
	FuncI2C        = 0x00000001 // Plain I2C-level commands (I2C_RDWR)
	FuncSMBusQuick = 0x00010000 // Zero-length write (SMBus quick command)
)

// =============================================================================
// Transfer Limits
// =============================================================================

// MaxMessageLen is the largest data length of a single message.
const MaxMessageLen = 8192

// DefaultTimeoutTicks is the adapter timeout applied at open, in 10 ms units.
const DefaultTimeoutTicks = 10

// =============================================================================
// Errno Constants
// =============================================================================

// errno values returned by i2c adapter drivers.
const (
	ENXIO     = 6   // No such device or address (address NAK)
	EOPNOTSUP = 95  // Operation not supported by adapter
	EREMOTEIO = 121 // Remote I/O error (data NAK)
)
