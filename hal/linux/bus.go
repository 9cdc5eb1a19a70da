//go:build linux

package linux

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"syscall"

	"github.com/ardnew/softeeprom/hal"
	"github.com/ardnew/softeeprom/pkg"
)

// Bus is an I²C adapter opened through /dev/i2c-N.
type Bus struct {
	mu     sync.Mutex
	fd     int
	path   string
	funcs  uint64
	closed bool
}

// Open opens the adapter with the given bus number.
func Open(number int) (*Bus, error) {
	if number < 0 {
		return nil, fmt.Errorf("%w: bus number %d", pkg.ErrInvalidParameter, number)
	}
	return OpenPath(DevfsI2CPrefix + strconv.Itoa(number))
}

// OpenPath opens the i2c-dev node at path.
func OpenPath(path string) (*Bus, error) {
	fd, err := openDevice(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", pkg.ErrBusNotReady, path, err)
	}

	funcs, err := getFuncs(fd)
	if err != nil {
		closeDevice(fd)
		return nil, fmt.Errorf("%w: %s: I2C_FUNCS: %v", pkg.ErrBusNotReady, path, err)
	}
	if funcs&FuncI2C == 0 {
		closeDevice(fd)
		return nil, fmt.Errorf("%w: %s does not support plain I2C transfers", pkg.ErrNotSupported, path)
	}
	if err := setTimeout(fd, DefaultTimeoutTicks); err != nil {
		pkg.LogDebug(pkg.ComponentBus, "adapter timeout not set", "path", path, "error", err)
	}

	pkg.LogInfo(pkg.ComponentBus, "i2c-dev bus opened", "path", path, "funcs", fmt.Sprintf("%#08x", funcs))
	return &Bus{fd: fd, path: path, funcs: funcs}, nil
}

// Funcs returns the adapter functionality mask.
func (b *Bus) Funcs() uint64 {
	return b.funcs
}

// SetRetries sets how many times the adapter retries a NAKed address.
func (b *Bus) SetRetries(n int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return pkg.ErrClosed
	}
	if n < 0 {
		return fmt.Errorf("%w: retries %d", pkg.ErrInvalidParameter, n)
	}
	return mapErrno(setRetries(b.fd, n))
}

// Tx implements hal.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if len(w) > MaxMessageLen || len(r) > MaxMessageLen {
		return fmt.Errorf("%w: transfer longer than %d bytes", pkg.ErrInvalidParameter, MaxMessageLen)
	}
	if len(w) == 0 && len(r) == 0 && b.funcs&FuncSMBusQuick == 0 {
		return fmt.Errorf("%w: zero-length write on %s", pkg.ErrNotSupported, b.path)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return pkg.ErrClosed
	}
	return mapErrno(doTx(b.fd, addr, w, r))
}

// String returns the device node path.
func (b *Bus) String() string {
	return b.path
}

// Close closes the device node. It is safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	pkg.LogInfo(pkg.ComponentBus, "i2c-dev bus closed", "path", b.path)
	return closeDevice(b.fd)
}

// mapErrno classifies an adapter errno. Address and data NAKs become
// pkg.ErrNAK; everything else is pkg.ErrBus. The errno stays in the chain.
func mapErrno(err error) error {
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return fmt.Errorf("%w: %v", pkg.ErrBus, err)
	}
	switch errno {
	case ENXIO, EREMOTEIO:
		return fmt.Errorf("%w: %w", pkg.ErrNAK, errno)
	case EOPNOTSUP:
		return fmt.Errorf("%w: %w", pkg.ErrNotSupported, errno)
	default:
		return fmt.Errorf("%w: %w", pkg.ErrBus, errno)
	}
}

var _ hal.Bus = (*Bus)(nil)
