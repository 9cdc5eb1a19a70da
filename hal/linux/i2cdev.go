//go:build linux

package linux

import (
	"runtime"
	"syscall"
	"unsafe"
)

// =============================================================================
// I2C_RDWR Structures
// =============================================================================

// i2cMsg is one segment of a combined transaction.
// This must match the kernel's struct i2c_msg layout.
type i2cMsg struct {
	addr  uint16  // Slave address
	flags uint16  // msgRead and friends
	len   uint16  // Data length
	buf   uintptr // Pointer to data buffer
}

// rdwrData is the I2C_RDWR argument.
// This must match the kernel's struct i2c_rdwr_ioctl_data layout.
type rdwrData struct {
	msgs  uintptr // Pointer to i2cMsg array
	nmsgs uint32  // Number of messages
}

// =============================================================================
// Raw Syscall Wrappers
// =============================================================================

// openDevice opens an i2c-dev node for read/write access.
func openDevice(path string) (int, error) {
	fd, err := syscall.Open(path, syscall.O_RDWR|syscall.O_CLOEXEC, 0)
	if err != nil {
		return -1, err
	}
	return fd, nil
}

// closeDevice closes a device file descriptor.
func closeDevice(fd int) error {
	_, _, errno := syscall.Syscall(syscall.SYS_CLOSE, uintptr(fd), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// ioctlRaw performs a raw ioctl syscall.
func ioctlRaw(fd int, req uintptr, arg uintptr) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

// =============================================================================
// i2c-dev Operations
// =============================================================================

// getFuncs retrieves the adapter functionality mask.
func getFuncs(fd int) (uint64, error) {
	var funcs uint64
	if err := ioctlRaw(fd, ioctlI2CFuncs, uintptr(unsafe.Pointer(&funcs))); err != nil {
		return 0, err
	}
	return funcs, nil
}

// setTimeout sets the adapter timeout in 10 ms ticks.
func setTimeout(fd int, ticks int) error {
	return ioctlRaw(fd, ioctlI2CTimeout, uintptr(ticks))
}

// setRetries sets how many times the adapter retries a NAKed address.
func setRetries(fd int, n int) error {
	return ioctlRaw(fd, ioctlI2CRetries, uintptr(n))
}

// doTx performs a write, a read, or a write followed by a repeated-start read
// as a single I2C_RDWR. Empty w and r send one zero-length write.
func doTx(fd int, addr uint16, w, r []byte) error {
	var msgs [2]i2cMsg
	n := 0

	if len(w) > 0 || len(r) == 0 {
		msgs[n] = i2cMsg{addr: addr, len: uint16(len(w))}
		if len(w) > 0 {
			msgs[n].buf = uintptr(unsafe.Pointer(&w[0]))
		}
		n++
	}
	if len(r) > 0 {
		msgs[n] = i2cMsg{
			addr:  addr,
			flags: msgRead,
			len:   uint16(len(r)),
			buf:   uintptr(unsafe.Pointer(&r[0])),
		}
		n++
	}

	data := rdwrData{
		msgs:  uintptr(unsafe.Pointer(&msgs[0])),
		nmsgs: uint32(n),
	}
	err := ioctlRaw(fd, ioctlI2CRdwr, uintptr(unsafe.Pointer(&data)))

	runtime.KeepAlive(w)
	runtime.KeepAlive(r)
	runtime.KeepAlive(&msgs)
	return err
}
