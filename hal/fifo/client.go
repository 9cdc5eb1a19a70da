package fifo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/ardnew/softeeprom/hal"
	"github.com/ardnew/softeeprom/pkg"
)

// ErrNotServing indicates no server has the bus directory open.
var ErrNotServing = errors.New("fifo bus not served")

// Bus is the client side of a FIFO bus. Each Tx sends one request and
// waits for one response.
type Bus struct {
	mu      sync.Mutex
	r       io.Reader
	w       io.Writer
	closers []io.Closer
	name    string
	timeout time.Duration
	err     error // sticky stream failure
	closed  bool

	// Internal buffers (zero-allocation)
	txBuf [maxMessageSize]byte
	rxBuf [maxMessageSize]byte
}

// Dial connects to a server listening in dir.
func Dial(dir string) (*Bus, error) {
	// O_NONBLOCK on the write side fails with ENXIO when nobody is reading.
	req, err := os.OpenFile(filepath.Join(dir, fifoRequest), os.O_WRONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		if errors.Is(err, syscall.ENXIO) {
			return nil, fmt.Errorf("%w: %w in %s", pkg.ErrBusNotReady, ErrNotServing, dir)
		}
		return nil, fmt.Errorf("%w: open %s: %v", pkg.ErrBusNotReady, fifoRequest, err)
	}
	resp, err := os.OpenFile(filepath.Join(dir, fifoResponse), os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		req.Close()
		return nil, fmt.Errorf("%w: open %s: %v", pkg.ErrBusNotReady, fifoResponse, err)
	}

	b := NewConn(resp, req)
	b.name = "fifo:" + dir
	b.closers = []io.Closer{req, resp}
	pkg.LogInfo(pkg.ComponentBus, "fifo bus connected", "dir", dir)
	return b, nil
}

// NewConn returns a client speaking the FIFO protocol over an arbitrary
// stream pair: responses are read from r and requests written to w.
// Close does not close r or w.
func NewConn(r io.Reader, w io.Writer) *Bus {
	return &Bus{r: r, w: w, name: "fifo", timeout: defaultTimeout}
}

// SetTimeout sets how long Tx waits for a response.
func (b *Bus) SetTimeout(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d > 0 {
		b.timeout = d
	}
}

// Tx implements hal.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if len(w) > MaxTransfer || len(r) > MaxTransfer {
		return fmt.Errorf("%w: transfer longer than %d bytes", pkg.ErrInvalidParameter, MaxTransfer)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return pkg.ErrClosed
	}
	if b.err != nil {
		return b.err
	}

	payload := putTx(b.rxBuf[:], addr, w, len(r))
	if err := writeMessage(b.w, b.txBuf[:], msgTx, payload); err != nil {
		return b.fail(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	typ, data, err := readMessage(ctx, b.r, b.rxBuf[:])
	if err != nil {
		return b.fail(err)
	}

	switch typ {
	case msgData:
		if len(data) != len(r) {
			return b.fail(fmt.Errorf("%w: read %d bytes, want %d", pkg.ErrProtocol, len(data), len(r)))
		}
		copy(r, data)
		return nil
	case msgAck:
		if len(r) > 0 {
			return b.fail(fmt.Errorf("%w: ack for read transaction", pkg.ErrProtocol))
		}
		return nil
	case msgNak:
		return pkg.ErrNAK
	case msgError:
		if len(data) != 1 {
			return b.fail(fmt.Errorf("%w: malformed error response", pkg.ErrProtocol))
		}
		return pkg.TxStatus(data[0]).Error()
	default:
		return b.fail(fmt.Errorf("%w: unexpected message type %#02x", pkg.ErrProtocol, typ))
	}
}

// fail records a stream failure. Request and response framing can no
// longer be trusted, so later transactions fail too.
func (b *Bus) fail(err error) error {
	if !errors.Is(err, pkg.ErrProtocol) {
		err = fmt.Errorf("%w: %s: %v", pkg.ErrBus, b.name, err)
	}
	b.err = err
	pkg.LogWarn(pkg.ComponentBus, "fifo stream failed", "bus", b.name, "error", err)
	return err
}

// String returns the bus name.
func (b *Bus) String() string {
	return b.name
}

// Close releases the FIFOs opened by Dial. It is safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c.Close())
	}
	pkg.LogInfo(pkg.ComponentBus, "fifo bus closed", "bus", b.name)
	return errors.Join(errs...)
}

var _ hal.Bus = (*Bus)(nil)
