package periph

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/ardnew/softeeprom/hal"
	"github.com/ardnew/softeeprom/pkg"
)

var (
	hostOnce sync.Once
	hostErr  error
)

// Init loads the periph.io host drivers once per process. Open calls it;
// callers only need it before using i2creg directly.
func Init() error {
	hostOnce.Do(func() {
		state, err := host.Init()
		if err != nil {
			hostErr = fmt.Errorf("periph host init: %w", err)
			return
		}
		for _, f := range state.Failed {
			pkg.LogDebug(pkg.ComponentBus, "periph driver failed", "driver", f.D.String(), "error", f.Err)
		}
		pkg.LogDebug(pkg.ComponentBus, "periph host initialized", "loaded", len(state.Loaded))
	})
	return hostErr
}

// Bus adapts a periph.io I²C bus to hal.Bus and serializes access to it.
type Bus struct {
	mu     sync.Mutex
	bus    i2c.Bus
	closer func() error
	name   string
	closed bool
}

// Open initializes the host drivers and opens the named bus ("" selects the
// first registered bus, as in i2creg.Open).
func Open(name string) (*Bus, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return OpenRegistered(name)
}

// OpenRegistered opens a bus already present in the i2creg registry without
// initializing the host drivers.
func OpenRegistered(name string) (*Bus, error) {
	bc, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: open i2c bus %q: %v", pkg.ErrBusNotReady, name, err)
	}
	b := &Bus{bus: bc, closer: bc.Close, name: bc.String()}
	pkg.LogInfo(pkg.ComponentBus, "periph bus opened", "bus", b.name)
	return b, nil
}

// Wrap adapts an already opened periph.io bus. Close on the returned Bus
// does not close b.
func Wrap(b i2c.Bus) *Bus {
	return &Bus{bus: b, name: b.String()}
}

// Tx implements hal.Bus. Adapter NAKs are reported as pkg.ErrNAK and other
// failures as pkg.ErrBus, with periph's error kept in the chain.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return pkg.ErrClosed
	}
	if err := b.bus.Tx(addr, w, r); err != nil {
		return classify(b.name, err)
	}
	return nil
}

// nakText holds the errno messages adapters report for an unacknowledged
// address or data byte. periph's sysfs bus formats the errno with %v, so
// only its text survives.
var nakText = []string{
	"no such device or address", // ENXIO
	"remote I/O error",          // EREMOTEIO
}

// classify wraps a periph.io error as pkg.ErrNAK or pkg.ErrBus.
func classify(name string, err error) error {
	if errors.Is(err, pkg.ErrNAK) || errors.Is(err, pkg.ErrBus) {
		return fmt.Errorf("%s: %w", name, err)
	}
	msg := err.Error()
	for _, s := range nakText {
		if strings.Contains(msg, s) {
			return fmt.Errorf("%s: %w: %w", name, pkg.ErrNAK, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", name, pkg.ErrBus, err)
}

// SetSpeed sets the bus clock in hertz.
func (b *Bus) SetSpeed(hz int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return pkg.ErrClosed
	}
	if hz <= 0 {
		return fmt.Errorf("%w: bus speed %d Hz", pkg.ErrInvalidParameter, hz)
	}
	return b.bus.SetSpeed(physic.Frequency(hz) * physic.Hertz)
}

// Ready reports whether the bus is open.
func (b *Bus) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed
}

// String returns the periph.io bus name.
func (b *Bus) String() string {
	return b.name
}

// Close releases the bus if Bus opened it. It is safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	pkg.LogInfo(pkg.ComponentBus, "periph bus closed", "bus", b.name)
	if b.closer != nil {
		return b.closer()
	}
	return nil
}

// BusInfo describes a registered bus.
type BusInfo struct {
	Name    string
	Aliases []string
	Number  int
}

// Buses lists the buses registered with i2creg.
func Buses() []BusInfo {
	refs := i2creg.All()
	out := make([]BusInfo, 0, len(refs))
	for _, r := range refs {
		out = append(out, BusInfo{Name: r.Name, Aliases: r.Aliases, Number: r.Number})
	}
	return out
}

var _ hal.Bus = (*Bus)(nil)
