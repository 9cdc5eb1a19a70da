package sim

import (
	"fmt"
	"sync"

	"github.com/ardnew/softeeprom/hal"
	"github.com/ardnew/softeeprom/pkg"
)

// Default chip geometry (24LC256).
const (
	DefaultSize     = 32 * 1024
	DefaultPageSize = 64
)

// erased is the content of a blank EEPROM cell.
const erased = 0xFF

// ChipConfig describes a simulated EEPROM.
type ChipConfig struct {
	Size       int // Capacity in bytes (0 selects DefaultSize)
	PageSize   int // Page write buffer size (0 selects DefaultPageSize)
	WriteCycle int // Transactions NACKed after each write; negative never recovers
}

// Chip is an in-memory model of a 24xx-series EEPROM with 16-bit addressing.
type Chip struct {
	size     int
	pageSize int
	cycle    int

	mem     []byte
	ptr     int // internal address counter
	busy    int // remaining NACKed transactions
	stuck   bool
	commits int
}

// NewChip creates an erased chip.
func NewChip(cfg ChipConfig) *Chip {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	c := &Chip{
		size:     cfg.Size,
		pageSize: cfg.PageSize,
		cycle:    cfg.WriteCycle,
		mem:      make([]byte, cfg.Size),
	}
	for i := range c.mem {
		c.mem[i] = erased
	}
	return c
}

// Size returns the capacity in bytes.
func (c *Chip) Size() int { return c.size }

// Load copies data into memory at off without a write cycle. Addresses wrap
// at the end of the array.
func (c *Chip) Load(off int, data []byte) {
	for i, b := range data {
		c.mem[(off+i)%c.size] = b
	}
}

// LoadImage copies an image file into memory starting at address 0. An image
// larger than the chip fails with pkg.ErrInvalidParameter and leaves memory
// unchanged.
func (c *Chip) LoadImage(data []byte) error {
	if len(data) > c.size {
		return fmt.Errorf("%w: image of %d bytes exceeds %d-byte chip", pkg.ErrInvalidParameter, len(data), c.size)
	}
	copy(c.mem, data)
	return nil
}

// Peek returns the byte stored at off.
func (c *Chip) Peek(off int) byte {
	return c.mem[off%c.size]
}

// Bytes returns a copy of the memory array.
func (c *Chip) Bytes() []byte {
	return append([]byte(nil), c.mem...)
}

// Busy reports whether the chip is in an internal write cycle.
func (c *Chip) Busy() bool {
	return c.stuck || c.busy > 0
}

// Commits returns the number of write cycles started.
func (c *Chip) Commits() int { return c.commits }

// tx services one addressed transaction.
func (c *Chip) tx(w, r []byte) error {
	if c.stuck {
		return pkg.ErrNAK
	}
	if c.busy > 0 {
		c.busy--
		return pkg.ErrNAK
	}

	// A single byte cannot form an address; the chip acks and ignores it.
	if len(w) >= 2 {
		c.ptr = (int(w[0])<<8 | int(w[1])) % c.size
		if data := w[2:]; len(data) > 0 {
			c.program(data)
		}
	}

	for i := range r {
		r[i] = c.mem[c.ptr]
		c.ptr = (c.ptr + 1) % c.size
	}
	return nil
}

// program latches data into the page addressed by ptr. Bytes beyond the
// page boundary roll over to the start of the same page.
func (c *Chip) program(data []byte) {
	base := c.ptr - c.ptr%c.pageSize
	off := c.ptr % c.pageSize
	for _, b := range data {
		addr := base + off
		if addr < c.size {
			c.mem[addr] = b
		}
		off = (off + 1) % c.pageSize
	}
	c.ptr = (base + off) % c.size

	c.commits++
	switch {
	case c.cycle < 0:
		c.stuck = true
	default:
		c.busy = c.cycle
	}
}

// FaultFunc inspects a transaction before it reaches any chip. A non-nil
// return fails the transaction with that error.
type FaultFunc func(addr uint16, w, r []byte) error

// Bus is a simulated I²C bus holding any number of chips.
// It is safe for concurrent use.
type Bus struct {
	mu     sync.Mutex
	chips  map[hal.Address]*Chip
	fault  FaultFunc
	count  int
	closed bool
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{chips: make(map[hal.Address]*Chip)}
}

// New creates a bus with a single chip attached at addr.
func New(addr hal.Address, cfg ChipConfig) (*Bus, *Chip) {
	b := NewBus()
	c := NewChip(cfg)
	b.Attach(addr, c)
	return b, c
}

// Attach places chip c at addr, replacing any chip already there.
func (b *Bus) Attach(addr hal.Address, c *Chip) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chips[addr] = c
	pkg.LogDebug(pkg.ComponentSim, "chip attached", "addr", addr, "size", c.size, "page", c.pageSize)
}

// Detach removes the chip at addr.
func (b *Bus) Detach(addr hal.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.chips, addr)
}

// Chip returns the chip at addr, or nil.
func (b *Bus) Chip(addr hal.Address) *Chip {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chips[addr]
}

// SetFault installs fn as the fault injector. A nil fn removes it.
func (b *Bus) SetFault(fn FaultFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fault = fn
}

// Transactions returns the number of Tx calls made since creation or the
// last ResetCount.
func (b *Bus) Transactions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// ResetCount zeroes the transaction counter.
func (b *Bus) ResetCount() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count = 0
}

// Tx implements hal.Bus.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return pkg.ErrClosed
	}
	b.count++

	if b.fault != nil {
		if err := b.fault(addr, w, r); err != nil {
			return err
		}
	}

	if addr > uint16(hal.MaxAddress) {
		return fmt.Errorf("%w: address %#x", pkg.ErrNAK, addr)
	}
	c, ok := b.chips[hal.Address(addr)]
	if !ok {
		return pkg.ErrNAK
	}
	return c.tx(w, r)
}

// Close marks the bus closed; later transactions fail with pkg.ErrClosed.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// String returns the bus name.
func (b *Bus) String() string {
	return "sim"
}

// FailWriteAt returns a FaultFunc failing data writes whose memory address
// equals mem.
func FailWriteAt(mem uint16, err error) FaultFunc {
	return func(_ uint16, w, _ []byte) error {
		if len(w) > 2 && uint16(w[0])<<8|uint16(w[1]) == mem {
			return err
		}
		return nil
	}
}

// FailReadAt returns a FaultFunc failing write-then-read transactions whose
// memory address equals mem.
func FailReadAt(mem uint16, err error) FaultFunc {
	return func(_ uint16, w, r []byte) error {
		if len(w) == 2 && len(r) > 0 && uint16(w[0])<<8|uint16(w[1]) == mem {
			return err
		}
		return nil
	}
}

var _ hal.Bus = (*Bus)(nil)
