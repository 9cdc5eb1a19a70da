package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli"

	"github.com/ardnew/softeeprom/eeprom"
	"github.com/ardnew/softeeprom/hal/periph"
	"github.com/ardnew/softeeprom/pkg"
	"github.com/ardnew/softeeprom/pkg/prof"
)

// errVerify indicates read-back data differs from what was written.
var errVerify = errors.New("verify failed")

// env carries per-invocation state from Before to the command actions.
type env struct {
	ctx  context.Context
	cfg  settings
	prof *prof.Session
}

// before resolves configuration, then sets up logging and profiling.
func (e *env) before(c *cli.Context) error {
	cfg, err := loadSettings(c)
	if err != nil {
		return exitError(err)
	}
	e.cfg = cfg

	out := c.App.ErrWriter
	if out == nil {
		out = os.Stderr
	}
	pkg.SetLogOutput(out, cfg.LogFormat)
	pkg.SetLogLevel(cfg.LogLevel)

	cpu, mem := c.GlobalString("cpuprofile"), c.GlobalString("memprofile")
	if (cpu != "" || mem != "") && !prof.Enabled {
		pkg.LogWarn(pkg.ComponentCLI, "profiling flags ignored; rebuild with -tags profile")
	}
	if e.prof, err = prof.Start(cpu, mem); err != nil {
		return exitError(err)
	}
	pkg.LogDebug(pkg.ComponentCLI, "settings resolved",
		"backend", cfg.Backend, "bus", cfg.BusName, "addr", cfg.Address, "size", cfg.Driver.Size)
	return nil
}

// after stops profiling.
func (e *env) after(c *cli.Context) error {
	return e.stopProfile()
}

// stopProfile ends the profiling session. Later calls do nothing.
func (e *env) stopProfile() error {
	if e.prof == nil {
		return nil
	}
	err := e.prof.Stop()
	e.prof = nil
	return err
}

// action adapts a command to report failures as exit codes.
//
// urfave/cli exits from inside the command on an ExitCoder, before After
// runs, so a failing command flushes its profiles here.
func (e *env) action(fn func(*cli.Context) error) func(*cli.Context) error {
	return func(c *cli.Context) error {
		err := fn(c)
		if err == nil {
			return nil
		}
		if perr := e.stopProfile(); perr != nil {
			pkg.LogError(pkg.ComponentCLI, "profile not written", "error", perr)
		}
		return exitError(err)
	}
}

// Exit codes.
const (
	exitFailure  = 1
	exitUsage    = 2
	exitNoDevice = 3
	exitTimeout  = 4

	// exitCancelled follows the shell convention for SIGINT.
	exitCancelled = 130
)

// exitError converts err to a cli.ExitCoder with a status-specific code.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	code := exitFailure
	switch pkg.StatusOf(err) {
	case pkg.TxStatusInvalid:
		code = exitUsage
	case pkg.TxStatusNoDevice, pkg.TxStatusNAK:
		code = exitNoDevice
	case pkg.TxStatusTimeout:
		code = exitTimeout
	case pkg.TxStatusCancelled:
		code = exitCancelled
	}
	if errors.Is(err, pkg.ErrInvalidAddress) {
		code = exitUsage
	}
	return cli.NewExitError("eeprom: "+err.Error(), code)
}

// usage reports a malformed command line.
func usage(c *cli.Context) error {
	return fmt.Errorf("%w: usage: %s %s %s", pkg.ErrInvalidParameter, c.App.Name, c.Command.Name, c.Command.ArgsUsage)
}

// withDriver opens the bus and device, runs fn, and releases the bus.
func (e *env) withDriver(fn func(d *eeprom.Driver) error) (err error) {
	bus, err := openBus(e.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := bus.Close(); err == nil {
			err = cerr
		}
	}()

	d, err := eeprom.Open(e.ctx, bus, e.cfg.Address, e.cfg.Driver)
	if err != nil {
		return err
	}
	return fn(d)
}

// =============================================================================
// Commands
// =============================================================================

func (e *env) probe(c *cli.Context) error {
	if c.NArg() != 0 {
		return usage(c)
	}
	err := e.withDriver(func(d *eeprom.Driver) error { return nil })
	switch {
	case err == nil:
		fmt.Fprintf(c.App.Writer, "%s: present\n", e.cfg.Address)
	case errors.Is(err, pkg.ErrNoDevice):
		fmt.Fprintf(c.App.Writer, "%s: absent\n", e.cfg.Address)
	}
	return err
}

func (e *env) read(c *cli.Context) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return usage(c)
	}
	addr, err := parseMemAddress(c.Args().Get(0))
	if err != nil {
		return err
	}
	n := 1
	if c.NArg() == 2 {
		if n, err = parseLength(c.Args().Get(1)); err != nil {
			return err
		}
	}

	return e.withDriver(func(d *eeprom.Driver) error {
		buf := make([]byte, n)
		got, err := d.ReadBlock(e.ctx, addr, buf)
		if herr := hexdump(c.App.Writer, addr, buf[:got]); err == nil {
			err = herr
		}
		return err
	})
}

func (e *env) write(c *cli.Context) error {
	if c.NArg() < 2 {
		return usage(c)
	}
	addr, err := parseMemAddress(c.Args().Get(0))
	if err != nil {
		return err
	}
	data, err := hex.DecodeString(strings.Join(strings.Fields(strings.Join(c.Args().Tail(), " ")), ""))
	if err != nil {
		return fmt.Errorf("%w: hex data: %v", pkg.ErrInvalidParameter, err)
	}

	return e.withDriver(func(d *eeprom.Driver) error {
		n, err := d.WriteBlock(e.ctx, addr, data)
		fmt.Fprintf(c.App.Writer, "wrote %d of %d bytes at %#04x\n", n, len(data), addr)
		return err
	})
}

func (e *env) dump(c *cli.Context) error {
	if c.NArg() != 0 {
		return usage(c)
	}
	start, err := parseMemAddress(c.String("start"))
	if err != nil {
		return err
	}
	size := e.cfg.Driver.Size
	if int(start) >= size {
		return fmt.Errorf("%w: start %#04x beyond device of %d bytes", pkg.ErrInvalidParameter, start, size)
	}
	n := size - int(start)
	if c.IsSet("length") {
		if n, err = parseLength(c.String("length")); err != nil {
			return err
		}
		n = min(n, size-int(start))
	}

	return e.withDriver(func(d *eeprom.Driver) error {
		buf := make([]byte, n)
		got, err := d.ReadBlock(e.ctx, start, buf)
		if err != nil {
			return fmt.Errorf("dump stopped after %d bytes: %w", got, err)
		}
		if out := c.String("out"); out != "" {
			if err := os.WriteFile(out, buf, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "dumped %d bytes from %#04x to %s\n", got, start, out)
			return nil
		}
		return hexdump(c.App.Writer, start, buf)
	})
}

func (e *env) load(c *cli.Context) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return usage(c)
	}
	data, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return err
	}
	var addr uint16
	if c.NArg() == 2 {
		if addr, err = parseMemAddress(c.Args().Get(1)); err != nil {
			return err
		}
	}
	if int(addr)+len(data) > e.cfg.Driver.Size {
		return fmt.Errorf("%w: %d bytes at %#04x exceed device of %d bytes",
			pkg.ErrInvalidParameter, len(data), addr, e.cfg.Driver.Size)
	}

	return e.withDriver(func(d *eeprom.Driver) error {
		n, err := d.WriteBlock(e.ctx, addr, data)
		fmt.Fprintf(c.App.Writer, "wrote %d of %d bytes at %#04x\n", n, len(data), addr)
		if err != nil || !c.Bool("verify") {
			return err
		}

		back := make([]byte, len(data))
		if _, err := d.ReadBlock(e.ctx, addr, back); err != nil {
			return err
		}
		if i := mismatch(data, back); i >= 0 {
			return fmt.Errorf("%w at %#04x: wrote %#02x, read %#02x",
				errVerify, addr+uint16(i), data[i], back[i])
		}
		fmt.Fprintln(c.App.Writer, "verified")
		return nil
	})
}

// mismatch returns the index of the first differing byte, or -1.
func mismatch(a, b []byte) int {
	if bytes.Equal(a, b) {
		return -1
	}
	for i := range a {
		if i >= len(b) || a[i] != b[i] {
			return i
		}
	}
	return len(a)
}

func (e *env) fill(c *cli.Context) error {
	if c.NArg() != 3 {
		return usage(c)
	}
	addr, err := parseMemAddress(c.Args().Get(0))
	if err != nil {
		return err
	}
	n, err := parseLength(c.Args().Get(1))
	if err != nil {
		return err
	}
	value, err := parseByte(c.Args().Get(2))
	if err != nil {
		return err
	}

	return e.withDriver(func(d *eeprom.Driver) error {
		got, err := d.Fill(e.ctx, addr, n, value)
		fmt.Fprintf(c.App.Writer, "filled %d of %d bytes at %#04x with %#02x\n", got, n, addr, value)
		return err
	})
}

func (e *env) buses(c *cli.Context) error {
	w := c.App.Writer
	switch e.cfg.Backend {
	case backendPeriph:
		if err := periph.Init(); err != nil {
			return err
		}
		for _, b := range periph.Buses() {
			fmt.Fprintf(w, "%s\tnumber=%d\taliases=%s\n", b.Name, b.Number, strings.Join(b.Aliases, ","))
		}
	case backendLinux:
		adapters, err := linuxAdapters()
		if err != nil {
			return err
		}
		for _, a := range adapters {
			fmt.Fprintln(w, a)
		}
	case backendFifo:
		fmt.Fprintf(w, "fifo:%s\n", e.cfg.FifoDir)
	case backendSim:
		fmt.Fprintln(w, "sim")
	}
	return nil
}
