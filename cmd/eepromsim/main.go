// Command eepromsim serves a simulated EEPROM on a FIFO bus directory.
//
// The eeprom command reaches it with --backend fifo --fifo-dir DIR. The
// simulated part NACKs its address for --write-cycle transactions after
// every write, so acknowledgment polling is exercised end to end.
//
//	eepromsim --dir /tmp/softeeprom --image rom.bin --save
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/ardnew/softeeprom/hal"
	"github.com/ardnew/softeeprom/hal/fifo"
	"github.com/ardnew/softeeprom/hal/sim"
	"github.com/ardnew/softeeprom/pkg"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(ctx).Run(os.Args); err != nil {
		stop()
		os.Exit(1)
	}
}

// options is the resolved command line.
type options struct {
	dir        string
	addr       hal.Address
	chip       sim.ChipConfig
	image      string
	save       bool
	logLevel   string
	jsonOutput bool
}

func newApp(ctx context.Context) *cli.App {
	app := cli.NewApp()
	app.Name = "eepromsim"
	app.Usage = "serve a simulated I²C EEPROM over named pipes"
	app.Version = "0.1.0"

	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "dir, d", Value: "/tmp/softeeprom", Usage: "bus `DIR` to create"},
		cli.IntFlag{Name: "addr", Value: 0x50, Usage: "7-bit slave `ADDRESS`"},
		cli.IntFlag{Name: "size", Value: sim.DefaultSize, Usage: "capacity in `BYTES`"},
		cli.IntFlag{Name: "page", Value: sim.DefaultPageSize, Usage: "page buffer size in `BYTES`"},
		cli.IntFlag{Name: "write-cycle", Value: 3, Usage: "transactions NACKed after each write (negative: never recover)"},
		cli.StringFlag{Name: "image, i", Usage: "preload memory from `FILE`"},
		cli.BoolFlag{Name: "save", Usage: "write memory back to the image file on exit"},
		cli.StringFlag{Name: "log-level", Value: "info", Usage: "log `LEVEL`"},
		cli.BoolFlag{Name: "json", Usage: "log as JSON"},
	}

	app.Action = func(c *cli.Context) error {
		opts, err := parseOptions(c)
		if err != nil {
			return cli.NewExitError("eepromsim: "+err.Error(), 2)
		}
		if err := serve(ctx, opts); err != nil {
			return cli.NewExitError("eepromsim: "+err.Error(), 1)
		}
		return nil
	}
	return app
}

func parseOptions(c *cli.Context) (options, error) {
	o := options{
		dir:   c.String("dir"),
		addr:  hal.Address(c.Int("addr")),
		image: c.String("image"),
		save:  c.Bool("save"),
		chip: sim.ChipConfig{
			Size:       c.Int("size"),
			PageSize:   c.Int("page"),
			WriteCycle: c.Int("write-cycle"),
		},
		logLevel:   c.String("log-level"),
		jsonOutput: c.Bool("json"),
	}
	if a := c.Int("addr"); a < 0 || a > int(hal.MaxAddress) {
		return o, fmt.Errorf("%w: %#x", pkg.ErrInvalidAddress, c.Int("addr"))
	}
	if o.chip.Size <= 0 || o.chip.Size > 1<<16 {
		return o, fmt.Errorf("%w: size %d", pkg.ErrInvalidParameter, o.chip.Size)
	}
	if o.chip.PageSize <= 0 || o.chip.PageSize > o.chip.Size {
		return o, fmt.Errorf("%w: page size %d", pkg.ErrInvalidParameter, o.chip.PageSize)
	}
	if o.save && o.image == "" {
		return o, fmt.Errorf("%w: --save requires --image", pkg.ErrInvalidParameter)
	}
	if o.dir == "" {
		return o, fmt.Errorf("%w: empty bus directory", pkg.ErrInvalidParameter)
	}
	return o, nil
}

// serve runs the simulator until ctx is cancelled.
func serve(ctx context.Context, o options) error {
	level, err := pkg.ParseLogLevel(o.logLevel)
	if err != nil {
		return err
	}
	format := pkg.LogFormatText
	if o.jsonOutput {
		format = pkg.LogFormatJSON
	}
	pkg.SetLogOutput(os.Stderr, format)
	pkg.SetLogLevel(level)

	bus, chip := sim.New(o.addr, o.chip)
	if o.image != "" {
		data, err := os.ReadFile(o.image)
		switch {
		case err == nil:
			if err := chip.LoadImage(data); err != nil {
				pkg.LogError(pkg.ComponentSim, "image rejected", "file", o.image, "bytes", len(data), "size", chip.Size())
				return err
			}
			pkg.LogInfo(pkg.ComponentSim, "image loaded", "file", o.image, "bytes", len(data))
		case errors.Is(err, os.ErrNotExist) && o.save:
			pkg.LogInfo(pkg.ComponentSim, "image will be created", "file", o.image)
		default:
			return err
		}
	}

	pkg.LogInfo(pkg.ComponentSim, "simulator ready",
		"dir", o.dir, "addr", o.addr, "size", chip.Size(), "page", o.chip.PageSize, "writeCycle", o.chip.WriteCycle)

	err = fifo.Serve(ctx, o.dir, bus)

	pkg.LogInfo(pkg.ComponentSim, "simulator stopped",
		"transactions", bus.Transactions(), "commits", chip.Commits())
	if o.save {
		if serr := os.WriteFile(o.image, chip.Bytes(), 0o644); serr != nil {
			pkg.LogError(pkg.ComponentSim, "image not saved", "file", o.image, "error", serr)
			return errors.Join(err, serr)
		}
		pkg.LogInfo(pkg.ComponentSim, "image saved", "file", o.image)
	}
	return err
}
