// Command eeprom reads and writes I²C EEPROMs with 16-bit memory addressing.
//
// Usage:
//
//	eeprom [global options] command [arguments]
//
// Commands:
//
//	probe                  check that the device acknowledges
//	read ADDR [N]          hex dump N bytes (default 1) from ADDR
//	write ADDR HEX...      write hex bytes starting at ADDR
//	dump [--out FILE]      read the whole device
//	load FILE [ADDR]       write a binary image starting at ADDR
//	fill ADDR N VALUE      write N copies of VALUE
//	buses                  list buses of the selected backend
//
// Backends are periph (default), linux (/dev/i2c-N), fifo (a bus served by
// eepromsim), and sim (in-process, with --bus naming an image file that
// persists between runs).
//
// Settings come from an optional TOML file (--config) and are overridden
// by flags:
//
//	[bus]
//	backend = "linux"
//	name = "1"
//
//	[device]
//	address = "0x50"
//	size = 32768
//
//	[write]
//	poll_attempts = 100
//	poll_interval = "1ms"
//
//	[log]
//	level = "info"
//	format = "text"
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/urfave/cli"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(ctx).Run(os.Args); err != nil {
		stop()
		os.Exit(1)
	}
}

// newApp builds the command line application.
func newApp(ctx context.Context) *cli.App {
	e := &env{ctx: ctx}

	app := cli.NewApp()
	app.Name = "eeprom"
	app.Usage = "read and write I²C EEPROMs"
	app.Version = version

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load configuration from `FILE`",
		},
		cli.StringFlag{
			Name:  "backend",
			Value: backendPeriph,
			Usage: "bus backend: periph, linux, fifo, or sim",
		},
		cli.StringFlag{
			Name:  "bus",
			Usage: "bus `NAME` (periph name or number, linux number or path, sim image file)",
		},
		cli.StringFlag{
			Name:  "speed",
			Usage: "bus clock in `HZ` (periph only; 0 keeps the current clock)",
		},
		cli.StringFlag{
			Name:  "fifo-dir",
			Usage: "bus `DIR` served by eepromsim",
		},
		cli.StringFlag{
			Name:  "addr",
			Usage: "7-bit slave `ADDRESS`",
		},
		cli.StringFlag{
			Name:  "size",
			Usage: "device capacity in `BYTES`",
		},
		cli.StringFlag{
			Name:  "probe",
			Usage: "presence probe: read or quick-write",
		},
		cli.StringFlag{
			Name:  "poll-attempts",
			Usage: "acknowledgment polls after each byte write",
		},
		cli.StringFlag{
			Name:  "poll-interval",
			Usage: "delay between polls (`DURATION`)",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "log `LEVEL`: debug, info, warn, or error",
		},
		cli.StringFlag{
			Name:  "log-format",
			Usage: "log `FORMAT`: text or json",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "log at debug level",
		},
		cli.BoolFlag{
			Name:  "json",
			Usage: "log as JSON",
		},
		cli.StringFlag{
			Name:  "cpuprofile",
			Usage: "write a CPU profile to `FILE` (requires -tags profile)",
		},
		cli.StringFlag{
			Name:  "memprofile",
			Usage: "write a heap profile to `FILE` on exit (requires -tags profile)",
		},
	}

	app.Before = e.before
	app.After = e.after

	app.Commands = []cli.Command{
		{
			Name:   "probe",
			Usage:  "check that the device acknowledges its address",
			Action: e.action(e.probe),
		},
		{
			Name:      "read",
			Usage:     "hex dump bytes starting at a memory address",
			ArgsUsage: "ADDR [N]",
			Action:    e.action(e.read),
		},
		{
			Name:      "write",
			Usage:     "write hex bytes starting at a memory address",
			ArgsUsage: "ADDR HEX...",
			Action:    e.action(e.write),
		},
		{
			Name:  "dump",
			Usage: "read the device to a file or as a hex dump",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "out, o", Usage: "write raw bytes to `FILE`"},
				cli.StringFlag{Name: "start", Value: "0", Usage: "first memory `ADDRESS`"},
				cli.StringFlag{Name: "length, n", Usage: "number of `BYTES` (default: to the end)"},
			},
			Action: e.action(e.dump),
		},
		{
			Name:      "load",
			Usage:     "write a binary image to the device",
			ArgsUsage: "FILE [ADDR]",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "verify", Usage: "read back and compare"},
			},
			Action: e.action(e.load),
		},
		{
			Name:      "fill",
			Usage:     "write one value over a memory range",
			ArgsUsage: "ADDR N VALUE",
			Action:    e.action(e.fill),
		},
		{
			Name:   "buses",
			Usage:  "list buses of the selected backend",
			Action: e.action(e.buses),
		},
	}
	return app
}
