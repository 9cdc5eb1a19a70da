package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/urfave/cli"

	"github.com/ardnew/softeeprom/pkg"
	"github.com/ardnew/softeeprom/pkg/prof"
)

func TestMain(m *testing.M) {
	// Keep failing commands from exiting the test binary.
	cli.OsExiter = func(int) {}
	cli.ErrWriter = io.Discard
	os.Exit(m.Run())
}

// run executes the application with args and returns its standard output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp(context.Background())
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"eeprom"}, args...))
	return out.String(), err
}

// simArgs selects the in-process backend persisting to a temporary image.
func simArgs(t *testing.T, size int) (string, []string) {
	t.Helper()
	img := filepath.Join(t.TempDir(), "eeprom.bin")
	return img, []string{"--backend", "sim", "--bus", img, "--size", strconv.Itoa(size), "--poll-interval", "1us"}
}

func wantExit(t *testing.T, err error, code int) {
	t.Helper()
	var ec cli.ExitCoder
	if !errors.As(err, &ec) {
		t.Fatalf("error = %v, want exit code %d", err, code)
	}
	if ec.ExitCode() != code {
		t.Errorf("exit code = %d (%v), want %d", ec.ExitCode(), err, code)
	}
}

// =============================================================================
// Command Tests
// =============================================================================

func TestWriteThenRead(t *testing.T) {
	_, args := simArgs(t, 256)

	out, err := run(t, append(args, "write", "0x10", "deadbeef")...)
	if err != nil {
		t.Fatalf("write error = %v", err)
	}
	if !strings.Contains(out, "wrote 4 of 4 bytes at 0x0010") {
		t.Errorf("write output = %q", out)
	}

	out, err = run(t, append(args, "read", "0x10", "4")...)
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if !strings.HasPrefix(out, "0010  de ad be ef") {
		t.Errorf("read output = %q", out)
	}
}

func TestWrite_SpacedHex(t *testing.T) {
	img, args := simArgs(t, 256)

	if _, err := run(t, append(args, "write", "0", "01 02", "03")...); err != nil {
		t.Fatalf("write error = %v", err)
	}
	data, err := os.ReadFile(img)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data[:3], []byte{1, 2, 3}) {
		t.Errorf("image = %v, want [1 2 3 ...]", data[:3])
	}
}

func TestProbe(t *testing.T) {
	_, args := simArgs(t, 256)

	out, err := run(t, append(args, "probe")...)
	if err != nil {
		t.Fatalf("probe error = %v", err)
	}
	if strings.TrimSpace(out) != "0x50: present" {
		t.Errorf("probe output = %q", out)
	}

	out, err = run(t, append(args, "--addr", "0x51", "probe")...)
	wantExit(t, err, exitNoDevice)
	if strings.TrimSpace(out) != "0x51: absent" {
		t.Errorf("probe output = %q", out)
	}
}

func TestLoadVerifyDump(t *testing.T) {
	_, args := simArgs(t, 128)
	dir := t.TempDir()

	image := bytes.Repeat([]byte("EEPROM"), 8)
	src := filepath.Join(dir, "in.bin")
	if err := os.WriteFile(src, image, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, append(args, "load", "--verify", src, "0x20")...)
	if err != nil {
		t.Fatalf("load error = %v", err)
	}
	if !strings.Contains(out, "verified") {
		t.Errorf("load output = %q", out)
	}

	dst := filepath.Join(dir, "out.bin")
	if _, err := run(t, append(args, "dump", "--out", dst)...); err != nil {
		t.Fatalf("dump error = %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 128 {
		t.Fatalf("dump length = %d, want 128", len(got))
	}
	if !bytes.Equal(got[0x20:0x20+len(image)], image) {
		t.Error("dump does not contain the loaded image")
	}
	if got[0] != 0xFF {
		t.Errorf("dump[0] = %#02x, want erased 0xff", got[0])
	}
}

func TestLoad_TooLarge(t *testing.T) {
	_, args := simArgs(t, 64)
	src := filepath.Join(t.TempDir(), "big.bin")
	if err := os.WriteFile(src, make([]byte, 65), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := run(t, append(args, "load", src)...)
	wantExit(t, err, exitUsage)
}

func TestFillAndDumpRange(t *testing.T) {
	_, args := simArgs(t, 256)

	out, err := run(t, append(args, "fill", "0x40", "8", "0xA5")...)
	if err != nil {
		t.Fatalf("fill error = %v", err)
	}
	if !strings.Contains(out, "filled 8 of 8 bytes at 0x0040 with 0xa5") {
		t.Errorf("fill output = %q", out)
	}

	out, err = run(t, append(args, "dump", "--start", "0x3e", "--length", "12")...)
	if err != nil {
		t.Fatalf("dump error = %v", err)
	}
	want := "003e  ff ff a5 a5 a5 a5 a5 a5  a5 a5 ff ff"
	if !strings.HasPrefix(out, want) {
		t.Errorf("dump output = %q, want prefix %q", out, want)
	}
}

func TestUsageErrors(t *testing.T) {
	_, args := simArgs(t, 256)

	tests := []struct {
		name string
		args []string
	}{
		{"read without address", []string{"read"}},
		{"read bad address", []string{"read", "0x10000"}},
		{"write without data", []string{"write", "0"}},
		{"write bad hex", []string{"write", "0", "xyz"}},
		{"fill missing value", []string{"fill", "0", "4"}},
		{"fill bad value", []string{"fill", "0", "4", "256"}},
		{"dump start past end", []string{"dump", "--start", "0x100"}},
		{"probe extra argument", []string{"probe", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(args, tt.args...)...)
			wantExit(t, err, exitUsage)
		})
	}
}

func TestBadSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"backend", []string{"--backend", "serial"}},
		{"address", []string{"--backend", "sim", "--addr", "0x80"}},
		{"size", []string{"--backend", "sim", "--size", "0"}},
		{"probe", []string{"--backend", "sim", "--probe", "ping"}},
		{"poll attempts", []string{"--backend", "sim", "--poll-attempts", "-1"}},
		{"log level", []string{"--backend", "sim", "--log-level", "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(tt.args, "probe")...)
			wantExit(t, err, exitUsage)
		})
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "eeprom.bin")
	conf := filepath.Join(dir, "eeprom.toml")
	toml := `
[bus]
backend = "sim"
name = "` + img + `"

[device]
address = "0x52"
size = 512

[write]
poll_interval = "1us"
`
	if err := os.WriteFile(conf, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "--config", conf, "probe")
	if err != nil {
		t.Fatalf("probe error = %v", err)
	}
	if strings.TrimSpace(out) != "0x52: present" {
		t.Errorf("probe output = %q", out)
	}

	// Flags override the file.
	out, err = run(t, "-c", conf, "--addr", "0x53", "probe")
	if err != nil {
		t.Fatalf("probe error = %v", err)
	}
	if strings.TrimSpace(out) != "0x53: present" {
		t.Errorf("probe output = %q", out)
	}

	if _, err := run(t, "-c", conf, "write", "0x1ff", "aa"); err != nil {
		t.Fatalf("write error = %v", err)
	}
	data, err := os.ReadFile(img)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 512 || data[0x1ff] != 0xAA {
		t.Errorf("image length %d, last byte %#02x", len(data), data[len(data)-1])
	}
}

func TestConfigFile_Missing(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.toml"), "probe")
	wantExit(t, err, exitFailure)
}

func TestBuses_Sim(t *testing.T) {
	out, err := run(t, "--backend", "sim", "buses")
	if err != nil {
		t.Fatalf("buses error = %v", err)
	}
	if strings.TrimSpace(out) != "sim" {
		t.Errorf("buses output = %q", out)
	}
}

func TestSimImage_Oversized(t *testing.T) {
	img, args := simArgs(t, 256)
	seed := bytes.Repeat([]byte{0x77}, 512)
	if err := os.WriteFile(img, seed, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, append(args, "read", "0", "1")...)
	wantExit(t, err, exitUsage)

	got, err := os.ReadFile(img)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, seed) {
		t.Error("rejected image was rewritten")
	}
}

func TestAction_StopsProfileOnFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantLive bool
	}{
		{"success", nil, true},
		{"failure", pkg.ErrNoDevice, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := prof.Start("", "")
			if err != nil {
				t.Fatalf("prof.Start() error = %v", err)
			}
			e := &env{ctx: context.Background(), prof: session}

			got := e.action(func(*cli.Context) error { return tt.err })(nil)
			if tt.err == nil && got != nil {
				t.Fatalf("action() error = %v", got)
			}
			if tt.err != nil {
				wantExit(t, got, exitNoDevice)
			}
			if live := e.prof != nil; live != tt.wantLive {
				t.Errorf("profile session live = %v, want %v", live, tt.wantLive)
			}
			if err := e.after(nil); err != nil {
				t.Errorf("after() error = %v", err)
			}
		})
	}
}
