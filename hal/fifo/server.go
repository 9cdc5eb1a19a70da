package fifo

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/ardnew/softeeprom/hal"
	"github.com/ardnew/softeeprom/pkg"
)

// Server executes FIFO protocol requests against a target bus.
type Server struct {
	target hal.Bus

	// Internal buffers (zero-allocation)
	rxBuf   [maxMessageSize]byte
	txBuf   [maxMessageSize]byte
	readBuf [MaxTransfer]byte

	served int
}

// NewServer returns a server forwarding transactions to target.
func NewServer(target hal.Bus) *Server {
	return &Server{target: target}
}

// Served returns the number of transactions handled.
func (s *Server) Served() int {
	return s.served
}

// Serve creates the request and response FIFOs in dir and serves them
// until ctx is cancelled. The FIFOs are removed on return.
func Serve(ctx context.Context, dir string, target hal.Bus) error {
	if target == nil {
		return pkg.ErrBusNotReady
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create bus dir: %w", err)
	}

	reqPath := filepath.Join(dir, fifoRequest)
	respPath := filepath.Join(dir, fifoResponse)
	if err := createFIFO(reqPath); err != nil {
		return err
	}
	defer os.Remove(reqPath)
	if err := createFIFO(respPath); err != nil {
		return err
	}
	defer os.Remove(respPath)

	// O_RDWR keeps both pipes open across client reconnects.
	req, err := os.OpenFile(reqPath, os.O_RDWR|syscall.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", fifoRequest, err)
	}
	defer req.Close()
	resp, err := os.OpenFile(respPath, os.O_RDWR|syscall.O_NONBLOCK, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", fifoResponse, err)
	}
	defer resp.Close()

	pkg.LogInfo(pkg.ComponentSim, "fifo bus serving", "dir", dir)
	err = NewServer(target).ServeConn(ctx, req, resp)
	pkg.LogInfo(pkg.ComponentSim, "fifo bus stopped", "dir", dir)
	return err
}

// createFIFO creates a named pipe, replacing any existing file.
func createFIFO(path string) error {
	os.Remove(path)
	if err := syscall.Mkfifo(path, 0o666); err != nil {
		return fmt.Errorf("mkfifo %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ServeConn reads requests from r and writes responses to w until ctx is
// cancelled or r reports an error. Cancellation returns nil.
func (s *Server) ServeConn(ctx context.Context, r io.Reader, w io.Writer) error {
	for {
		typ, payload, err := readMessage(ctx, r, s.rxBuf[:])
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := s.handle(w, typ, payload); err != nil {
			return err
		}
	}
}

// handle executes one request and writes its response.
func (s *Server) handle(w io.Writer, typ byte, payload []byte) error {
	if typ != msgTx {
		pkg.LogDebug(pkg.ComponentSim, "unexpected request", "type", typ)
		return writeMessage(w, s.txBuf[:], msgError, []byte{byte(pkg.TxStatusInvalid)})
	}

	addr, data, readLen, err := parseTx(payload)
	if err != nil {
		return writeMessage(w, s.txBuf[:], msgError, []byte{byte(pkg.TxStatusInvalid)})
	}

	var r []byte
	if readLen > 0 {
		r = s.readBuf[:readLen]
	}
	err = s.target.Tx(addr, data, r)
	s.served++
	if pkg.LogEnabled(slog.LevelDebug) {
		pkg.LogDebug(pkg.ComponentSim, "tx",
			"addr", addr, "w", hex.EncodeToString(data), "r", hex.EncodeToString(r), "error", err)
	}

	switch {
	case err == nil && readLen > 0:
		return writeMessage(w, s.txBuf[:], msgData, r)
	case err == nil:
		return writeMessage(w, s.txBuf[:], msgAck, nil)
	case errors.Is(err, pkg.ErrNAK):
		return writeMessage(w, s.txBuf[:], msgNak, nil)
	default:
		pkg.LogDebug(pkg.ComponentSim, "target transaction failed", "addr", addr, "error", err)
		return writeMessage(w, s.txBuf[:], msgError, []byte{byte(pkg.StatusOf(err))})
	}
}
