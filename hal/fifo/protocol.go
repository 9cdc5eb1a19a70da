package fifo

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ardnew/softeeprom/pkg"
)

// Message types for the FIFO protocol.
const (
	msgTx    = 0x01 // Transaction request
	msgData  = 0x02 // Read data response
	msgAck   = 0x03 // Write-only transaction acknowledged
	msgNak   = 0x04 // Device did not acknowledge
	msgError = 0x05 // Other failure, payload is one pkg.TxStatus byte
)

// Buffer sizes.
const (
	// MaxTransfer is the largest write or read phase of one transaction.
	MaxTransfer = 4096

	headerSize     = 3 // type (1) + length (2)
	txHeaderSize   = 4 // addr (2) + read length (2)
	maxPayloadSize = txHeaderSize + MaxTransfer
	maxMessageSize = headerSize + maxPayloadSize
)

// Timing constants.
const (
	readPoll       = 100 * time.Millisecond // Deadline slice for cancellable reads
	defaultTimeout = 5 * time.Second        // Client response timeout
)

// FIFO file names inside the bus directory.
const (
	fifoRequest  = "request"
	fifoResponse = "response"
)

// deadlineReader is implemented by *os.File and net.Conn.
type deadlineReader interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// readFull reads exactly len(buf) bytes. If r supports read deadlines, the
// read is sliced so ctx cancellation is noticed within readPoll.
func readFull(ctx context.Context, r io.Reader, buf []byte) (int, error) {
	dr, ok := r.(deadlineReader)
	if !ok {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		return io.ReadFull(r, buf)
	}
	defer dr.SetReadDeadline(time.Time{})

	total := 0
	for total < len(buf) {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		dr.SetReadDeadline(time.Now().Add(readPoll))
		n, err := dr.Read(buf[total:])
		total += n
		if err != nil {
			if os.IsTimeout(err) {
				continue
			}
			if err == io.EOF && total > 0 {
				return total, io.ErrUnexpectedEOF
			}
			return total, err
		}
	}
	return total, nil
}

// writeMessage frames payload as [type][len LE16][payload] into buf and
// writes it with a single call.
func writeMessage(w io.Writer, buf []byte, typ byte, payload []byte) error {
	n := headerSize + len(payload)
	if n > len(buf) {
		return pkg.ErrBufferTooSmall
	}
	buf[0] = typ
	binary.LittleEndian.PutUint16(buf[1:3], uint16(len(payload)))
	copy(buf[headerSize:], payload)

	written := 0
	for written < n {
		m, err := w.Write(buf[written:n])
		written += m
		if err != nil {
			return err
		}
	}
	return nil
}

// readMessage reads one framed message into buf and returns its type and
// payload, which aliases buf.
func readMessage(ctx context.Context, r io.Reader, buf []byte) (byte, []byte, error) {
	if _, err := readFull(ctx, r, buf[:headerSize]); err != nil {
		return 0, nil, err
	}
	typ := buf[0]
	length := int(binary.LittleEndian.Uint16(buf[1:3]))
	if length > len(buf)-headerSize {
		return typ, nil, fmt.Errorf("%w: message of %d bytes", pkg.ErrProtocol, length)
	}
	payload := buf[headerSize : headerSize+length]
	if _, err := readFull(ctx, r, payload); err != nil {
		return typ, nil, err
	}
	return typ, payload, nil
}

// putTx encodes a transaction request payload into buf.
func putTx(buf []byte, addr uint16, w []byte, readLen int) []byte {
	binary.LittleEndian.PutUint16(buf[0:2], addr)
	binary.LittleEndian.PutUint16(buf[2:4], uint16(readLen))
	n := copy(buf[txHeaderSize:], w)
	return buf[:txHeaderSize+n]
}

// parseTx decodes a transaction request payload.
func parseTx(payload []byte) (addr uint16, w []byte, readLen int, err error) {
	if len(payload) < txHeaderSize {
		return 0, nil, 0, fmt.Errorf("%w: short transaction request", pkg.ErrProtocol)
	}
	addr = binary.LittleEndian.Uint16(payload[0:2])
	readLen = int(binary.LittleEndian.Uint16(payload[2:4]))
	if readLen > MaxTransfer {
		return 0, nil, 0, fmt.Errorf("%w: read of %d bytes", pkg.ErrProtocol, readLen)
	}
	return addr, payload[txHeaderSize:], readLen, nil
}
