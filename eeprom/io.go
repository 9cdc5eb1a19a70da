package eeprom

import (
	"context"
	"fmt"
	"io"

	"github.com/ardnew/softeeprom/pkg"
)

// ReadAt implements io.ReaderAt over the first Config.Size bytes of the
// device. A read that reaches the end of the device returns io.EOF along
// with the bytes read.
func (d *Driver) ReadAt(p []byte, off int64) (int, error) {
	n, short, err := d.span(len(p), off)
	if err != nil {
		return 0, err
	}
	got, err := d.ReadBlock(context.Background(), uint16(off), p[:n])
	if err != nil {
		return got, err
	}
	if short {
		return got, io.EOF
	}
	return got, nil
}

// WriteAt implements io.WriterAt over the first Config.Size bytes of the
// device. A write that would pass the end of the device writes what fits
// and returns io.EOF.
func (d *Driver) WriteAt(p []byte, off int64) (int, error) {
	n, short, err := d.span(len(p), off)
	if err != nil {
		return 0, err
	}
	got, err := d.WriteBlock(context.Background(), uint16(off), p[:n])
	if err != nil {
		return got, err
	}
	if short {
		return got, io.EOF
	}
	return got, nil
}

// span clips a transfer of n bytes at off to the device size.
func (d *Driver) span(n int, off int64) (int, bool, error) {
	size := int64(d.cfg.Size)
	if off < 0 || off > size {
		return 0, false, fmt.Errorf("%w: offset %d outside device of %d bytes", pkg.ErrInvalidParameter, off, size)
	}
	if off == size && n > 0 {
		return 0, true, nil
	}
	if rem := size - off; int64(n) > rem {
		return int(rem), true, nil
	}
	return n, false, nil
}

var (
	_ io.ReaderAt = (*Driver)(nil)
	_ io.WriterAt = (*Driver)(nil)
)
