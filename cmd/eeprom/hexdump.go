package main

import (
	"bufio"
	"fmt"
	"io"
)

const dumpWidth = 16

// hexdump writes data as offset, hex, and ASCII columns. Offsets start at
// base and wrap like device addresses.
func hexdump(w io.Writer, base uint16, data []byte) error {
	bw := bufio.NewWriter(w)
	for off := 0; off < len(data); off += dumpWidth {
		line := data[off:min(off+dumpWidth, len(data))]

		fmt.Fprintf(bw, "%04x ", base+uint16(off))
		for i := 0; i < dumpWidth; i++ {
			if i == dumpWidth/2 {
				bw.WriteByte(' ')
			}
			if i < len(line) {
				fmt.Fprintf(bw, " %02x", line[i])
			} else {
				bw.WriteString("   ")
			}
		}

		bw.WriteString("  |")
		for _, c := range line {
			if c < 0x20 || c > 0x7E {
				c = '.'
			}
			bw.WriteByte(c)
		}
		bw.WriteString("|\n")
	}
	return bw.Flush()
}
