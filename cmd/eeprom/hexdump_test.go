package main

import (
	"bytes"
	"testing"
)

func TestHexdump(t *testing.T) {
	tests := []struct {
		name string
		base uint16
		data []byte
		want string
	}{
		{
			name: "empty",
			data: nil,
			want: "",
		},
		{
			name: "partial line",
			base: 0x0010,
			data: []byte("Hi\x00"),
			want: "0010  48 69 00                                          |Hi.|\n",
		},
		{
			name: "full line",
			data: []byte("0123456789abcdef"),
			want: "0000  30 31 32 33 34 35 36 37  38 39 61 62 63 64 65 66  |0123456789abcdef|\n",
		},
		{
			name: "wrapping offset",
			base: 0xFFF8,
			data: bytes.Repeat([]byte{0xFF}, 17),
			want: "fff8  ff ff ff ff ff ff ff ff  ff ff ff ff ff ff ff ff  |................|\n" +
				"0008  ff                                                |.|\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := hexdump(&buf, tt.base, tt.data); err != nil {
				t.Fatalf("hexdump() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("hexdump() =\n%q\nwant\n%q", buf.String(), tt.want)
			}
		})
	}
}
