//go:build linux

package main

import (
	"strconv"
	"strings"

	"github.com/ardnew/softeeprom/hal/linux"
)

// openLinux opens /dev/i2c-N by number or an i2c-dev node by path.
func openLinux(name string) (busCloser, error) {
	var (
		b   *linux.Bus
		err error
	)
	switch n, convErr := strconv.Atoi(name); {
	case name == "":
		b, err = linux.Open(1)
	case strings.HasPrefix(name, "/"):
		b, err = linux.OpenPath(name)
	case convErr == nil:
		b, err = linux.Open(n)
	default:
		b, err = linux.OpenPath(linux.DevfsI2CPrefix + strings.TrimPrefix(name, "i2c-"))
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// linuxAdapters lists i2c-dev adapters.
func linuxAdapters() ([]string, error) {
	adapters, err := linux.Adapters()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, a.Path+"\t"+a.Name)
	}
	return out, nil
}
