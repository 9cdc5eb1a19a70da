//go:build !linux

package main

import (
	"fmt"

	"github.com/ardnew/softeeprom/pkg"
)

func openLinux(string) (busCloser, error) {
	return nil, fmt.Errorf("%w: linux backend on this platform", pkg.ErrNotSupported)
}

func linuxAdapters() ([]string, error) {
	return nil, fmt.Errorf("%w: linux backend on this platform", pkg.ErrNotSupported)
}
