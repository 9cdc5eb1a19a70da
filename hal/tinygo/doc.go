// Package tinygo binds a microcontroller I²C peripheral to [hal.Bus] when
// built with TinyGo.
//
// machine.I2C already has the Tx signature hal.Bus requires, so most
// programs can pass machine.I2C0 directly to eeprom.Open. [Open] adds
// peripheral configuration and a nil check so a board without a default
// I²C peripheral fails with pkg.ErrBusNotReady instead of panicking.
//
// # Building
//
//	tinygo flash -target=feather-m4 ./cmd/...
package tinygo
