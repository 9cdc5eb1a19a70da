// Package sim provides an in-memory I²C bus populated with simulated
// 24xx-series EEPROMs.
//
// The model covers what a driver can observe on real hardware:
//
//   - Two-byte big-endian memory addressing with an internal address counter
//   - Sequential reads that wrap at the end of the array
//   - Page writes that roll over within the addressed page
//   - A write cycle after each page write during which the chip does not
//     acknowledge its address (WriteCycle transactions, or forever if negative)
//
// Fault injection hooks ([Bus.SetFault], [FailWriteAt], [FailReadAt]) let
// tests fail an exact transaction, and [Bus.Transactions] counts bus traffic.
//
// # Usage
//
//	bus, chip := sim.New(0x50, sim.ChipConfig{Size: 32768, WriteCycle: 3})
//	drv, err := eeprom.Open(ctx, bus, 0x50, eeprom.DefaultConfig())
//	...
//	fmt.Printf("%x\n", chip.Bytes()[:16])
package sim
