// Package periph adapts periph.io I²C buses to [hal.Bus].
//
// [Open] loads the periph.io host drivers and opens a bus by name or number
// through the i2creg registry, so the same code runs on Raspberry Pi, BeagleBone,
// FT232H adapters, and generic Linux sysfs buses. [Wrap] adapts a bus the
// caller already opened, such as an i2ctest.Playback in tests.
package periph
