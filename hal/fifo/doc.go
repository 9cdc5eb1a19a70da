// Package fifo carries I²C transactions over a pair of named pipes.
//
// A server process ([Serve]) owns a bus directory containing two FIFOs,
// request and response, and executes each request against a target
// [hal.Bus], typically a simulated EEPROM. A client ([Dial]) implements
// hal.Bus by forwarding every Tx through the pipes. This lets the command
// line tool be exercised end to end without hardware.
//
// # Protocol
//
// Every message is framed as [type][length LE16][payload]. A request
// (type 0x01) carries [addr LE16][read length LE16][write bytes]. The
// server answers with exactly one of:
//
//	0x02 data   payload is the bytes read
//	0x03 ack    write-only transaction succeeded
//	0x04 nak    device did not acknowledge
//	0x05 error  payload is one pkg.TxStatus byte
//
// A client that sees a malformed or missing response fails all later
// transactions, since the stream may be out of step.
package fifo
