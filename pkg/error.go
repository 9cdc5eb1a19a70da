package pkg

import "errors"

// Bus and device errors.
var (
	// ErrNAK indicates the addressed device did not acknowledge a transaction.
	ErrNAK = errors.New("NAK received")

	// ErrBus indicates an adapter-level bus failure (arbitration loss, I/O error).
	ErrBus = errors.New("bus error")

	// ErrBusNotReady indicates no usable bus handle was supplied.
	ErrBusNotReady = errors.New("bus not ready")

	// ErrClosed indicates the bus handle has been closed.
	ErrClosed = errors.New("bus closed")

	// ErrTimeout indicates the device did not finish its write cycle in time.
	ErrTimeout = errors.New("write cycle timeout")

	// ErrCancelled indicates the operation was cancelled.
	ErrCancelled = errors.New("operation cancelled")

	// ErrProtocol indicates a malformed or unexpected protocol message.
	ErrProtocol = errors.New("protocol error")

	// ErrNoDevice indicates no device acknowledged at the slave address.
	ErrNoDevice = errors.New("device not present")

	// ErrNotOpen indicates the driver has not been opened successfully.
	ErrNotOpen = errors.New("device not open")

	// ErrInvalidAddress indicates a slave address outside the 7-bit range.
	ErrInvalidAddress = errors.New("invalid device address")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrBufferTooSmall indicates the provided buffer is too small.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrNotSupported indicates an unsupported operation or feature.
	ErrNotSupported = errors.New("not supported")
)

// TxStatus represents the completion status of a bus transaction.
type TxStatus uint8

// Transaction status values.
const (
	TxStatusSuccess   TxStatus = iota // Transaction completed
	TxStatusError                     // Unclassified failure
	TxStatusNAK                       // Device did not acknowledge
	TxStatusBus                       // Adapter-level bus failure
	TxStatusNoDevice                  // Nothing at the slave address
	TxStatusTimeout                   // Timed out
	TxStatusCancelled                 // Cancelled
	TxStatusClosed                    // Bus closed
	TxStatusInvalid                   // Invalid parameter
)

// String returns a string representation of the transaction status.
func (s TxStatus) String() string {
	switch s {
	case TxStatusSuccess:
		return "success"
	case TxStatusError:
		return "error"
	case TxStatusNAK:
		return "nak"
	case TxStatusBus:
		return "bus"
	case TxStatusNoDevice:
		return "no-device"
	case TxStatusTimeout:
		return "timeout"
	case TxStatusCancelled:
		return "cancelled"
	case TxStatusClosed:
		return "closed"
	case TxStatusInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Error returns the corresponding error for the transaction status.
func (s TxStatus) Error() error {
	switch s {
	case TxStatusSuccess:
		return nil
	case TxStatusNAK:
		return ErrNAK
	case TxStatusBus:
		return ErrBus
	case TxStatusNoDevice:
		return ErrNoDevice
	case TxStatusTimeout:
		return ErrTimeout
	case TxStatusCancelled:
		return ErrCancelled
	case TxStatusClosed:
		return ErrClosed
	case TxStatusInvalid:
		return ErrInvalidParameter
	default:
		return ErrProtocol
	}
}

// StatusOf classifies err into a transaction status. It is the inverse of
// [TxStatus.Error] for the sentinel errors of this package; anything else
// maps to [TxStatusError].
func StatusOf(err error) TxStatus {
	switch {
	case err == nil:
		return TxStatusSuccess
	case errors.Is(err, ErrNAK):
		return TxStatusNAK
	case errors.Is(err, ErrBus):
		return TxStatusBus
	case errors.Is(err, ErrNoDevice):
		return TxStatusNoDevice
	case errors.Is(err, ErrTimeout):
		return TxStatusTimeout
	case errors.Is(err, ErrCancelled):
		return TxStatusCancelled
	case errors.Is(err, ErrClosed):
		return TxStatusClosed
	case errors.Is(err, ErrInvalidParameter):
		return TxStatusInvalid
	default:
		return TxStatusError
	}
}
