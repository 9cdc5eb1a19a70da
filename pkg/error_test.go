package pkg

import (
	"errors"
	"fmt"
	"testing"
)

func TestTxStatus_String(t *testing.T) {
	tests := []struct {
		status TxStatus
		want   string
	}{
		{TxStatusSuccess, "success"},
		{TxStatusError, "error"},
		{TxStatusNAK, "nak"},
		{TxStatusBus, "bus"},
		{TxStatusNoDevice, "no-device"},
		{TxStatusTimeout, "timeout"},
		{TxStatusCancelled, "cancelled"},
		{TxStatusClosed, "closed"},
		{TxStatusInvalid, "invalid"},
		{TxStatus(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("TxStatus.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTxStatus_Error(t *testing.T) {
	tests := []struct {
		status  TxStatus
		wantErr error
	}{
		{TxStatusSuccess, nil},
		{TxStatusNAK, ErrNAK},
		{TxStatusBus, ErrBus},
		{TxStatusNoDevice, ErrNoDevice},
		{TxStatusTimeout, ErrTimeout},
		{TxStatusCancelled, ErrCancelled},
		{TxStatusClosed, ErrClosed},
		{TxStatusInvalid, ErrInvalidParameter},
		{TxStatusError, ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			err := tt.status.Error()
			if tt.wantErr == nil && err != nil {
				t.Errorf("TxStatus.Error() = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("TxStatus.Error() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStatusOf_RoundTrip(t *testing.T) {
	statuses := []TxStatus{
		TxStatusSuccess,
		TxStatusNAK,
		TxStatusBus,
		TxStatusNoDevice,
		TxStatusTimeout,
		TxStatusCancelled,
		TxStatusClosed,
		TxStatusInvalid,
	}

	for _, s := range statuses {
		t.Run(s.String(), func(t *testing.T) {
			if got := StatusOf(s.Error()); got != s {
				t.Errorf("StatusOf(%v.Error()) = %v", s, got)
			}
		})
	}
}

func TestStatusOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("eeprom 0x50: write 0x0010: %w", ErrNAK)
	if got := StatusOf(err); got != TxStatusNAK {
		t.Errorf("StatusOf(wrapped NAK) = %v, want nak", got)
	}
	if got := StatusOf(errors.New("something else")); got != TxStatusError {
		t.Errorf("StatusOf(unknown) = %v, want error", got)
	}
}

func TestSentinelErrors(t *testing.T) {
	// Verify all sentinel errors are distinct
	errs := []error{
		ErrNAK,
		ErrBus,
		ErrBusNotReady,
		ErrClosed,
		ErrTimeout,
		ErrCancelled,
		ErrProtocol,
		ErrNoDevice,
		ErrNotOpen,
		ErrInvalidAddress,
		ErrInvalidParameter,
		ErrBufferTooSmall,
		ErrNotSupported,
	}

	for i, err1 := range errs {
		if err1 == nil {
			t.Errorf("error %d is nil", i)
			continue
		}
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("error %d and %d are equal", i, j)
			}
		}
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err     error
		wantMsg string
	}{
		{ErrNAK, "NAK received"},
		{ErrTimeout, "write cycle timeout"},
		{ErrNoDevice, "device not present"},
		{ErrBusNotReady, "bus not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.wantMsg, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("error.Error() = %v, want %v", got, tt.wantMsg)
			}
		})
	}
}
