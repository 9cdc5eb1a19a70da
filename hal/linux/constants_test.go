package linux

import (
	"strings"
	"testing"
)

// =============================================================================
// ioctl Request Tests
// =============================================================================

func TestIoctlRequests(t *testing.T) {
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"I2C_RETRIES", ioctlI2CRetries, 0x0701},
		{"I2C_TIMEOUT", ioctlI2CTimeout, 0x0702},
		{"I2C_FUNCS", ioctlI2CFuncs, 0x0705},
		{"I2C_RDWR", ioctlI2CRdwr, 0x0707},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %#04x, want %#04x", tt.name, tt.got, tt.want)
		}
	}
}

func TestFuncBits(t *testing.T) {
	if FuncI2C&FuncSMBusQuick != 0 {
		t.Error("FuncI2C and FuncSMBusQuick overlap")
	}
	if msgRead != 0x0001 {
		t.Errorf("msgRead = %#04x, want 0x0001", msgRead)
	}
}

// =============================================================================
// Limit Tests
// =============================================================================

func TestMaxMessageLen(t *testing.T) {
	// A 2-byte address plus one data byte must fit.
	if MaxMessageLen < 3 {
		t.Errorf("MaxMessageLen = %d, should be at least 3", MaxMessageLen)
	}
}

func TestPaths(t *testing.T) {
	if !strings.HasPrefix(DevfsI2CPrefix, "/dev/") {
		t.Errorf("DevfsI2CPrefix = %q, should be under /dev", DevfsI2CPrefix)
	}
	if !strings.HasPrefix(SysfsI2CDevPath, "/sys/") {
		t.Errorf("SysfsI2CDevPath = %q, should be under /sys", SysfsI2CDevPath)
	}
}
