//go:build linux

package linux

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// Adapter Discovery
// =============================================================================

// AdapterInfo describes an i2c-dev adapter found in sysfs.
type AdapterInfo struct {
	Number int    // N in /dev/i2c-N
	Path   string // Device node path
	Name   string // Adapter name reported by the kernel driver
}

// Adapters lists i2c-dev adapters in bus number order.
func Adapters() ([]AdapterInfo, error) {
	return scanAdapters(SysfsI2CDevPath)
}

// scanAdapters reads adapter entries from a sysfs class directory.
func scanAdapters(root string) ([]AdapterInfo, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var adapters []AdapterInfo
	for _, entry := range entries {
		num, ok := parseAdapterName(entry.Name())
		if !ok {
			continue
		}
		adapters = append(adapters, AdapterInfo{
			Number: num,
			Path:   DevfsI2CPrefix + strconv.Itoa(num),
			Name:   readSysfsString(filepath.Join(root, entry.Name(), "name")),
		})
	}

	sort.Slice(adapters, func(i, j int) bool {
		return adapters[i].Number < adapters[j].Number
	})
	return adapters, nil
}

// parseAdapterName extracts N from an "i2c-N" entry name.
func parseAdapterName(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "i2c-")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// readSysfsString reads a sysfs attribute, trimming whitespace.
func readSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
