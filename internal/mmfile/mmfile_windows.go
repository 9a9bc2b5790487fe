//go:build windows

package mmfile

import "os"

// Map reads the whole archive into memory. The release func is a no-op
// because the bytes are owned by the Go heap.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
