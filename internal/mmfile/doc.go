// Package mmfile provides platform-specific helpers for mapping archive files
// into memory. On unix the archive is mmapped read-only; elsewhere it is read
// into the heap and the release func is a no-op.
package mmfile
