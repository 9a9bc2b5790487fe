package format

import "errors"

var (
	// ErrSignatureMismatch indicates the buffer does not start with "BSA\0".
	ErrSignatureMismatch = errors.New("format: not a BSA archive")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrUnknownVersion indicates a recognized signature with an unmapped revision.
	ErrUnknownVersion = errors.New("format: unknown revision")
	// ErrUnsorted indicates records that violate the ascending hash order.
	ErrUnsorted = errors.New("format: records not sorted by hash")
	// ErrInconsistent indicates header counts or offsets that contradict the tables.
	ErrInconsistent = errors.New("format: inconsistent directory")
	// ErrDecompress indicates a compressed block could not be inflated.
	ErrDecompress = errors.New("format: decompression failed")
)
