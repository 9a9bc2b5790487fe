package types

// Archive limits. The engine writes folder and file counts as uint32, but
// shipped archives stay far below that; the defaults reject headers that
// would make the index allocate gigabytes before any validation happens.
const (
	// DefaultMaxFolders covers the largest vanilla archives (~5k folders)
	// with a wide margin.
	DefaultMaxFolders = 1 << 20

	// DefaultMaxFiles covers the largest vanilla archives (~100k files)
	// with a wide margin.
	DefaultMaxFiles = 1 << 22

	// DefaultMaxAssetSize caps the decompressed size of a single asset
	// (1 GiB). The on-disk size field is 30 bits wide.
	DefaultMaxAssetSize = 1 << 30

	// StrictMaxAssetSize is used by StrictLimits (64 MiB).
	StrictMaxAssetSize = 64 << 20

	// StrictMaxFolders is used by StrictLimits.
	StrictMaxFolders = 1 << 14

	// StrictMaxFiles is used by StrictLimits.
	StrictMaxFiles = 1 << 18
)

// Limits defines constraints that keep hostile archives from exhausting
// memory.
type Limits struct {
	// MaxFolders is the largest folder count accepted at open.
	MaxFolders int

	// MaxFiles is the largest file count accepted at open.
	MaxFiles int

	// MaxAssetSize is the largest decompressed asset size, in bytes.
	MaxAssetSize int64
}

// DefaultLimits returns limits that accept every archive the games ship.
func DefaultLimits() Limits {
	return Limits{
		MaxFolders:   DefaultMaxFolders,
		MaxFiles:     DefaultMaxFiles,
		MaxAssetSize: DefaultMaxAssetSize,
	}
}

// StrictLimits returns conservative limits for untrusted input.
func StrictLimits() Limits {
	return Limits{
		MaxFolders:   StrictMaxFolders,
		MaxFiles:     StrictMaxFiles,
		MaxAssetSize: StrictMaxAssetSize,
	}
}

// WithDefaults fills zero fields from DefaultLimits.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.MaxFolders <= 0 {
		l.MaxFolders = d.MaxFolders
	}
	if l.MaxFiles <= 0 {
		l.MaxFiles = d.MaxFiles
	}
	if l.MaxAssetSize <= 0 {
		l.MaxAssetSize = d.MaxAssetSize
	}
	return l
}
