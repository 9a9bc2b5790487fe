package bsa

import (
	"github.com/joshuapare/bsakit/pkg/types"
)

// Options controls high-level operations. A nil *Options uses defaults.
type Options struct {
	// OpenOptions is passed to the reader.
	OpenOptions OpenOptions

	// Extract configures ExtractAssets.
	Extract ExtractOptions
}

func (o *Options) open() OpenOptions {
	if o == nil {
		return OpenOptions{}
	}
	return o.OpenOptions
}

func (o *Options) extract() ExtractOptions {
	if o == nil {
		return ExtractOptions{}
	}
	return o.Extract
}

// Aliases re-exported for convenience.
type (
	OpenOptions      = types.OpenOptions
	ExtractOptions   = types.ExtractOptions
	ExtractEvent     = types.ExtractEvent
	ExtractResult    = types.ExtractResult
	Limits           = types.Limits
	Reader           = types.Reader
	ArchiveInfo      = types.ArchiveInfo
	AssetEntry       = types.AssetEntry
	DiagnosticReport = types.DiagnosticReport
)

// Sentinel errors re-exported for convenience.
var (
	ErrNotBSA             = types.ErrNotBSA
	ErrCorrupt            = types.ErrCorrupt
	ErrUnsupportedVersion = types.ErrUnsupportedVersion
	ErrNotFound           = types.ErrNotFound
	ErrInvalidPattern     = types.ErrInvalidPattern
)

// DefaultLimits returns limits that accept every archive the games ship.
func DefaultLimits() Limits { return types.DefaultLimits() }

// StrictLimits returns conservative limits for untrusted input.
func StrictLimits() Limits { return types.StrictLimits() }
