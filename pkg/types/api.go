package types

import (
	"errors"
	"log/slog"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindNone               ErrKind = iota // no error
	ErrKindIO                                // underlying storage unreadable
	ErrKindFormat                            // structural violation of the binary layout
	ErrKindVersionUnsupported                // recognized magic, unrecognized version
	ErrKindNotFound                          // requested asset absent
	ErrKindInvalidArgument                   // bad pattern, call on wrong handle state
	ErrKindCompression                       // compressed block failed to inflate
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNone:
		return "None"
	case ErrKindIO:
		return "IOFailure"
	case ErrKindFormat:
		return "FormatInvalid"
	case ErrKindVersionUnsupported:
		return "VersionUnsupported"
	case ErrKindNotFound:
		return "NotFound"
	case ErrKindInvalidArgument:
		return "InvalidArgument"
	case ErrKindCompression:
		return "Compression"
	default:
		return "Unknown"
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, ErrKindNone for
// nil, and ErrKindIO for foreign errors.
func KindOf(err error) ErrKind {
	if err == nil {
		return ErrKindNone
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ErrKindIO
}

// Sentinels commonly returned by implementations.
var (
	// ErrNotBSA indicates the file lacks the "BSA\0" signature.
	ErrNotBSA = &Error{Kind: ErrKindFormat, Msg: "not a BSA archive"}
	// ErrCorrupt indicates a structural inconsistency in the directory.
	ErrCorrupt = &Error{Kind: ErrKindFormat, Msg: "corrupt archive structure"}
	// ErrUnsupportedVersion indicates an archive revision this library does not read.
	ErrUnsupportedVersion = &Error{Kind: ErrKindVersionUnsupported, Msg: "unsupported archive version"}
	// ErrNotFound indicates a missing asset.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "asset not found"}
	// ErrClosed indicates a call on a closed reader or handle.
	ErrClosed = &Error{Kind: ErrKindInvalidArgument, Msg: "archive is closed"}
	// ErrInvalidPattern indicates an asset pattern that does not compile.
	ErrInvalidPattern = &Error{Kind: ErrKindInvalidArgument, Msg: "invalid asset pattern"}
)

// -----------------------------------------------------------------------------
// Archive Metadata
// -----------------------------------------------------------------------------

// ArchiveInfo exposes the decoded archive header.
type ArchiveInfo struct {
	Version            uint32 // raw header version (103, 104, 105)
	Major              uint32 // revision triple resolved from Version
	Minor              uint32
	Patch              uint32
	Game               string // games known to write this revision
	Codec              string // compression codec for this revision
	Flags              uint32 // archive flag bitfield
	Compressed         bool   // files compressed unless inverted per file
	EmbeddedNames      bool   // data blocks are prefixed by their path
	BigEndianHashes    bool   // name hashes stored big-endian
	NamesAvailable     bool   // folder and file names are stored
	FolderCount        int
	FileCount          int
	TotalFolderNameLen int
	TotalFileNameLen   int
	FileFlags          uint32 // content-type hints (meshes, textures, ...)
	Size               int64  // size of the backing buffer
}

// AssetEntry is a read-only view of one asset, produced on demand.
type AssetEntry struct {
	Path       string // folder\file, lower-cased; hash placeholders when names are absent
	FolderHash uint64
	FileHash   uint64
	Size       uint32 // stored size (compressed size for compressed assets)
	Compressed bool
	Offset     uint32 // absolute offset of the data block
}

// -----------------------------------------------------------------------------
// Open Options
// -----------------------------------------------------------------------------

// OpenOptions controls safety/performance tradeoffs for constructing a Reader.
type OpenOptions struct {
	// InMemory reads the whole file into the heap instead of mapping it.
	InMemory bool

	// LegacyRevisions accepts Oblivion-era (103) archives.
	LegacyRevisions bool

	// Limits guards against hostile counts and sizes. Zero fields use
	// DefaultLimits.
	Limits Limits

	// CollectDiagnostics records non-fatal findings seen while building the
	// index; retrieve them with GetDiagnostics.
	CollectDiagnostics bool

	// Logger receives debug records. Nil discards them.
	Logger *slog.Logger
}

// -----------------------------------------------------------------------------
// Read-Only API
// -----------------------------------------------------------------------------

// Reader is a read-only view over one archive. Implementations are immutable
// after open and safe for concurrent reads until Close.
type Reader interface {
	// Close releases the backing buffer. Calling it twice is a no-op.
	Close() error

	// Info returns decoded header metadata.
	Info() ArchiveInfo

	// Query compiles pattern (case-insensitive regular expression; empty
	// matches everything) into a restartable, lazily evaluated query.
	Query(pattern string) (AssetQuery, error)

	// Assets materializes Query(pattern) in directory order.
	Assets(pattern string) ([]AssetEntry, error)

	// Lookup resolves a virtual path through the hash index.
	Lookup(path string) (AssetEntry, error)

	// Contains reports whether path names an asset in the archive.
	Contains(path string) (bool, error)

	// ReadAsset returns the decompressed bytes of the asset at path.
	ReadAsset(path string) ([]byte, error)

	// ReadEntry returns the decompressed bytes of an entry from this reader.
	ReadEntry(e AssetEntry) ([]byte, error)

	// Checksum returns the CRC-32 (IEEE) of the decompressed asset.
	Checksum(path string) (uint32, error)

	// Diagnose performs an exhaustive scan of the directory and data blocks.
	Diagnose() (*DiagnosticReport, error)

	// GetDiagnostics returns findings collected at open time when
	// OpenOptions.CollectDiagnostics was set, nil otherwise.
	GetDiagnostics() *DiagnosticReport
}

// AssetQuery is a compiled filter. Each call to Iter starts a fresh pass.
type AssetQuery interface {
	Pattern() string
	Iter() AssetIter
}

// AssetIter walks matching assets without materializing them.
type AssetIter interface {
	Next() bool
	Entry() AssetEntry
	Err() error
}

// -----------------------------------------------------------------------------
// Extraction
// -----------------------------------------------------------------------------

// ExtractEventType identifies a progress notification.
type ExtractEventType int

const (
	ExtractStart ExtractEventType = iota
	ExtractFileDone
	ExtractFileSkipped
	ExtractComplete
)

// ExtractEvent reports extraction progress.
type ExtractEvent struct {
	Type  ExtractEventType
	Path  string
	Bytes int64
	Done  int
	Total int
}

// ExtractOptions configures writing assets to disk.
type ExtractOptions struct {
	// Overwrite replaces existing files; otherwise they are skipped.
	Overwrite bool
	// Workers bounds concurrent writers. Zero uses runtime.NumCPU().
	Workers int
	// Progress, if set, is called from worker goroutines.
	Progress func(ExtractEvent)
}

// ExtractResult summarizes an extraction.
type ExtractResult struct {
	Written []string // virtual paths written
	Skipped []string // virtual paths skipped because the target existed
	Bytes   int64
}
