// Package reader provides the concrete types.Reader implementation. The
// exported entry points are used by the public wrappers (pkg/bsa, bindings
// and the CLI) to obtain a types.Reader without exposing the internal
// parsing machinery directly.
package reader

import (
	"errors"
	"fmt"
	"hash/crc32"
	"log/slog"

	"github.com/joshuapare/bsakit/internal/format"
	"github.com/joshuapare/bsakit/pkg/types"
)

// Open maps the archive at path and returns an implementation of types.Reader.
func Open(path string, opts types.OpenOptions) (types.Reader, error) {
	src, err := openSource(path, opts.InMemory)
	if err != nil {
		return nil, wrapIOErr(err)
	}
	r, err := newReader(src, opts)
	if err != nil {
		_ = src.close()
		return nil, err
	}
	r.log.Debug("archive opened", "path", path, "source", src.kind)
	return r, nil
}

// OpenBytes creates a reader backed by the provided buffer. The buffer must
// not be modified while the reader is open.
func OpenBytes(b []byte, opts types.OpenOptions) (types.Reader, error) {
	r, err := newReader(ownedSource(b), opts)
	if err != nil {
		return nil, err
	}
	return r, nil
}

type reader struct {
	src         *source
	buf         []byte
	opts        types.OpenOptions
	head        format.Header
	idx         *index
	log         *slog.Logger
	closed      bool
	diagnostics *diagnosticCollector // nil unless CollectDiagnostics=true
}

func newReader(src *source, opts types.OpenOptions) (*reader, error) {
	opts.Limits = opts.Limits.WithDefaults()
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	b := src.bytes()
	head, err := format.ParseHeader(b, format.HeaderOptions{Legacy: opts.LegacyRevisions})
	if err != nil {
		log.Debug("header rejected", "size", len(b), "err", err)
		return nil, wrapFormatErr(err)
	}

	r := &reader{
		src:  src,
		buf:  b,
		opts: opts,
		head: head,
		log:  log,
	}
	if opts.CollectDiagnostics {
		r.diagnostics = newDiagnosticCollector()
	}

	idx, err := buildIndex(b, head, opts.Limits, r.recordDiagnostic)
	if err != nil {
		log.Debug("directory rejected", "err", err)
		return nil, wrapFormatErr(err)
	}
	r.idx = idx
	log.Debug("directory indexed",
		"version", head.Revision.String(),
		"folders", len(idx.folders),
		"files", len(idx.files),
		"names", idx.namesAvailable,
	)
	return r, nil
}

// Close releases resources (unmaps the buffer if necessary).
func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.buf = nil
	if err := r.src.close(); err != nil {
		return wrapIOErr(err)
	}
	return nil
}

func (r *reader) ensureOpen() error {
	if r.closed {
		return types.ErrClosed
	}
	return nil
}

func (r *reader) Info() types.ArchiveInfo {
	h := r.head
	info := types.ArchiveInfo{
		Version:            h.Version,
		Major:              h.Revision.Major,
		Minor:              h.Revision.Minor,
		Patch:              h.Revision.Patch,
		Game:               h.Revision.Game,
		Codec:              h.Revision.Codec.String(),
		Flags:              uint32(h.Flags),
		Compressed:         h.Compressed(),
		EmbeddedNames:      h.EmbedsNames(),
		BigEndianHashes:    h.Flags.Has(format.FlagBigEndian),
		FolderCount:        int(h.FolderCount),
		FileCount:          int(h.FileCount),
		TotalFolderNameLen: int(h.TotalFolderNameLen),
		TotalFileNameLen:   int(h.TotalFileNameLen),
		FileFlags:          h.FileFlags,
		Size:               int64(len(r.buf)),
	}
	if r.idx != nil {
		info.NamesAvailable = r.idx.namesAvailable
	}
	return info
}

func (r *reader) Lookup(path string) (types.AssetEntry, error) {
	if err := r.ensureOpen(); err != nil {
		return types.AssetEntry{}, err
	}
	i, ok := r.idx.lookup(path)
	if !ok {
		return types.AssetEntry{}, &types.Error{
			Kind: types.ErrKindNotFound,
			Msg:  fmt.Sprintf("asset %q", path),
			Err:  types.ErrNotFound,
		}
	}
	return r.entry(i), nil
}

func (r *reader) Contains(path string) (bool, error) {
	if err := r.ensureOpen(); err != nil {
		return false, err
	}
	_, ok := r.idx.lookup(path)
	return ok, nil
}

func (r *reader) ReadAsset(path string) ([]byte, error) {
	e, err := r.Lookup(path)
	if err != nil {
		return nil, err
	}
	return r.ReadEntry(e)
}

func (r *reader) ReadEntry(e types.AssetEntry) ([]byte, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	data, err := r.readData(e)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", e.Path, err)
	}
	return data, nil
}

func (r *reader) Checksum(path string) (uint32, error) {
	data, err := r.ReadAsset(path)
	if err != nil {
		return 0, err
	}
	return crc32.ChecksumIEEE(data), nil
}

// entry renders the i-th file in directory order.
func (r *reader) entry(i int) types.AssetEntry {
	f := r.idx.files[i]
	return types.AssetEntry{
		Path:       r.idx.path(i),
		FolderHash: r.idx.folders[f.folder].hash,
		FileHash:   f.rec.Hash,
		Size:       f.rec.Size(),
		Compressed: f.rec.Compressed(r.head),
		Offset:     f.rec.Offset,
	}
}

// Error helpers --------------------------------------------------------------

func wrapIOErr(err error) error {
	return &types.Error{Kind: types.ErrKindIO, Msg: err.Error(), Err: err}
}

func wrapFormatErr(err error) error {
	var te *types.Error
	switch {
	case errors.As(err, &te):
		return err
	case errors.Is(err, format.ErrSignatureMismatch):
		return types.ErrNotBSA
	case errors.Is(err, format.ErrUnknownVersion):
		return fmt.Errorf("%w: %w", types.ErrUnsupportedVersion, err)
	case errors.Is(err, format.ErrDecompress):
		return &types.Error{Kind: types.ErrKindCompression, Msg: "asset decompression failed", Err: err}
	default:
		// Truncation, out-of-bounds reads and ordering violations all mean
		// the directory cannot be trusted.
		return fmt.Errorf("%w: %w", types.ErrCorrupt, err)
	}
}

// Diagnostics & Forensics -------------------------------------------------------

// recordDiagnostic forwards an open-time finding to the collector, if any.
func (r *reader) recordDiagnostic(d types.Diagnostic) {
	if r.diagnostics != nil {
		r.diagnostics.record(d)
	}
}

// GetDiagnostics returns the findings recorded while opening, or nil unless
// CollectDiagnostics was set.
func (r *reader) GetDiagnostics() *types.DiagnosticReport {
	if r.diagnostics == nil {
		return nil
	}
	return r.diagnostics.getReport()
}

// Diagnose performs an exhaustive archive scan.
func (r *reader) Diagnose() (*types.DiagnosticReport, error) {
	if err := r.ensureOpen(); err != nil {
		return nil, err
	}
	return newDiagnosticScanner(r).scan(), nil
}

// Ensure reader implements the desired interface.
var _ types.Reader = (*reader)(nil)
