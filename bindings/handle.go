// Package bindings exposes archives through a stateful handle whose calls
// report failures in a per-handle error state instead of return values. It
// backs callers that cannot consume Go errors or lazy sequences, such as
// foreign-function wrappers and the listassets example.
//
// A Handle is not safe for concurrent use; guard shared handles with a
// mutex.
package bindings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joshuapare/bsakit/internal/reader"
	"github.com/joshuapare/bsakit/pkg/types"
)

// State is the lifecycle position of a Handle.
type State int

const (
	StateUnopened State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Handle is a session over one archive.
type Handle struct {
	state State
	r     types.Reader
	path  string
	opts  types.OpenOptions
	last  ErrorState
}

// New returns an unopened handle using default options.
func New() *Handle {
	return NewWithOptions(types.OpenOptions{})
}

// NewWithOptions returns an unopened handle that opens archives with opts.
func NewWithOptions(opts types.OpenOptions) *Handle {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Handle{opts: opts}
}

// Open is New followed by Handle.Open. Check LastError for the outcome.
func Open(path string) *Handle {
	h := New()
	h.Open(path)
	return h
}

// State returns the lifecycle state.
func (h *Handle) State() State { return h.state }

// Path returns the path of the open archive.
func (h *Handle) Path() string { return h.path }

// LastError returns the outcome of the most recent call.
func (h *Handle) LastError() ErrorState { return h.last }

// ErrorMessage returns the last error message, empty after a success.
func (h *Handle) ErrorMessage() string {
	if h.last.OK() {
		return ""
	}
	return h.last.Message
}

// ReadErrorMessage copies the last error message into dst and returns the
// full message length. A dst shorter than the message receives a truncated
// copy and StatusInvalidArgs. The handle's error state is not changed.
func (h *Handle) ReadErrorMessage(dst []byte) (int, StatusCode) {
	msg := h.ErrorMessage()
	n := copy(dst, msg)
	if n < len(msg) {
		return len(msg), StatusInvalidArgs
	}
	return len(msg), StatusOK
}

// begin clears the error state on entry to every call.
func (h *Handle) begin() { h.last = ErrorState{} }

func (h *Handle) finish(op string, err error) StatusCode {
	h.last = stateFromError(op, err)
	if err != nil {
		h.opts.Logger.Debug("handle call failed", "op", op, "kind", h.last.Kind, "err", err)
	}
	return h.last.Status()
}

// requireOpen rejects calls outside the Open state without touching the
// archive.
func (h *Handle) requireOpen(op string) bool {
	if h.state == StateOpen {
		return true
	}
	h.finish(op, &types.Error{
		Kind: types.ErrKindInvalidArgument,
		Msg:  fmt.Sprintf("handle is %s", h.state),
		Err:  errNotOpen,
	})
	return false
}

// Open opens the archive at path. A failed open leaves the handle in its
// previous state; opening an already open or closed handle is rejected.
func (h *Handle) Open(path string) StatusCode {
	h.begin()
	if h.state != StateUnopened {
		return h.finish("open", &types.Error{
			Kind: types.ErrKindInvalidArgument,
			Msg:  fmt.Sprintf("handle is %s", h.state),
		})
	}
	if path == "" {
		return h.finish("open", &types.Error{Kind: types.ErrKindInvalidArgument, Msg: "empty archive path"})
	}
	r, err := reader.Open(path, h.opts)
	if err != nil {
		return h.finish("open", err)
	}
	h.r = r
	h.path = path
	h.state = StateOpen
	return h.finish("open", nil)
}

// Info returns the archive header metadata.
func (h *Handle) Info() types.ArchiveInfo {
	h.begin()
	if !h.requireOpen("info") {
		return types.ArchiveInfo{}
	}
	info := h.r.Info()
	h.finish("info", nil)
	return info
}

// VersionMajor returns the major component of the archive revision.
func (h *Handle) VersionMajor() uint32 {
	h.begin()
	if !h.requireOpen("version") {
		return 0
	}
	return h.r.Info().Major
}

// VersionMinor returns the minor component of the archive revision.
func (h *Handle) VersionMinor() uint32 {
	h.begin()
	if !h.requireOpen("version") {
		return 0
	}
	return h.r.Info().Minor
}

// VersionPatch returns the patch component of the archive revision.
func (h *Handle) VersionPatch() uint32 {
	h.begin()
	if !h.requireOpen("version") {
		return 0
	}
	return h.r.Info().Patch
}

// Assets returns the virtual paths matching pattern in directory order.
// On failure it returns nil and records the error.
func (h *Handle) Assets(pattern string) []string {
	h.begin()
	if !h.requireOpen("assets") {
		return nil
	}
	entries, err := h.r.Assets(pattern)
	if err != nil {
		h.finish("assets", err)
		return nil
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	h.finish("assets", nil)
	return out
}

// Contains reports whether assetPath is in the archive.
func (h *Handle) Contains(assetPath string) bool {
	h.begin()
	if !h.requireOpen("contains") {
		return false
	}
	ok, err := h.r.Contains(assetPath)
	h.finish("contains", err)
	return ok
}

// Extract writes one asset to the file destPath. An existing file is kept
// unless overwrite is set, which is reported as success.
func (h *Handle) Extract(assetPath, destPath string, overwrite bool) StatusCode {
	h.begin()
	if !h.requireOpen("extract") {
		return h.last.Status()
	}
	return h.finish("extract", h.extract(assetPath, destPath, overwrite))
}

func (h *Handle) extract(assetPath, destPath string, overwrite bool) error {
	if destPath == "" {
		return &types.Error{Kind: types.ErrKindInvalidArgument, Msg: "empty destination path"}
	}
	e, err := h.r.Lookup(assetPath)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(destPath); err == nil {
			return nil
		}
	}
	data, err := h.r.ReadEntry(e)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return &types.Error{Kind: types.ErrKindIO, Msg: err.Error(), Err: err}
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return &types.Error{Kind: types.ErrKindIO, Msg: err.Error(), Err: err}
	}
	return nil
}

// ExtractAll writes every asset matching pattern below destDir and returns
// the virtual paths written.
func (h *Handle) ExtractAll(pattern, destDir string, overwrite bool) ([]string, StatusCode) {
	h.begin()
	if !h.requireOpen("extract all") {
		return nil, h.last.Status()
	}
	entries, err := h.r.Assets(pattern)
	if err != nil {
		return nil, h.finish("extract all", err)
	}
	res, err := reader.Extract(context.Background(), h.r, entries, destDir, types.ExtractOptions{Overwrite: overwrite})
	if err != nil {
		return nil, h.finish("extract all", err)
	}
	return res.Written, h.finish("extract all", nil)
}

// Close releases the archive. Closing twice, or closing an unopened handle,
// succeeds without changing state.
func (h *Handle) Close() StatusCode {
	h.begin()
	if h.state != StateOpen {
		return h.finish("close", nil)
	}
	err := h.r.Close()
	h.r = nil
	h.state = StateClosed
	return h.finish("close", err)
}
