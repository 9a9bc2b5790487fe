package bindings

import (
	"errors"

	"github.com/joshuapare/bsakit/pkg/types"
)

// StatusCode is the numeric result every handle call reports, compatible
// with the return codes of earlier C and .NET releases.
type StatusCode uint32

const (
	StatusOK                 StatusCode = 0
	StatusInvalidArgs        StatusCode = 1
	StatusFilesystem         StatusCode = 3
	StatusCompression        StatusCode = 5
	StatusParseFail          StatusCode = 6
	StatusUnsupportedVersion StatusCode = 7
	StatusNotFound           StatusCode = 8
)

func (s StatusCode) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidArgs:
		return "invalid arguments"
	case StatusFilesystem:
		return "filesystem error"
	case StatusCompression:
		return "compression error"
	case StatusParseFail:
		return "parse failure"
	case StatusUnsupportedVersion:
		return "unsupported version"
	case StatusNotFound:
		return "not found"
	default:
		return "unknown status"
	}
}

// StatusFor maps an error kind to its status code.
func StatusFor(k types.ErrKind) StatusCode {
	switch k {
	case types.ErrKindNone:
		return StatusOK
	case types.ErrKindInvalidArgument:
		return StatusInvalidArgs
	case types.ErrKindCompression:
		return StatusCompression
	case types.ErrKindFormat:
		return StatusParseFail
	case types.ErrKindVersionUnsupported:
		return StatusUnsupportedVersion
	case types.ErrKindNotFound:
		return StatusNotFound
	default:
		return StatusFilesystem
	}
}

// ErrorState is the outcome of the most recent call on a handle.
type ErrorState struct {
	Kind    types.ErrKind
	Message string
	Op      string // the call that produced it
}

// OK reports whether the last call succeeded.
func (e ErrorState) OK() bool { return e.Kind == types.ErrKindNone }

// Status returns the status code for e.
func (e ErrorState) Status() StatusCode { return StatusFor(e.Kind) }

// Err converts e back into an error, nil when OK.
func (e ErrorState) Err() error {
	if e.OK() {
		return nil
	}
	return &types.Error{Kind: e.Kind, Msg: e.Op + ": " + e.Message}
}

func stateFromError(op string, err error) ErrorState {
	if err == nil {
		return ErrorState{}
	}
	return ErrorState{Kind: types.KindOf(err), Message: err.Error(), Op: op}
}

var errNotOpen = errors.New("no archive is open")
