package types

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("open: %w", &Error{Kind: ErrKindFormat, Msg: "folder table", Err: cause})

	assert.Equal(t, "open: folder table: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrKindFormat, KindOf(err))
	assert.Equal(t, ErrKindNone, KindOf(nil))
	assert.Equal(t, ErrKindIO, KindOf(errors.New("disk on fire")))

	wrapped := &Error{Kind: ErrKindNotFound, Msg: `textures\x.dds`, Err: ErrNotFound}
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, "<nil>", (*Error)(nil).Error())
}

func TestErrKindString(t *testing.T) {
	assert.Equal(t, "FormatInvalid", ErrKindFormat.String())
	assert.Equal(t, "VersionUnsupported", ErrKindVersionUnsupported.String())
	assert.Equal(t, "Unknown", ErrKind(99).String())
}

func TestLimitsWithDefaults(t *testing.T) {
	l := Limits{MaxFiles: 10}.WithDefaults()
	assert.Equal(t, 10, l.MaxFiles)
	assert.Equal(t, DefaultMaxFolders, l.MaxFolders)
	assert.Equal(t, int64(DefaultMaxAssetSize), l.MaxAssetSize)

	s := StrictLimits()
	assert.Less(t, s.MaxAssetSize, DefaultLimits().MaxAssetSize)
}

func TestDiagnosticReport(t *testing.T) {
	r := NewDiagnosticReport()
	r.Add(Diagnostic{Severity: SevWarning, Category: DiagIntegrity, Offset: 0x40, Structure: "file", Issue: "hash mismatch"})
	r.Add(Diagnostic{Severity: SevError, Category: DiagData, Offset: 0x10, Structure: "data", Issue: "data past end"})
	r.Finalize()

	require.Len(t, r.ByOffset, 2)
	assert.Equal(t, uint64(0x10), r.ByOffset[0].Offset)
	assert.True(t, r.HasErrors())
	assert.True(t, r.HasAnyIssues())
	assert.Equal(t, 1, r.Summary.Warnings)

	text := r.FormatText()
	assert.Contains(t, text, "hash mismatch")
	assert.Contains(t, text, "ERROR (1)")

	js, err := r.FormatJSON()
	require.NoError(t, err)
	assert.Contains(t, js, `"severity": "WARNING"`)

	compact := r.FormatTextCompact()
	assert.Equal(t, 2, strings.Count(compact, "\n"))

	empty := NewDiagnosticReport()
	empty.Finalize()
	assert.Contains(t, empty.FormatText(), "No issues found.")
	assert.False(t, empty.HasErrors())
}
