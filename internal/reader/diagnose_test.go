package reader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/bsakit/internal/format"
	"github.com/joshuapare/bsakit/internal/testutil"
	"github.com/joshuapare/bsakit/pkg/types"
)

func TestDiagnoseCleanArchive(t *testing.T) {
	for _, version := range []uint32{104, 105} {
		a := testutil.Sample(version).
			WithFlags(format.FlagFolderNames | format.FlagFileNames | format.FlagCompressed | format.FlagEmbedNames).
			MustBuild(t)
		r := openArchive(t, a, types.OpenOptions{})
		report, err := r.Diagnose()
		require.NoError(t, err)
		assert.False(t, report.HasAnyIssues(), report.FormatText())
		assert.Equal(t, 2, report.Summary.FoldersTested)
		assert.Equal(t, 2, report.Summary.FilesTested)
		assert.Equal(t, int64(len(a.Bytes)), report.FileSize)
	}
}

func TestDiagnoseHashMismatch(t *testing.T) {
	a := testutil.NewBuilder(104).
		AddFile(testutil.File{Path: "textures/a.dds", Data: []byte("a"), FileHash: 0x1234}).
		MustBuild(t)

	r := openArchive(t, a, types.OpenOptions{CollectDiagnostics: true})
	passive := r.GetDiagnostics()
	require.NotNil(t, passive)
	require.Equal(t, 1, passive.Summary.Warnings)
	assert.Equal(t, types.DiagIntegrity, passive.Diagnostics[0].Category)
	assert.Equal(t, `textures\a.dds`, passive.Diagnostics[0].Path)
	assert.Same(t, passive, r.GetDiagnostics())

	report, err := r.Diagnose()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Warnings)
	assert.False(t, report.HasErrors())

	// The stored hash is authoritative for lookups, so the name misses.
	ok, err := r.Contains(`textures\a.dds`)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDiagnoseDuplicatePath(t *testing.T) {
	a := testutil.NewBuilder(104).
		AddFile(testutil.File{Path: "textures/dup.dds", Data: []byte("1"), FileHash: 1}).
		AddFile(testutil.File{Path: "textures/dup.dds", Data: []byte("2"), FileHash: 2}).
		MustBuild(t)
	r := openArchive(t, a, types.OpenOptions{})

	report, err := r.Diagnose()
	require.NoError(t, err)
	assert.True(t, report.HasErrors())
	assert.Contains(t, report.FormatText(), "duplicate virtual path")
}

func TestDiagnoseDataPastEnd(t *testing.T) {
	a := testutil.Sample(104).MustBuild(t)
	// Drop the tail of the last data block; the directory still parses.
	r := openArchive(t, &testutil.Archive{Bytes: a.Bytes[:len(a.Bytes)-1]}, types.OpenOptions{})

	report, err := r.Diagnose()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.Errors)
	assert.True(t, strings.Contains(report.FormatTextCompact(), "past end of archive"))
}

func TestGetDiagnosticsDisabled(t *testing.T) {
	r := openArchive(t, testutil.Sample(104).MustBuild(t), types.OpenOptions{})
	assert.Nil(t, r.GetDiagnostics())
}
