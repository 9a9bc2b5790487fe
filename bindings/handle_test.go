package bindings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/bsakit/internal/format"
	"github.com/joshuapare/bsakit/internal/testutil"
	"github.com/joshuapare/bsakit/pkg/types"
)

func sampleArchive(t *testing.T, version uint32) string {
	t.Helper()
	return testutil.WriteTemp(t, "sample.bsa", testutil.Sample(version).MustBuild(t).Bytes)
}

func TestOpenValidClearsError(t *testing.T) {
	for _, version := range []uint32{104, 105} {
		h := Open(sampleArchive(t, version))
		t.Cleanup(func() { h.Close() })

		assert.Equal(t, StateOpen, h.State())
		assert.Empty(t, h.ErrorMessage())
		assert.True(t, h.LastError().OK())
		assert.Equal(t, uint32(1), h.VersionMajor())
		assert.Equal(t, version-100, h.VersionMinor())
		assert.Equal(t, uint32(0), h.VersionPatch())
	}
}

func TestOpenMorrowindArchive(t *testing.T) {
	h := Open(sampleArchive(t, format.TES3Magic))
	defer h.Close()

	require.Equal(t, StateOpen, h.State(), h.ErrorMessage())
	assert.Equal(t, uint32(1), h.VersionMajor())
	assert.Equal(t, uint32(0), h.VersionMinor())
	assert.Equal(t, []string{`textures\a.dds`}, h.Assets(`\.dds$`))
	assert.True(t, h.Contains("meshes/b.nif"))
}

func TestOpenBadMagic(t *testing.T) {
	a := testutil.Sample(104).MustBuild(t)
	copy(a.Bytes, "ZIP\x00")
	h := Open(testutil.WriteTemp(t, "bad.bsa", a.Bytes))

	assert.Equal(t, StateUnopened, h.State())
	assert.Equal(t, types.ErrKindFormat, h.LastError().Kind)
	assert.Equal(t, StatusParseFail, h.LastError().Status())
	assert.NotEmpty(t, h.ErrorMessage())

	// Queries on an unopened handle fail cleanly.
	assert.Nil(t, h.Assets(".*"))
	assert.Equal(t, types.ErrKindInvalidArgument, h.LastError().Kind)
	assert.False(t, h.Contains(`textures\a.dds`))
	assert.Equal(t, StatusInvalidArgs, h.LastError().Status())
	assert.Equal(t, "contains", h.LastError().Op)
	assert.Zero(t, h.VersionMajor())
}

func TestOpenLegacyVersionUnsupported(t *testing.T) {
	h := Open(sampleArchive(t, 103))
	assert.Equal(t, StateUnopened, h.State())
	assert.Equal(t, types.ErrKindVersionUnsupported, h.LastError().Kind)
	assert.Equal(t, StatusUnsupportedVersion, h.LastError().Status())

	legacy := NewWithOptions(types.OpenOptions{LegacyRevisions: true})
	require.Equal(t, StatusOK, legacy.Open(sampleArchive(t, 103)))
	defer legacy.Close()
	assert.Equal(t, uint32(3), legacy.VersionMinor())
}

func TestOpenMissingFile(t *testing.T) {
	h := New()
	assert.Equal(t, StatusFilesystem, h.Open(filepath.Join(t.TempDir(), "none.bsa")))
	assert.Equal(t, StateUnopened, h.State())
	assert.Equal(t, StatusInvalidArgs, h.Open(""))
}

func TestErrorStateClearedOnEntry(t *testing.T) {
	h := Open(sampleArchive(t, 104))
	defer h.Close()

	assert.Nil(t, h.Assets("(["))
	assert.Equal(t, types.ErrKindInvalidArgument, h.LastError().Kind)

	assert.Equal(t, []string{`textures\a.dds`}, h.Assets(`\.dds$`))
	assert.True(t, h.LastError().OK())
	assert.Empty(t, h.ErrorMessage())
}

func TestAssetsIdempotent(t *testing.T) {
	h := Open(sampleArchive(t, 104))
	defer h.Close()
	first := h.Assets(".*")
	require.Len(t, first, 2)
	assert.Equal(t, first, h.Assets(".*"))
	assert.Equal(t, []string{}, h.Assets(`\.esp$`))
	assert.True(t, h.LastError().OK())
}

func TestContains(t *testing.T) {
	h := Open(sampleArchive(t, 105))
	defer h.Close()
	assert.True(t, h.Contains("meshes/b.nif"))
	assert.False(t, h.Contains("meshes/c.nif"))
	assert.True(t, h.LastError().OK())
}

func TestExtract(t *testing.T) {
	h := Open(sampleArchive(t, 104))
	defer h.Close()
	dir := t.TempDir()

	dest := filepath.Join(dir, "out", "a.dds")
	require.Equal(t, StatusOK, h.Extract(`textures\a.dds`, dest, false))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "dds payload", string(data))

	require.NoError(t, os.WriteFile(dest, []byte("keep"), 0o644))
	require.Equal(t, StatusOK, h.Extract(`textures\a.dds`, dest, false))
	data, _ = os.ReadFile(dest)
	assert.Equal(t, "keep", string(data))

	// A missing asset is reported even when the destination already exists.
	assert.Equal(t, StatusNotFound, h.Extract(`textures\does-not-exist.dds`, dest, false))
	assert.Equal(t, types.ErrKindNotFound, h.LastError().Kind)
	data, _ = os.ReadFile(dest)
	assert.Equal(t, "keep", string(data))

	assert.Equal(t, StatusNotFound, h.Extract(`textures\zz.dds`, dest, true))
	assert.Contains(t, h.ErrorMessage(), "not found")

	written, status := h.ExtractAll(`\.nif$`, filepath.Join(dir, "all"), false)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, []string{`meshes\b.nif`}, written)
	assert.FileExists(t, filepath.Join(dir, "all", "meshes", "b.nif"))
}

func TestCloseLifecycle(t *testing.T) {
	h := New()
	assert.Equal(t, StatusOK, h.Close())
	assert.Equal(t, StateUnopened, h.State())

	require.Equal(t, StatusOK, h.Open(sampleArchive(t, 104)))
	assert.Equal(t, StatusInvalidArgs, h.Open(sampleArchive(t, 104)), "already open")

	assert.Equal(t, StatusOK, h.Close())
	assert.Equal(t, StateClosed, h.State())
	assert.Equal(t, StatusOK, h.Close())

	assert.Nil(t, h.Assets(""))
	assert.Equal(t, StatusInvalidArgs, h.LastError().Status())
	assert.Contains(t, h.ErrorMessage(), "closed")
}

func TestReadErrorMessage(t *testing.T) {
	h := New()
	h.Assets("")
	msg := h.ErrorMessage()
	require.NotEmpty(t, msg)

	buf := make([]byte, 256)
	n, status := h.ReadErrorMessage(buf)
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, msg, string(buf[:n]))

	small := make([]byte, 3)
	n, status = h.ReadErrorMessage(small)
	assert.Equal(t, StatusInvalidArgs, status)
	assert.Equal(t, len(msg), n)
	assert.Equal(t, msg[:3], string(small))

	// Reading the message does not clear it.
	assert.Equal(t, msg, h.ErrorMessage())
}

func TestLibraryVersion(t *testing.T) {
	major, minor, patch := LibraryVersion()
	assert.Equal(t, [3]uint32{2, 0, 0}, [3]uint32{major, minor, patch})
	assert.True(t, IsCompatible(2, 0, 0))
	assert.False(t, IsCompatible(2, 1, 0))
	assert.False(t, IsCompatible(1, 0, 0))
}

func TestStatusFor(t *testing.T) {
	cases := map[types.ErrKind]StatusCode{
		types.ErrKindNone:               StatusOK,
		types.ErrKindInvalidArgument:    StatusInvalidArgs,
		types.ErrKindIO:                 StatusFilesystem,
		types.ErrKindCompression:        StatusCompression,
		types.ErrKindFormat:             StatusParseFail,
		types.ErrKindVersionUnsupported: StatusUnsupportedVersion,
		types.ErrKindNotFound:           StatusNotFound,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusFor(kind), kind.String())
	}
	assert.Equal(t, "parse failure", StatusParseFail.String())
	assert.NoError(t, ErrorState{}.Err())
	assert.Error(t, ErrorState{Kind: types.ErrKindNotFound, Op: "contains", Message: "x"}.Err())
}
