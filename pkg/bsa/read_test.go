package bsa

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/bsakit/internal/testutil"
	"github.com/joshuapare/bsakit/pkg/types"
)

func sampleFile(t *testing.T, version uint32) string {
	t.Helper()
	return testutil.WriteTemp(t, "sample.bsa", testutil.Sample(version).MustBuild(t).Bytes)
}

func TestListAssets(t *testing.T) {
	path := sampleFile(t, 104)

	all, err := ListAssets(path, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{`meshes\b.nif`, `textures\a.dds`}, all)

	dds, err := ListAssets(path, `\.dds$`, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{`textures\a.dds`}, dds)

	_, err = ListAssets(path, "(", nil)
	require.ErrorIs(t, err, ErrInvalidPattern)
}

func TestListAssetsFileNotFound(t *testing.T) {
	_, err := ListAssets(filepath.Join(t.TempDir(), "missing.bsa"), "", nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrKindIO, types.KindOf(err))
}

func TestGetArchiveInfo(t *testing.T) {
	info, err := GetArchiveInfo(sampleFile(t, 105), nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(105), info.Version)
	assert.Equal(t, "lz4", info.Codec)
	assert.Equal(t, 2, info.FileCount)
}

func TestLegacyOption(t *testing.T) {
	path := sampleFile(t, 103)
	_, err := GetArchiveInfo(path, nil)
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	info, err := GetArchiveInfo(path, &Options{OpenOptions: OpenOptions{LegacyRevisions: true}})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), info.Minor)
}

func TestContainsAndRead(t *testing.T) {
	path := sampleFile(t, 104)

	ok, err := ContainsAsset(path, "Textures/A.dds", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := ReadAsset(path, `textures\a.dds`, nil)
	require.NoError(t, err)
	assert.Equal(t, "dds payload", string(data))

	_, err = ReadAsset(path, `textures\none.dds`, nil)
	require.ErrorIs(t, err, ErrNotFound)

	sum, err := Checksum(path, `textures\a.dds`, nil)
	require.NoError(t, err)
	assert.NotZero(t, sum)
}

func TestExtractAssets(t *testing.T) {
	dest := t.TempDir()
	res, err := ExtractAssets(context.Background(), sampleFile(t, 104), `\.nif$`, dest, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{`meshes\b.nif`}, res.Written)
	assert.FileExists(t, filepath.Join(dest, "meshes", "b.nif"))
	_, err = os.Stat(filepath.Join(dest, "textures"))
	assert.True(t, os.IsNotExist(err))
}

func TestDiagnose(t *testing.T) {
	path := sampleFile(t, 104)
	report, err := Diagnose(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, report.FilePath)
	assert.False(t, report.HasAnyIssues())
}

func TestOpenBytes(t *testing.T) {
	r, err := OpenBytes([]byte("not an archive at all, not even close"), nil)
	require.ErrorIs(t, err, ErrNotBSA)
	assert.Nil(t, r)
}
