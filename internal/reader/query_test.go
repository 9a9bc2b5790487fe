package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/bsakit/internal/testutil"
	"github.com/joshuapare/bsakit/pkg/types"
)

func paths(entries []types.AssetEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func TestAssetsByExtension(t *testing.T) {
	r := openArchive(t, testutil.Sample(104).MustBuild(t), types.OpenOptions{})

	got, err := r.Assets(`\.dds$`)
	require.NoError(t, err)
	assert.Equal(t, []string{`textures\a.dds`}, paths(got))

	got, err = r.Assets(`\.DDS$`)
	require.NoError(t, err)
	assert.Equal(t, []string{`textures\a.dds`}, paths(got), "patterns are case-insensitive")
}

func TestAssetsAllInDirectoryOrder(t *testing.T) {
	b := testutil.NewBuilder(105)
	for _, p := range []string{"textures/a.dds", "meshes/b.nif", "meshes/c.nif", "sound/fx/boom.wav", "interface/x"} {
		b.Add(p, []byte(p))
	}
	a := b.MustBuild(t)
	r := openArchive(t, a, types.OpenOptions{})

	all, err := r.Assets(".*")
	require.NoError(t, err)
	assert.Equal(t, a.Paths, paths(all))
	assert.Len(t, all, r.Info().FileCount)

	seen := map[string]bool{}
	for i, e := range all {
		assert.False(t, seen[e.Path], "duplicate %s", e.Path)
		seen[e.Path] = true
		if i > 0 {
			prev := all[i-1]
			ordered := prev.FolderHash < e.FolderHash ||
				(prev.FolderHash == e.FolderHash && prev.FileHash < e.FileHash)
			assert.True(t, ordered, "%s before %s", prev.Path, e.Path)
		}
	}

	empty, err := r.Assets("")
	require.NoError(t, err)
	assert.Equal(t, all, empty)
}

func TestAssetsIdempotent(t *testing.T) {
	r := openArchive(t, testutil.Sample(104).MustBuild(t), types.OpenOptions{})
	first, err := r.Assets("es")
	require.NoError(t, err)
	for range 3 {
		again, err := r.Assets("es")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestQueryRestartable(t *testing.T) {
	r := openArchive(t, testutil.Sample(104).MustBuild(t), types.OpenOptions{})
	q, err := r.Query(`^meshes\\`)
	require.NoError(t, err)
	assert.Equal(t, `^meshes\\`, q.Pattern())

	collect := func() []string {
		var out []string
		it := q.Iter()
		for it.Next() {
			out = append(out, it.Entry().Path)
		}
		require.NoError(t, it.Err())
		return out
	}
	assert.Equal(t, []string{`meshes\b.nif`}, collect())
	assert.Equal(t, collect(), collect())
}

func TestAssetsNoMatch(t *testing.T) {
	r := openArchive(t, testutil.Sample(104).MustBuild(t), types.OpenOptions{})
	got, err := r.Assets(`\.esp$`)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestQueryInvalidPattern(t *testing.T) {
	r := openArchive(t, testutil.Sample(104).MustBuild(t), types.OpenOptions{})
	_, err := r.Query("([")
	require.ErrorIs(t, err, types.ErrInvalidPattern)
	assert.Equal(t, types.ErrKindInvalidArgument, types.KindOf(err))
}
