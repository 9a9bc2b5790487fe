package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/bsakit/internal/testutil"
)

func TestSourceKinds(t *testing.T) {
	path := testutil.WriteTemp(t, "x.bsa", []byte("BSA\x00payload"))

	mapped, err := openSource(path, false)
	require.NoError(t, err)
	assert.Equal(t, "BSA\x00payload", string(mapped.bytes()))
	require.NoError(t, mapped.close())
	require.NoError(t, mapped.close())
	assert.Nil(t, mapped.bytes())

	owned, err := openSource(path, true)
	require.NoError(t, err)
	assert.Equal(t, sourceOwned, owned.kind)
	assert.Equal(t, "owned", owned.kind.String())
	require.NoError(t, owned.close())

	_, err = openSource(path+".nope", true)
	require.Error(t, err)
}
