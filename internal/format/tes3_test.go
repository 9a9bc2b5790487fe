package format

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashTES3Vectors(t *testing.T) {
	tests := map[string]uint64{
		"":    0,
		"a":   0x8000003000000000,
		"ab":  0x8000001800000061,
		"abc": 0x8000631800000061,
	}
	for name, want := range tests {
		assert.Equal(t, want, HashTES3Bytes([]byte(name)), name)
		assert.Equal(t, want, HashTES3(name), name)
	}
	assert.Equal(t, HashTES3(`meshes\m\lamp.nif`), HashTES3("Meshes/M/LAMP.NIF"))
	assert.NotEqual(t, HashTES3(`meshes\a.nif`), HashTES3(`meshes\b.nif`))
}

func tes3Header(hashOff, count uint32, size int) []byte {
	b := make([]byte, size)
	binary.LittleEndian.PutUint32(b, TES3Magic)
	binary.LittleEndian.PutUint32(b[TES3HashTableOffset:], hashOff)
	binary.LittleEndian.PutUint32(b[TES3FileCountOffset:], count)
	return b
}

func TestParseHeaderTES3(t *testing.T) {
	// One file, an 8-byte name block, and its hash.
	b := tes3Header(12+8, 1, TES3HeaderSize+20+TES3HashSize)
	h, err := ParseHeader(b, HeaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, LayoutTES3, h.Revision.Layout)
	assert.Equal(t, "Morrowind", h.Revision.Game)
	assert.Equal(t, CodecNone, h.Revision.Codec)
	assert.Equal(t, uint32(1), h.FileCount)
	assert.Equal(t, uint32(8), h.TotalFileNameLen)
	assert.Equal(t, len(b), h.DirectoryEnd())
	assert.False(t, h.Compressed())
	assert.False(t, h.EmbedsNames())

	empty, err := ParseHeader(tes3Header(0, 0, TES3HeaderSize), HeaderOptions{})
	require.NoError(t, err)
	assert.Equal(t, TES3HeaderSize, empty.DirectoryEnd())
}

func TestParseHeaderTES3Malformed(t *testing.T) {
	// Hash table offset inside the record tables.
	_, err := ParseHeader(tes3Header(10, 2, 256), HeaderOptions{})
	require.ErrorIs(t, err, ErrInconsistent)

	// Hash table past the end.
	_, err = ParseHeader(tes3Header(12+8, 1, TES3HeaderSize+20+4), HeaderOptions{})
	require.ErrorIs(t, err, ErrTruncated)

	_, err = ParseHeader([]byte{0x00, 0x01, 0x00, 0x00, 0x10}, HeaderOptions{})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeTES3RecordNameOffset(t *testing.T) {
	b := tes3Header(12+8, 1, TES3HeaderSize+20+TES3HashSize)
	copy(b[TES3HeaderSize+12:], "a.nif\x00")
	h, err := ParseHeader(b, HeaderOptions{})
	require.NoError(t, err)

	rec, err := DecodeTES3Record(b, h, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("a.nif"), rec.RawName)

	binary.LittleEndian.PutUint32(b[TES3HeaderSize+8:], 8)
	_, err = DecodeTES3Record(b, h, 0)
	require.ErrorIs(t, err, ErrInconsistent)
}
