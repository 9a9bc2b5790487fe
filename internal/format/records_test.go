package format

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFolderRecord(t *testing.T) {
	b := make([]byte, FolderRecordSize)
	binary.LittleEndian.PutUint64(b[FolderHashOffset:], 0x1122334455667788)
	binary.LittleEndian.PutUint32(b[FolderCountOffset:], 7)
	binary.LittleEndian.PutUint32(b[FolderOffsetOffset:], 0x200)

	rec, err := DecodeFolderRecord(b, 0, Revisions[0], binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, FolderRecord{Hash: 0x1122334455667788, Count: 7, Offset: 0x200}, rec)

	h := Header{TotalFileNameLen: 0x20}
	off, err := rec.BlockOffset(h)
	require.NoError(t, err)
	assert.Equal(t, 0x1E0, off)

	_, err = (FolderRecord{Offset: 4}).BlockOffset(h)
	require.ErrorIs(t, err, ErrInconsistent)
}

func TestDecodeFolderRecord64(t *testing.T) {
	se, err := LookupRevision(105, false)
	require.NoError(t, err)

	b := make([]byte, FolderRecordSize64)
	binary.BigEndian.PutUint64(b[FolderHashOffset:], 0xAABBCCDD00112233)
	binary.LittleEndian.PutUint32(b[FolderCountOffset:], 2)
	binary.LittleEndian.PutUint64(b[FolderOffsetOffset64:], 0x1_0000_0010)

	rec, err := DecodeFolderRecord(b, 0, se, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xAABBCCDD00112233), rec.Hash)
	assert.Equal(t, uint32(2), rec.Count)
	assert.Equal(t, uint64(0x1_0000_0010), rec.Offset)

	_, err = DecodeFolderRecord(b[:FolderRecordSize], 0, se, binary.LittleEndian)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeFileRecord(t *testing.T) {
	b := make([]byte, FileRecordSize)
	binary.LittleEndian.PutUint64(b[FileHashOffset:], 42)
	binary.LittleEndian.PutUint32(b[FileSizeOffset:], 1234|FileInvertCompressed)
	binary.LittleEndian.PutUint32(b[FileOffsetOffset:], 0x400)

	rec, err := DecodeFileRecord(b, 0, binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), rec.Size())
	assert.True(t, rec.InvertsCompression())
	assert.Equal(t, uint32(0x400), rec.Offset)

	assert.True(t, rec.Compressed(Header{}))
	assert.False(t, rec.Compressed(Header{Flags: FlagCompressed}))

	_, err = DecodeFileRecord(b, 1, binary.LittleEndian)
	require.ErrorIs(t, err, ErrTruncated)
}
