package format

import (
	"encoding/binary"
	"fmt"

	"github.com/joshuapare/bsakit/internal/buf"
)

// FolderRecord is one entry of the folder record table.
type FolderRecord struct {
	Hash  uint64
	Count uint32
	// Offset is the raw stored value: the absolute offset of the folder
	// block plus the header's total file name length.
	Offset uint64
}

// BlockOffset returns the absolute offset of the folder's name and file
// record block.
func (f FolderRecord) BlockOffset(h Header) (int, error) {
	if f.Offset < uint64(h.TotalFileNameLen) {
		return 0, fmt.Errorf("folder %016x: offset %d below name block length %d: %w",
			f.Hash, f.Offset, h.TotalFileNameLen, ErrInconsistent)
	}
	off := f.Offset - uint64(h.TotalFileNameLen)
	if off > uint64(^uint(0)>>1) {
		return 0, fmt.Errorf("folder %016x: offset %d: %w", f.Hash, off, ErrTruncated)
	}
	return int(off), nil
}

// DecodeFolderRecord reads the folder record at off.
func DecodeFolderRecord(b []byte, off int, rev Revision, hashOrder binary.ByteOrder) (FolderRecord, error) {
	c := buf.NewCursor(b)
	if _, err := c.Bytes(off, rev.FolderRecordSize()); err != nil {
		return FolderRecord{}, fmt.Errorf("folder record: %w: %w", ErrTruncated, err)
	}
	hash, _ := c.WithOrder(hashOrder).U64(off + FolderHashOffset)
	count, _ := c.U32(off + FolderCountOffset)
	rec := FolderRecord{Hash: hash, Count: count}
	if rev.FolderRecordSize() == FolderRecordSize64 {
		rec.Offset, _ = c.U64(off + FolderOffsetOffset64)
	} else {
		o, _ := c.U32(off + FolderOffsetOffset)
		rec.Offset = uint64(o)
	}
	return rec, nil
}

// FileRecord is one entry of a folder's file record table.
type FileRecord struct {
	Hash    uint64
	RawSize uint32
	Offset  uint32
}

// Size returns the stored byte count with the flag bits masked off.
func (f FileRecord) Size() uint32 { return f.RawSize & FileSizeMask }

// InvertsCompression reports whether this file flips the archive default.
func (f FileRecord) InvertsCompression() bool { return f.RawSize&FileInvertCompressed != 0 }

// Compressed resolves the effective compression state against the header.
func (f FileRecord) Compressed(h Header) bool {
	return h.Compressed() != f.InvertsCompression()
}

// DecodeFileRecord reads the file record at off.
func DecodeFileRecord(b []byte, off int, hashOrder binary.ByteOrder) (FileRecord, error) {
	c := buf.NewCursor(b)
	if _, err := c.Bytes(off, FileRecordSize); err != nil {
		return FileRecord{}, fmt.Errorf("file record: %w: %w", ErrTruncated, err)
	}
	hash, _ := c.WithOrder(hashOrder).U64(off + FileHashOffset)
	size, _ := c.U32(off + FileSizeOffset)
	dataOff, _ := c.U32(off + FileOffsetOffset)
	return FileRecord{Hash: hash, RawSize: size, Offset: dataOff}, nil
}
