package format

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/joshuapare/bsakit/internal/buf"
)

// IsTES3 reports whether b starts with the Morrowind archive magic.
func IsTES3(b []byte) bool {
	return len(b) >= SignatureSize && binary.LittleEndian.Uint32(b) == TES3Magic
}

func parseTES3Header(b []byte) (Header, error) {
	c := buf.NewCursor(b)
	hashOff, err1 := c.U32(TES3HashTableOffset)
	count, err2 := c.U32(TES3FileCountOffset)
	if err1 != nil || err2 != nil {
		return Header{}, fmt.Errorf("tes3 header: %w", ErrTruncated)
	}
	h := Header{
		Version:         TES3Magic,
		Revision:        RevisionTES3,
		FileCount:       count,
		HashTableOffset: hashOff,
	}

	// Records and name offsets must fit before the hash table; what is left
	// in between is the name block.
	tables, ok := buf.MulOverflowSafe(int(count), TES3RecordSize+TES3NameOffsetSize)
	if !ok || tables > int(hashOff) {
		return Header{}, fmt.Errorf("tes3 header: hash table offset %d inside %d file records: %w",
			hashOff, count, ErrInconsistent)
	}
	h.TotalFileNameLen = hashOff - uint32(tables)
	if _, err := buf.CheckTableBounds(len(b), TES3HeaderSize+int(hashOff), int(count), TES3HashSize); err != nil {
		return Header{}, fmt.Errorf("tes3 header: hash table (%d records): %w: %w", count, ErrTruncated, err)
	}
	return h, nil
}

// TES3Record is one Morrowind file record with its name and hash resolved.
type TES3Record struct {
	Hash    uint64
	Size    uint32
	Offset  uint32 // relative to the data section
	RawName []byte
	RecOff  int
}

// DecodeTES3Record reads the i-th file record, its name and its hash.
func DecodeTES3Record(b []byte, h Header, i int) (TES3Record, error) {
	c := buf.NewCursor(b)
	n := int(h.FileCount)
	recOff := TES3HeaderSize + i*TES3RecordSize
	size, err := c.U32(recOff)
	if err != nil {
		return TES3Record{}, fmt.Errorf("tes3 file %d: %w: %w", i, ErrTruncated, err)
	}
	off, _ := c.U32(recOff + 4)

	nameOffOff := TES3HeaderSize + n*TES3RecordSize + i*TES3NameOffsetSize
	nameOff, err := c.U32(nameOffOff)
	if err != nil {
		return TES3Record{}, fmt.Errorf("tes3 file %d name offset: %w: %w", i, ErrTruncated, err)
	}
	if nameOff >= h.TotalFileNameLen {
		return TES3Record{}, fmt.Errorf("tes3 file %d: name offset %d past name block (%d bytes): %w",
			i, nameOff, h.TotalFileNameLen, ErrInconsistent)
	}
	names := TES3HeaderSize + n*(TES3RecordSize+TES3NameOffsetSize)
	block, err := c.Bytes(names, int(h.TotalFileNameLen))
	if err != nil {
		return TES3Record{}, fmt.Errorf("tes3 name block: %w: %w", ErrTruncated, err)
	}
	raw, _, err := buf.NewCursor(block).CString(int(nameOff))
	if err != nil {
		return TES3Record{}, fmt.Errorf("tes3 file %d name: %w: %w", i, ErrTruncated, err)
	}

	hash, err := c.U64(TES3HeaderSize + int(h.HashTableOffset) + i*TES3HashSize)
	if err != nil {
		return TES3Record{}, fmt.Errorf("tes3 file %d hash: %w: %w", i, ErrTruncated, err)
	}
	return TES3Record{Hash: hash, Size: size, Offset: off, RawName: raw, RecOff: recOff}, nil
}

// HashTES3 hashes a full Morrowind path.
func HashTES3(path string) uint64 {
	raw, _ := EncodeName(NormalizePath(path))
	return HashTES3Bytes(raw)
}

// HashTES3Bytes hashes a raw Windows-1252 path after ASCII lower-casing.
// The first half of the path is folded into the low word by shifting XOR;
// the second half into the high word, rotating right after every byte.
func HashTES3Bytes(raw []byte) uint64 {
	raw = normalizeRaw(raw)
	half := len(raw) / 2

	var lo, hi uint32
	var shift uint
	for _, c := range raw[:half] {
		lo ^= uint32(c) << (shift & 0x1F)
		shift += 8
	}
	shift = 0
	for _, c := range raw[half:] {
		t := uint32(c) << (shift & 0x1F)
		hi ^= t
		hi = bits.RotateLeft32(hi, -int(t&0x1F))
		shift += 8
	}
	return uint64(hi)<<32 | uint64(lo)
}
