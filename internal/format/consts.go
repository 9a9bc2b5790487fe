// Package format houses low-level decoders for the BSA archive formats: the
// TES4 family used by Oblivion, Fallout 3, Fallout: New Vegas and Skyrim, and
// the older flat Morrowind layout. The
// decoders are allocation-light, never panic on malformed input, and stay
// independent from the public API so higher-level packages can arrange the
// data in a more ergonomic form.
package format

// Signature is the four-byte magic at the start of every archive.
//
//	0x00  'B' 'S' 'A' 0x00
var Signature = []byte{'B', 'S', 'A', 0}

// Header field offsets. Every header field is a little-endian uint32.
const (
	HeaderSignatureOffset      = 0x00
	HeaderVersionOffset        = 0x04
	HeaderFolderTableOffset    = 0x08
	HeaderArchiveFlagsOffset   = 0x0C
	HeaderFolderCountOffset    = 0x10
	HeaderFileCountOffset      = 0x14
	HeaderFolderNamesLenOffset = 0x18
	HeaderFileNamesLenOffset   = 0x1C
	HeaderFileFlagsOffset      = 0x20

	SignatureSize = 4

	// HeaderSize is the size of the fixed header. The folder record table
	// starts immediately after it in every archive seen in the wild.
	HeaderSize = 0x24
)

// Folder record layouts.
//
// Revisions 103 and 104:
//
//	0x00  8  name hash
//	0x08  4  file count
//	0x0C  4  offset of the folder block + total file name length
//
// Revision 105 widens the offset to 64 bits behind 4 bytes of padding:
//
//	0x00  8  name hash
//	0x08  4  file count
//	0x0C  4  padding
//	0x10  8  offset of the folder block + total file name length
const (
	FolderHashOffset     = 0x00
	FolderCountOffset    = 0x08
	FolderOffsetOffset   = 0x0C
	FolderOffsetOffset64 = 0x10

	FolderRecordSize   = 0x10
	FolderRecordSize64 = 0x18
)

// File record layout (all revisions):
//
//	0x00  8  name hash
//	0x08  4  size; bit 30 inverts the archive compression default
//	0x0C  4  absolute offset of the data block
const (
	FileHashOffset   = 0x00
	FileSizeOffset   = 0x08
	FileOffsetOffset = 0x0C

	FileRecordSize = 0x10

	// FileInvertCompressed flips the archive-wide compression default for a
	// single file.
	FileInvertCompressed = 0x40000000
	// FileSizeMask extracts the stored byte count. Bit 31 is reserved and is
	// masked together with the invert bit.
	FileSizeMask = 0x3FFFFFFF
)

// CompressedSizePrefix is the uint32 original-size field that precedes
// every compressed data block.
const CompressedSizePrefix = 4

// Morrowind (TES3) layout. All fields are little-endian uint32.
//
//	0x00  4         magic 0x00000100
//	0x04  4         hash table offset, relative to the end of the header
//	0x08  4         file count
//	0x0C  8*count   file records: size, data offset relative to the data section
//	      4*count   name offsets, relative to the name block
//	      ...       NUL-terminated full paths
//	      8*count   name hashes (low word, high word)
//	      ...       data section
const (
	TES3Magic = 0x00000100

	TES3HashTableOffset = 0x04
	TES3FileCountOffset = 0x08

	TES3HeaderSize     = 0x0C
	TES3RecordSize     = 0x08
	TES3NameOffsetSize = 0x04
	TES3HashSize       = 0x08
)
