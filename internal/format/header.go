package format

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/joshuapare/bsakit/internal/buf"
)

// ArchiveFlags is the archive-wide flag bitfield at header offset 0x0C.
type ArchiveFlags uint32

const (
	FlagFolderNames           ArchiveFlags = 0x001
	FlagFileNames             ArchiveFlags = 0x002
	FlagCompressed            ArchiveFlags = 0x004
	FlagRetainFolderNames     ArchiveFlags = 0x008
	FlagRetainFileNames       ArchiveFlags = 0x010
	FlagRetainFileNameOffsets ArchiveFlags = 0x020
	FlagBigEndian             ArchiveFlags = 0x040
	FlagRetainStrings         ArchiveFlags = 0x080
	FlagEmbedNames            ArchiveFlags = 0x100
	FlagXMemCodec             ArchiveFlags = 0x200
)

// Has reports whether every bit of mask is set.
func (f ArchiveFlags) Has(mask ArchiveFlags) bool { return f&mask == mask }

// Header is the decoded fixed-size archive header.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------
//	 0x00    4    'B' 'S' 'A' 0x00
//	 0x04    4    Version (103, 104, 105)
//	 0x08    4    Offset of the folder record table (36)
//	 0x0C    4    Archive flags
//	 0x10    4    Folder count
//	 0x14    4    File count
//	 0x18    4    Total folder name length (excluding length bytes)
//	 0x1C    4    Total file name length (including NULs)
//	 0x20    4    File content flags
//
// Morrowind archives are decoded into the same struct: Revision.Layout is
// LayoutTES3, FolderCount is zero, TotalFileNameLen is the size of the name
// block and HashTableOffset locates the hash table.
type Header struct {
	Version            uint32
	Revision           Revision
	FolderTableOffset  uint32
	Flags              ArchiveFlags
	FolderCount        uint32
	FileCount          uint32
	TotalFolderNameLen uint32
	TotalFileNameLen   uint32
	FileFlags          uint32
	HashTableOffset    uint32
}

// HeaderOptions tunes header validation.
type HeaderOptions struct {
	// Legacy accepts revisions from LegacyRevisions.
	Legacy bool
}

// Compressed reports whether files are compressed unless their record
// inverts the default.
func (h Header) Compressed() bool { return h.Flags.Has(FlagCompressed) }

// EmbedsNames reports whether every data block is prefixed by its path.
func (h Header) EmbedsNames() bool {
	return h.Revision.SupportsEmbeddedNames() && h.Flags.Has(FlagEmbedNames)
}

// HasFolderNames reports whether folder blocks carry their names.
func (h Header) HasFolderNames() bool { return h.Flags.Has(FlagFolderNames) }

// HasFileNames reports whether the file name block is present.
func (h Header) HasFileNames() bool { return h.Flags.Has(FlagFileNames) }

// HashOrder returns the byte order of stored name hashes.
func (h Header) HashOrder() binary.ByteOrder {
	if h.Flags.Has(FlagBigEndian) {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// DirectoryEnd returns the offset just past the folder record table. For
// Morrowind archives it is the start of the data section.
func (h Header) DirectoryEnd() int {
	if h.Revision.Layout == LayoutTES3 {
		return TES3HeaderSize + int(h.HashTableOffset) + int(h.FileCount)*TES3HashSize
	}
	return int(h.FolderTableOffset) + int(h.FolderCount)*h.Revision.FolderRecordSize()
}

// ParseHeader validates the signature, resolves the revision, and checks that
// the record tables the header announces can fit inside a buffer of len(b).
// Morrowind archives are recognized by their magic and parsed by
// parseTES3Header.
func ParseHeader(b []byte, opts HeaderOptions) (Header, error) {
	if IsTES3(b) {
		return parseTES3Header(b)
	}
	if len(b) < HeaderSize {
		if len(b) >= SignatureSize && !bytes.Equal(b[:SignatureSize], Signature) {
			return Header{}, fmt.Errorf("bsa header: %w", ErrSignatureMismatch)
		}
		return Header{}, fmt.Errorf("bsa header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:SignatureSize], Signature) {
		return Header{}, fmt.Errorf("bsa header: %w", ErrSignatureMismatch)
	}

	c := buf.NewCursor(b)
	var h Header
	fields := []struct {
		off int
		dst *uint32
	}{
		{HeaderVersionOffset, &h.Version},
		{HeaderFolderTableOffset, &h.FolderTableOffset},
		{HeaderFolderCountOffset, &h.FolderCount},
		{HeaderFileCountOffset, &h.FileCount},
		{HeaderFolderNamesLenOffset, &h.TotalFolderNameLen},
		{HeaderFileNamesLenOffset, &h.TotalFileNameLen},
		{HeaderFileFlagsOffset, &h.FileFlags},
	}
	for _, f := range fields {
		v, err := c.U32(f.off)
		if err != nil {
			return Header{}, fmt.Errorf("bsa header: %w", ErrTruncated)
		}
		*f.dst = v
	}
	flags, err := c.U32(HeaderArchiveFlagsOffset)
	if err != nil {
		return Header{}, fmt.Errorf("bsa header: %w", ErrTruncated)
	}
	h.Flags = ArchiveFlags(flags)

	rev, err := LookupRevision(h.Version, opts.Legacy)
	if err != nil {
		return Header{}, fmt.Errorf("bsa header: %w", err)
	}
	h.Revision = rev

	if err := h.checkPlausible(len(b)); err != nil {
		return Header{}, err
	}
	return h, nil
}

// checkPlausible rejects counts whose minimal directory footprint exceeds the
// buffer: the folder table, one length byte plus name per folder when folder
// names are present, one record per file, and the file name block.
func (h Header) checkPlausible(size int) error {
	if h.FolderTableOffset < HeaderSize {
		return fmt.Errorf("bsa header: folder table offset %d overlaps header: %w",
			h.FolderTableOffset, ErrInconsistent)
	}
	end, err := buf.CheckTableBounds(size, int(h.FolderTableOffset), int(h.FolderCount), h.Revision.FolderRecordSize())
	if err != nil {
		return fmt.Errorf("bsa header: folder table (%d records): %w: %w", h.FolderCount, ErrTruncated, err)
	}
	if h.HasFolderNames() {
		end, err = buf.CheckTableBounds(size, end, int(h.FolderCount), 1)
		if err == nil {
			end, err = buf.CheckTableBounds(size, end, int(h.TotalFolderNameLen), 1)
		}
		if err != nil {
			return fmt.Errorf("bsa header: folder names: %w: %w", ErrTruncated, err)
		}
	}
	end, err = buf.CheckTableBounds(size, end, int(h.FileCount), FileRecordSize)
	if err != nil {
		return fmt.Errorf("bsa header: file records (%d records): %w: %w", h.FileCount, ErrTruncated, err)
	}
	if h.HasFileNames() {
		if _, err := buf.CheckTableBounds(size, end, int(h.TotalFileNameLen), 1); err != nil {
			return fmt.Errorf("bsa header: file names: %w: %w", ErrTruncated, err)
		}
	}
	return nil
}
