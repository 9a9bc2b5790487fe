package format

import "fmt"

// Codec identifies the stream format of compressed data blocks.
type Codec int

const (
	CodecZlib Codec = iota
	CodecLZ4
	// CodecNone marks layouts that never compress data.
	CodecNone
)

func (c Codec) String() string {
	switch c {
	case CodecZlib:
		return "zlib"
	case CodecLZ4:
		return "lz4"
	case CodecNone:
		return "none"
	default:
		return fmt.Sprintf("codec(%d)", int(c))
	}
}

// Layout identifies the archive family a revision belongs to.
type Layout int

const (
	// LayoutTES4 is the "BSA\0" layout with folder and file record tables.
	LayoutTES4 Layout = iota
	// LayoutTES3 is the flat Morrowind layout: one file table, full paths.
	LayoutTES3
)

func (l Layout) String() string {
	if l == LayoutTES3 {
		return "tes3"
	}
	return "tes4"
}

// Revision maps a raw header version to a semantic version triple and the
// layout details that differ between revisions.
type Revision struct {
	Raw    uint32
	Major  uint32
	Minor  uint32
	Patch  uint32
	Game   string
	Codec  Codec
	Layout Layout
}

func (r Revision) String() string {
	return fmt.Sprintf("%d.%d.%d", r.Major, r.Minor, r.Patch)
}

// FolderRecordSize returns the on-disk size of one folder record.
func (r Revision) FolderRecordSize() int {
	if r.Layout == LayoutTES4 && r.Raw >= 105 {
		return FolderRecordSize64
	}
	return FolderRecordSize
}

// SupportsEmbeddedNames reports whether the embed-names archive flag is
// meaningful. Revision 103 reuses the bit for an unrelated Xbox marker.
func (r Revision) SupportsEmbeddedNames() bool {
	return r.Layout == LayoutTES4 && r.Raw >= 104
}

// Revisions lists the archive revisions accepted by default.
var Revisions = []Revision{
	{Raw: 104, Major: 1, Minor: 4, Patch: 0, Game: "Fallout 3 / Fallout: New Vegas / Skyrim", Codec: CodecZlib},
	{Raw: 105, Major: 1, Minor: 5, Patch: 0, Game: "Skyrim Special Edition", Codec: CodecLZ4},
}

// LegacyRevisions lists revisions that are only accepted on request.
var LegacyRevisions = []Revision{
	{Raw: 103, Major: 1, Minor: 3, Patch: 0, Game: "Oblivion", Codec: CodecZlib},
}

// RevisionTES3 describes Morrowind archives. Its raw value is the
// four-byte magic, since that layout has no separate version field.
var RevisionTES3 = Revision{Raw: TES3Magic, Major: 1, Minor: 0, Patch: 0, Game: "Morrowind", Codec: CodecNone, Layout: LayoutTES3}

// LookupRevision resolves a raw version. Legacy revisions are consulted only
// when legacy is true.
func LookupRevision(raw uint32, legacy bool) (Revision, error) {
	for _, r := range Revisions {
		if r.Raw == raw {
			return r, nil
		}
	}
	if legacy {
		for _, r := range LegacyRevisions {
			if r.Raw == raw {
				return r, nil
			}
		}
	}
	return Revision{}, fmt.Errorf("version %d: %w", raw, ErrUnknownVersion)
}
