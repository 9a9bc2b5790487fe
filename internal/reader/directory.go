package reader

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/joshuapare/bsakit/internal/buf"
	"github.com/joshuapare/bsakit/internal/format"
	"github.com/joshuapare/bsakit/pkg/types"
)

// folderEntry is one decoded folder record plus its block position.
type folderEntry struct {
	hash     uint64
	name     string // normalized; empty when folder names are absent
	rawName  []byte
	first    int // index of the folder's first file in index.files
	count    int
	recOff   int // folder record offset
	blockOff int // absolute block offset
}

// fileEntry is one decoded file record.
type fileEntry struct {
	folder  int
	name    string // normalized; empty when file names are absent
	rawName []byte
	rec     format.FileRecord
	recOff  int
}

// index is the immutable directory built at open. folders are strictly
// ascending by hash and each folder's files are strictly ascending by hash,
// so positional order is directory order and lookups can binary search.
type index struct {
	folders        []folderEntry
	files          []fileEntry
	namesAvailable bool
	dirEnd         int // first byte past the directory (records and names)

	// flat marks a Morrowind index: one unnamed folder, full paths as file
	// names, and byHash ordering files by hash for lookups.
	flat   bool
	byHash []int
}

// buildIndex decodes the folder table, every folder block and the file name
// block. It runs in O(folders + files) and never reads outside b.
func buildIndex(b []byte, h format.Header, limits types.Limits, record func(types.Diagnostic)) (*index, error) {
	if h.Revision.Layout == format.LayoutTES3 {
		return buildFlatIndex(b, h, limits, record)
	}
	if int64(h.FolderCount) > int64(limits.MaxFolders) {
		return nil, fmt.Errorf("folder count %d exceeds limit %d: %w", h.FolderCount, limits.MaxFolders, format.ErrInconsistent)
	}
	if int64(h.FileCount) > int64(limits.MaxFiles) {
		return nil, fmt.Errorf("file count %d exceeds limit %d: %w", h.FileCount, limits.MaxFiles, format.ErrInconsistent)
	}

	order := h.HashOrder()
	c := buf.NewCursor(b)
	idx := &index{
		folders:        make([]folderEntry, 0, h.FolderCount),
		files:          make([]fileEntry, 0, h.FileCount),
		namesAvailable: h.HasFolderNames() && h.HasFileNames(),
	}

	recSize := h.Revision.FolderRecordSize()
	blocksEnd := h.DirectoryEnd()
	for i := 0; i < int(h.FolderCount); i++ {
		recOff := int(h.FolderTableOffset) + i*recSize
		rec, err := format.DecodeFolderRecord(b, recOff, h.Revision, order)
		if err != nil {
			return nil, fmt.Errorf("folder %d: %w", i, err)
		}
		if i > 0 && rec.Hash <= idx.folders[i-1].hash {
			return nil, fmt.Errorf("folder %d: hash %016x after %016x: %w", i, rec.Hash, idx.folders[i-1].hash, format.ErrUnsorted)
		}
		blockOff, err := rec.BlockOffset(h)
		if err != nil {
			return nil, err
		}
		if blockOff < h.DirectoryEnd() {
			return nil, fmt.Errorf("folder %016x: block at %d overlaps folder table: %w", rec.Hash, blockOff, format.ErrInconsistent)
		}

		fe := folderEntry{
			hash:     rec.Hash,
			first:    len(idx.files),
			count:    int(rec.Count),
			recOff:   recOff,
			blockOff: blockOff,
		}
		pos := blockOff
		if h.HasFolderNames() {
			raw, n, err := c.BZString(pos)
			if err != nil {
				return nil, fmt.Errorf("folder %016x name: %w: %w", rec.Hash, format.ErrTruncated, err)
			}
			fe.rawName = raw
			fe.name = format.NormalizePath(format.DecodeName(raw))
			pos += n
		}

		if len(idx.files)+fe.count > int(h.FileCount) {
			return nil, fmt.Errorf("folder %016x: %d files exceed header count %d: %w", rec.Hash, fe.count, h.FileCount, format.ErrInconsistent)
		}
		end, err := buf.CheckTableBounds(len(b), pos, fe.count, format.FileRecordSize)
		if err != nil {
			return nil, fmt.Errorf("folder %016x file records: %w: %w", rec.Hash, format.ErrTruncated, err)
		}
		for j := 0; j < fe.count; j++ {
			off := pos + j*format.FileRecordSize
			fr, err := format.DecodeFileRecord(b, off, order)
			if err != nil {
				return nil, fmt.Errorf("folder %016x file %d: %w", rec.Hash, j, err)
			}
			if j > 0 && fr.Hash <= idx.files[len(idx.files)-1].rec.Hash {
				return nil, fmt.Errorf("folder %016x file %d: hash %016x: %w", rec.Hash, j, fr.Hash, format.ErrUnsorted)
			}
			idx.files = append(idx.files, fileEntry{folder: i, rec: fr, recOff: off})
		}
		idx.folders = append(idx.folders, fe)
		blocksEnd = max(blocksEnd, end)
	}

	if len(idx.files) != int(h.FileCount) {
		return nil, fmt.Errorf("folder counts sum to %d, header says %d: %w", len(idx.files), h.FileCount, format.ErrInconsistent)
	}

	idx.dirEnd = blocksEnd
	if h.HasFileNames() {
		block, err := c.Bytes(blocksEnd, int(h.TotalFileNameLen))
		if err != nil {
			return nil, fmt.Errorf("file name block: %w: %w", format.ErrTruncated, err)
		}
		names := buf.NewCursor(block)
		pos := 0
		for i := range idx.files {
			raw, n, err := names.CString(pos)
			if err != nil {
				return nil, fmt.Errorf("file name %d: %w: %w", i, format.ErrTruncated, err)
			}
			idx.files[i].rawName = raw
			idx.files[i].name = format.NormalizePath(format.DecodeName(raw))
			pos += n
		}
		idx.dirEnd = blocksEnd + len(block)
	}

	if record != nil {
		checkNameHashes(idx, h, record)
	}
	return idx, nil
}

// path renders the virtual path of the i-th file. Without stored names the
// hashes stand in: #<folder hash>\#<file hash>.
func (x *index) path(i int) string {
	f := x.files[i]
	folder := x.folders[f.folder]
	if !x.namesAvailable {
		return "#" + hex16(folder.hash) + `\#` + hex16(f.rec.Hash)
	}
	if folder.name == "" {
		return f.name
	}
	return folder.name + `\` + f.name
}

// lookup resolves a virtual path by hashing it and binary searching the
// folder table and then the folder's file records. Hash placeholder paths
// resolve without hashing.
func (x *index) lookup(path string) (int, bool) {
	if x.flat {
		return x.lookupFlat(path)
	}
	folder, file := format.SplitPath(format.NormalizePath(path))
	fh, ok := parseHashName(folder)
	if !ok {
		fh = format.HashFolder(folder)
	}
	h, ok := parseHashName(file)
	hashed := ok
	if !ok {
		h = format.HashFile(file)
	}

	fi := sort.Search(len(x.folders), func(i int) bool { return x.folders[i].hash >= fh })
	if fi == len(x.folders) || x.folders[fi].hash != fh {
		return 0, false
	}
	fe := x.folders[fi]
	files := x.files[fe.first : fe.first+fe.count]
	j := sort.Search(len(files), func(i int) bool { return files[i].rec.Hash >= h })
	if j == len(files) || files[j].rec.Hash != h {
		return 0, false
	}
	// A hash match on a differently named record is a collision, not a hit.
	if x.namesAvailable && !hashed && (fe.name != folder || files[j].name != file) {
		return 0, false
	}
	return fe.first + j, true
}

// parseHashName decodes a "#<16 hex digits>" placeholder.
func parseHashName(s string) (uint64, bool) {
	if len(s) != 17 || s[0] != '#' {
		return 0, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func hex16(v uint64) string {
	s := strconv.FormatUint(v, 16)
	return strings.Repeat("0", 16-len(s)) + s
}

// checkNameHashes recomputes every stored hash from its decoded name.
func checkNameHashes(x *index, h format.Header, record func(types.Diagnostic)) {
	if x.flat {
		for _, f := range x.files {
			if got := format.HashTES3Bytes(f.rawName); got != f.rec.Hash {
				record(diagIntegrity(types.SevWarning, uint64(f.recOff), "file",
					"file hash does not match its name", hex16(got), hex16(f.rec.Hash), f.name))
			}
		}
		return
	}
	if h.HasFolderNames() {
		for _, fe := range x.folders {
			if got := format.HashFolderBytes(fe.rawName); got != fe.hash {
				record(diagIntegrity(types.SevWarning, uint64(fe.recOff), "folder",
					"folder hash does not match its name", hex16(got), hex16(fe.hash), fe.name))
			}
		}
	}
	if h.HasFileNames() {
		for i, f := range x.files {
			if got := format.HashFileBytes(f.rawName); got != f.rec.Hash {
				path := f.name
				if x.namesAvailable {
					path = x.path(i)
				}
				record(diagIntegrity(types.SevWarning, uint64(f.recOff), "file",
					"file hash does not match its name", hex16(got), hex16(f.rec.Hash), path))
			}
		}
	}
}
