package reader

import (
	"fmt"
	"math"
	"sort"

	"github.com/joshuapare/bsakit/internal/format"
	"github.com/joshuapare/bsakit/pkg/types"
)

// buildFlatIndex decodes a Morrowind archive. Its file table carries full
// paths, so every file goes into a single unnamed folder and lookups use
// byHash instead of the folder table.
func buildFlatIndex(b []byte, h format.Header, limits types.Limits, record func(types.Diagnostic)) (*index, error) {
	if int64(h.FileCount) > int64(limits.MaxFiles) {
		return nil, fmt.Errorf("file count %d exceeds limit %d: %w", h.FileCount, limits.MaxFiles, format.ErrInconsistent)
	}
	n := int(h.FileCount)
	dataStart := h.DirectoryEnd()
	idx := &index{
		folders:        []folderEntry{{count: n}},
		files:          make([]fileEntry, 0, n),
		byHash:         make([]int, n),
		namesAvailable: true,
		flat:           true,
		dirEnd:         dataStart,
	}
	for i := 0; i < n; i++ {
		rec, err := format.DecodeTES3Record(b, h, i)
		if err != nil {
			return nil, err
		}
		if rec.Size > format.FileSizeMask {
			return nil, fmt.Errorf("tes3 file %d: size %d: %w", i, rec.Size, format.ErrInconsistent)
		}
		abs := uint64(dataStart) + uint64(rec.Offset)
		if abs > math.MaxUint32 {
			return nil, fmt.Errorf("tes3 file %d: data offset %d: %w", i, abs, format.ErrInconsistent)
		}
		idx.files = append(idx.files, fileEntry{
			name:    format.NormalizePath(format.DecodeName(rec.RawName)),
			rawName: rec.RawName,
			rec:     format.FileRecord{Hash: rec.Hash, RawSize: rec.Size, Offset: uint32(abs)},
			recOff:  rec.RecOff,
		})
		idx.byHash[i] = i
	}
	sort.SliceStable(idx.byHash, func(a, b int) bool {
		return idx.files[idx.byHash[a]].rec.Hash < idx.files[idx.byHash[b]].rec.Hash
	})

	if record != nil {
		checkNameHashes(idx, h, record)
	}
	return idx, nil
}

// lookupFlat resolves a full path through the hash-sorted permutation.
// Colliding hashes are told apart by name.
func (x *index) lookupFlat(path string) (int, bool) {
	norm := format.NormalizePath(path)
	h := format.HashTES3(norm)
	j := sort.Search(len(x.byHash), func(i int) bool { return x.files[x.byHash[i]].rec.Hash >= h })
	for ; j < len(x.byHash); j++ {
		f := x.files[x.byHash[j]]
		if f.rec.Hash != h {
			break
		}
		if f.name == norm {
			return x.byHash[j], true
		}
	}
	return 0, false
}
