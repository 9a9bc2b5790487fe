// Package testutil builds archives in memory for tests. Layouts follow the
// engine exactly, so every fixture is a valid archive unless a test mutates
// the returned bytes.
package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"

	"github.com/joshuapare/bsakit/internal/format"
)

// File is one asset to place in an archive.
type File struct {
	// Path is the virtual path, "folder\file" or "folder/file".
	Path string
	Data []byte
	// Invert flips the archive compression default for this file.
	Invert bool
	// FolderHash and FileHash override the computed hashes when non-zero.
	FolderHash uint64
	FileHash   uint64
}

// Builder assembles an archive.
type Builder struct {
	Version   uint32
	Flags     format.ArchiveFlags
	FileFlags uint32
	files     []File
}

// NewBuilder returns a builder with folder and file names enabled.
func NewBuilder(version uint32) *Builder {
	return &Builder{
		Version: version,
		Flags:   format.FlagFolderNames | format.FlagFileNames,
	}
}

// WithFlags replaces the archive flags.
func (b *Builder) WithFlags(f format.ArchiveFlags) *Builder {
	b.Flags = f
	return b
}

// Add appends an asset.
func (b *Builder) Add(path string, data []byte) *Builder {
	return b.AddFile(File{Path: path, Data: data})
}

// AddFile appends an asset with explicit options.
func (b *Builder) AddFile(f File) *Builder {
	b.files = append(b.files, f)
	return b
}

// Archive is a built archive plus the offsets tests need to corrupt it.
type Archive struct {
	Bytes []byte
	// FolderTable is the offset of the folder record table.
	FolderTable int
	// FolderBlocks holds the absolute offset of each folder block in
	// directory order.
	FolderBlocks []int
	// NameBlock is the offset of the file name block, or -1.
	NameBlock int
	// DataStart is the offset of the first data block.
	DataStart int
	// Paths lists the normalized virtual paths in directory order.
	Paths []string
}

type builtFile struct {
	name string
	hash uint64
	src  File
}

type builtFolder struct {
	name  string
	hash  uint64
	files []builtFile
}

// Build lays out the archive. A Version of format.TES3Magic produces a
// Morrowind archive; flags do not apply to that layout.
func (b *Builder) Build() (*Archive, error) {
	if b.Version == format.TES3Magic {
		return b.buildTES3(), nil
	}
	rev := format.Revision{Raw: b.Version}
	folders := b.group()

	order := binary.ByteOrder(binary.LittleEndian)
	if b.Flags.Has(format.FlagBigEndian) {
		order = binary.BigEndian
	}
	embed := b.Version >= 104 && b.Flags.Has(format.FlagEmbedNames)

	var totalFolderNames, totalFileNames, fileCount int
	for _, f := range folders {
		totalFolderNames += len(f.name) + 1
		for _, fl := range f.files {
			totalFileNames += len(fl.name) + 1
		}
		fileCount += len(f.files)
	}
	if !b.Flags.Has(format.FlagFolderNames) {
		totalFolderNames = 0
	}
	if !b.Flags.Has(format.FlagFileNames) {
		totalFileNames = 0
	}

	out := &Archive{FolderTable: format.HeaderSize, NameBlock: -1}
	pos := format.HeaderSize + len(folders)*rev.FolderRecordSize()
	for _, f := range folders {
		out.FolderBlocks = append(out.FolderBlocks, pos)
		if b.Flags.Has(format.FlagFolderNames) {
			pos += 1 + len(f.name) + 1
		}
		pos += len(f.files) * format.FileRecordSize
	}
	if b.Flags.Has(format.FlagFileNames) {
		out.NameBlock = pos
		pos += totalFileNames
	}
	out.DataStart = pos

	var data bytes.Buffer
	type placed struct{ size, offset uint32 }
	placements := make([][]placed, len(folders))
	for i, f := range folders {
		for _, fl := range f.files {
			path := fl.name
			if f.name != "" {
				path = f.name + `\` + fl.name
			}
			out.Paths = append(out.Paths, path)

			start := data.Len()
			if embed {
				data.WriteByte(byte(len(path)))
				data.WriteString(path)
			}
			compressed := b.Flags.Has(format.FlagCompressed) != fl.src.Invert
			if compressed {
				packed, err := compress(rev, fl.src.Data)
				if err != nil {
					return nil, err
				}
				var n [4]byte
				binary.LittleEndian.PutUint32(n[:], uint32(len(fl.src.Data)))
				data.Write(n[:])
				data.Write(packed)
			} else {
				data.Write(fl.src.Data)
			}
			size := uint32(data.Len() - start)
			if fl.src.Invert {
				size |= format.FileInvertCompressed
			}
			placements[i] = append(placements[i], placed{size: size, offset: uint32(pos + start)})
		}
	}

	buf := make([]byte, pos+data.Len())
	le := binary.LittleEndian
	copy(buf, format.Signature)
	le.PutUint32(buf[format.HeaderVersionOffset:], b.Version)
	le.PutUint32(buf[format.HeaderFolderTableOffset:], format.HeaderSize)
	le.PutUint32(buf[format.HeaderArchiveFlagsOffset:], uint32(b.Flags))
	le.PutUint32(buf[format.HeaderFolderCountOffset:], uint32(len(folders)))
	le.PutUint32(buf[format.HeaderFileCountOffset:], uint32(fileCount))
	le.PutUint32(buf[format.HeaderFolderNamesLenOffset:], uint32(totalFolderNames))
	le.PutUint32(buf[format.HeaderFileNamesLenOffset:], uint32(totalFileNames))
	le.PutUint32(buf[format.HeaderFileFlagsOffset:], b.FileFlags)

	names := out.NameBlock
	for i, f := range folders {
		rec := format.HeaderSize + i*rev.FolderRecordSize()
		order.PutUint64(buf[rec+format.FolderHashOffset:], f.hash)
		le.PutUint32(buf[rec+format.FolderCountOffset:], uint32(len(f.files)))
		stored := uint64(out.FolderBlocks[i] + totalFileNames)
		if rev.FolderRecordSize() == format.FolderRecordSize64 {
			le.PutUint64(buf[rec+format.FolderOffsetOffset64:], stored)
		} else {
			le.PutUint32(buf[rec+format.FolderOffsetOffset:], uint32(stored))
		}

		blk := out.FolderBlocks[i]
		if b.Flags.Has(format.FlagFolderNames) {
			buf[blk] = byte(len(f.name) + 1)
			copy(buf[blk+1:], f.name)
			blk += 1 + len(f.name) + 1
		}
		for j, fl := range f.files {
			fr := blk + j*format.FileRecordSize
			order.PutUint64(buf[fr+format.FileHashOffset:], fl.hash)
			le.PutUint32(buf[fr+format.FileSizeOffset:], placements[i][j].size)
			le.PutUint32(buf[fr+format.FileOffsetOffset:], placements[i][j].offset)
			if names >= 0 {
				copy(buf[names:], fl.name)
				names += len(fl.name) + 1
			}
		}
	}
	copy(buf[pos:], data.Bytes())
	out.Bytes = buf
	return out, nil
}

// buildTES3 lays out a Morrowind archive with files sorted by hash.
func (b *Builder) buildTES3() *Archive {
	type flatFile struct {
		path string
		name string
		hash uint64
		data []byte
	}
	files := make([]flatFile, 0, len(b.files))
	for _, f := range b.files {
		norm := format.NormalizePath(f.Path)
		h := f.FileHash
		if h == 0 {
			h = format.HashTES3(norm)
		}
		files = append(files, flatFile{path: norm, name: encoded(norm), hash: h, data: f.Data})
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].hash < files[j].hash })

	n := len(files)
	namesLen := 0
	for _, f := range files {
		namesLen += len(f.name) + 1
	}
	hashOff := n*(format.TES3RecordSize+format.TES3NameOffsetSize) + namesLen
	dataStart := format.TES3HeaderSize + hashOff + n*format.TES3HashSize
	dataLen := 0
	for _, f := range files {
		dataLen += len(f.data)
	}

	buf := make([]byte, dataStart+dataLen)
	le := binary.LittleEndian
	le.PutUint32(buf, format.TES3Magic)
	le.PutUint32(buf[format.TES3HashTableOffset:], uint32(hashOff))
	le.PutUint32(buf[format.TES3FileCountOffset:], uint32(n))

	out := &Archive{
		FolderTable: format.TES3HeaderSize,
		NameBlock:   format.TES3HeaderSize + n*(format.TES3RecordSize+format.TES3NameOffsetSize),
		DataStart:   dataStart,
	}
	nameOff, dataOff := 0, 0
	for i, f := range files {
		rec := format.TES3HeaderSize + i*format.TES3RecordSize
		le.PutUint32(buf[rec:], uint32(len(f.data)))
		le.PutUint32(buf[rec+4:], uint32(dataOff))
		le.PutUint32(buf[format.TES3HeaderSize+n*format.TES3RecordSize+i*format.TES3NameOffsetSize:], uint32(nameOff))
		copy(buf[out.NameBlock+nameOff:], f.name)
		le.PutUint64(buf[format.TES3HeaderSize+hashOff+i*format.TES3HashSize:], f.hash)
		copy(buf[dataStart+dataOff:], f.data)

		nameOff += len(f.name) + 1
		dataOff += len(f.data)
		out.Paths = append(out.Paths, f.path)
	}
	out.Bytes = buf
	return out
}

// MustBuild builds the archive or fails the test.
func (b *Builder) MustBuild(tb testing.TB) *Archive {
	tb.Helper()
	a, err := b.Build()
	if err != nil {
		tb.Fatalf("build archive: %v", err)
	}
	return a
}

// group splits files into folders sorted by hash, each with files sorted by
// hash. Sorting is stable so equal overridden hashes keep insertion order.
func (b *Builder) group() []builtFolder {
	byName := map[string]int{}
	var folders []builtFolder
	for _, f := range b.files {
		folder, file := format.SplitPath(format.NormalizePath(f.Path))
		idx, ok := byName[folder]
		if !ok {
			h := f.FolderHash
			if h == 0 {
				h = format.HashFolder(folder)
			}
			idx = len(folders)
			byName[folder] = idx
			folders = append(folders, builtFolder{name: encoded(folder), hash: h})
		}
		h := f.FileHash
		if h == 0 {
			h = format.HashFile(file)
		}
		folders[idx].files = append(folders[idx].files, builtFile{name: encoded(file), hash: h, src: f})
	}
	sort.SliceStable(folders, func(i, j int) bool { return folders[i].hash < folders[j].hash })
	for _, f := range folders {
		sort.SliceStable(f.files, func(i, j int) bool { return f.files[i].hash < f.files[j].hash })
	}
	return folders
}

// encoded returns name as it is stored on disk, in Windows-1252.
func encoded(name string) string {
	raw, _ := format.EncodeName(name)
	return string(raw)
}

func compress(rev format.Revision, data []byte) ([]byte, error) {
	var out bytes.Buffer
	if rev.Raw >= 105 {
		w := lz4.NewWriter(&out)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		return out.Bytes(), nil
	}
	w := zlib.NewWriter(&out)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	return out.Bytes(), nil
}

// WriteTemp writes data to a file in a per-test temporary directory and
// returns its path.
func WriteTemp(tb testing.TB, name string, data []byte) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Sample returns a small archive with one texture and one mesh, the fixture
// most tests start from.
func Sample(version uint32) *Builder {
	return NewBuilder(version).
		Add("textures/a.dds", []byte("dds payload")).
		Add("meshes/b.nif", []byte(strings.Repeat("nif", 32)))
}
