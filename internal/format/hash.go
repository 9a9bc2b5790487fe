package format

import "bytes"

// Extension bonuses added to the low hash word.
const (
	hashBonusKF  = 0x80
	hashBonusNIF = 0x8000
	hashBonusDDS = 0x8080
	hashBonusWAV = 0x80000000

	hashMultiplier = 0x1003F
)

// HashName computes the archive hash of a folder path or a file name.
// Input is normalized first, so "Textures/Armor" and "textures\armor" hash
// identically. File names may include their folder; only the last segment
// is hashed.
func HashName(name string, isFolder bool) uint64 {
	if isFolder {
		return HashFolder(name)
	}
	return HashFile(name)
}

// HashFolder hashes a folder path. Folder hashes never split an extension.
func HashFolder(path string) uint64 {
	raw, _ := EncodeName(NormalizePath(path))
	return hashParts(raw, nil)
}

// HashFile hashes a file name, splitting off the extension at the last dot.
func HashFile(name string) uint64 {
	_, file := SplitPath(NormalizePath(name))
	raw, _ := EncodeName(file)
	return HashFileBytes(raw)
}

// HashFolderBytes hashes a raw Windows-1252 folder name after ASCII
// lower-casing and separator normalization.
func HashFolderBytes(raw []byte) uint64 {
	return hashParts(normalizeRaw(raw), nil)
}

// HashFileBytes hashes a raw Windows-1252 file name after ASCII lower-casing.
func HashFileBytes(raw []byte) uint64 {
	raw = normalizeRaw(raw)
	stem, ext := raw, []byte(nil)
	if i := bytes.LastIndexByte(raw, '.'); i >= 0 {
		stem, ext = raw[:i], raw[i:]
	}
	return hashParts(stem, ext)
}

func normalizeRaw(raw []byte) []byte {
	out := make([]byte, len(raw))
	for i, c := range raw {
		switch {
		case c >= 'A' && c <= 'Z':
			c += 'a' - 'A'
		case c == '/':
			c = '\\'
		}
		out[i] = c
	}
	return out
}

func hashParts(stem, ext []byte) uint64 {
	// The low word is summed in 64 bits; a bonus that overflows it carries
	// into the high word.
	var lo uint64
	var hi uint32
	if n := len(stem); n > 0 {
		lo = uint64(stem[n-1]) + uint64(n)<<16 + uint64(stem[0])<<24
		if n > 2 {
			lo += uint64(stem[n-2]) << 8
		}
		if n > 3 {
			hi = hashString(stem[1 : n-2])
		}
	}
	if len(ext) > 0 {
		switch string(ext) {
		case ".kf":
			lo += hashBonusKF
		case ".nif":
			lo += hashBonusNIF
		case ".dds":
			lo += hashBonusDDS
		case ".wav":
			lo += hashBonusWAV
		}
		hi += hashString(ext)
	}
	return uint64(hi)<<32 + lo
}

func hashString(b []byte) uint32 {
	var h uint32
	for _, c := range b {
		h = h*hashMultiplier + uint32(c)
	}
	return h
}
