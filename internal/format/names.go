package format

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Names inside an archive are stored in Windows-1252. DecodeName converts
// them to UTF-8; bytes without a mapping decode to U+FFFD.
func DecodeName(raw []byte) string {
	ascii := true
	for _, c := range raw {
		if c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(raw)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "�")
	}
	return string(out)
}

// EncodeName converts a UTF-8 name back to Windows-1252 for hashing. Runes
// without a Windows-1252 mapping cause ok to be false.
func EncodeName(name string) ([]byte, bool) {
	out, err := charmap.Windows1252.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return []byte(name), false
	}
	return out, true
}

// NormalizePath lower-cases the ASCII letters of p, converts forward slashes
// to backslashes, and strips leading and trailing separators so that user
// input compares equal to stored virtual paths. Non-ASCII letters keep their
// case, matching the byte-wise lower-casing the name hashes use.
func NormalizePath(p string) string {
	p = strings.Map(asciiLower, strings.ReplaceAll(p, "/", `\`))
	p = strings.Trim(p, `\`)
	for strings.Contains(p, `\\`) {
		p = strings.ReplaceAll(p, `\\`, `\`)
	}
	return p
}

// SplitPath separates a normalized virtual path into folder and file parts.
// A path without a separator has an empty folder.
func SplitPath(p string) (folder, file string) {
	i := strings.LastIndexByte(p, '\\')
	if i < 0 {
		return "", p
	}
	return p[:i], p[i+1:]
}

func asciiLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
