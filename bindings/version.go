package bindings

// Library version reported to foreign callers.
const (
	LibraryMajor = 2
	LibraryMinor = 0
	LibraryPatch = 0
)

// LibraryVersion returns the library version triple.
func LibraryVersion() (major, minor, patch uint32) {
	return LibraryMajor, LibraryMinor, LibraryPatch
}

// IsCompatible reports whether a caller built against the given version can
// use this library. Only an exact match is compatible.
func IsCompatible(major, minor, patch uint32) bool {
	return major == LibraryMajor && minor == LibraryMinor && patch == LibraryPatch
}
