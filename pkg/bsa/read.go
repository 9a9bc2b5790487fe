package bsa

import (
	"context"
	"fmt"

	"github.com/joshuapare/bsakit/internal/reader"
)

// Open opens an archive for repeated queries. The caller must Close it.
func Open(path string, opts *Options) (Reader, error) {
	r, err := reader.Open(path, opts.open())
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return r, nil
}

// OpenBytes opens an archive held in memory. b must not change while the
// reader is open.
func OpenBytes(b []byte, opts *Options) (Reader, error) {
	r, err := reader.OpenBytes(b, opts.open())
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	return r, nil
}

// GetArchiveInfo returns the decoded header of the archive at path.
func GetArchiveInfo(path string, opts *Options) (ArchiveInfo, error) {
	r, err := Open(path, opts)
	if err != nil {
		return ArchiveInfo{}, err
	}
	defer r.Close()
	return r.Info(), nil
}

// ListAssets returns the virtual paths matching pattern in directory order.
// The empty pattern lists everything.
func ListAssets(path, pattern string, opts *Options) ([]string, error) {
	r, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ListAssetsWithReader(r, pattern)
}

// ListAssetsWithReader is ListAssets over an already open reader.
func ListAssetsWithReader(r Reader, pattern string) ([]string, error) {
	entries, err := r.Assets(pattern)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out, nil
}

// ContainsAsset reports whether the archive at path holds assetPath.
func ContainsAsset(path, assetPath string, opts *Options) (bool, error) {
	r, err := Open(path, opts)
	if err != nil {
		return false, err
	}
	defer r.Close()
	return r.Contains(assetPath)
}

// ReadAsset returns the decompressed bytes of one asset.
func ReadAsset(path, assetPath string, opts *Options) ([]byte, error) {
	r, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.ReadAsset(assetPath)
}

// Checksum returns the CRC-32 of one decompressed asset.
func Checksum(path, assetPath string, opts *Options) (uint32, error) {
	r, err := Open(path, opts)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return r.Checksum(assetPath)
}

// ExtractAssets writes every asset matching pattern below dest.
func ExtractAssets(ctx context.Context, path, pattern, dest string, opts *Options) (ExtractResult, error) {
	r, err := Open(path, opts)
	if err != nil {
		return ExtractResult{}, err
	}
	defer r.Close()
	return ExtractAssetsWithReader(ctx, r, pattern, dest, opts.extract())
}

// ExtractAssetsWithReader is ExtractAssets over an already open reader.
func ExtractAssetsWithReader(ctx context.Context, r Reader, pattern, dest string, opts ExtractOptions) (ExtractResult, error) {
	entries, err := r.Assets(pattern)
	if err != nil {
		return ExtractResult{}, err
	}
	return reader.Extract(ctx, r, entries, dest, opts)
}

// Diagnose scans the archive at path and returns every finding.
func Diagnose(path string, opts *Options) (*DiagnosticReport, error) {
	r, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	report, err := r.Diagnose()
	if err != nil {
		return nil, err
	}
	report.FilePath = path
	return report, nil
}
