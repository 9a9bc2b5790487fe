package reader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"

	"github.com/joshuapare/bsakit/internal/buf"
	"github.com/joshuapare/bsakit/internal/format"
	"github.com/joshuapare/bsakit/pkg/types"
)

// dataBlock returns the stored bytes of e with any embedded name stripped.
//
//	[bstring path]        when the archive embeds names (revision >= 104)
//	[u32 original size]   when the entry is compressed
//	payload               raw bytes, zlib stream, or LZ4 frame
func (r *reader) dataBlock(e types.AssetEntry) ([]byte, error) {
	block, ok := buf.Slice(r.buf, int(e.Offset), int(e.Size))
	if !ok {
		return nil, fmt.Errorf("data block at %d (%d bytes) past end of archive (%d bytes): %w",
			e.Offset, e.Size, len(r.buf), format.ErrTruncated)
	}
	if r.head.EmbedsNames() {
		_, n, err := buf.NewCursor(block).BString(0)
		if err != nil {
			return nil, fmt.Errorf("embedded name: %w: %w", format.ErrTruncated, err)
		}
		block = block[n:]
	}
	return block, nil
}

func (r *reader) readData(e types.AssetEntry) ([]byte, error) {
	block, err := r.dataBlock(e)
	if err != nil {
		return nil, wrapFormatErr(err)
	}
	limit := r.opts.Limits.MaxAssetSize

	if !e.Compressed {
		if int64(len(block)) > limit {
			return nil, wrapFormatErr(fmt.Errorf("asset size %d exceeds limit %d: %w", len(block), limit, format.ErrInconsistent))
		}
		return bytes.Clone(block), nil
	}

	if len(block) < format.CompressedSizePrefix {
		return nil, wrapFormatErr(fmt.Errorf("compressed block of %d bytes lacks size prefix: %w", len(block), format.ErrTruncated))
	}
	size := binary.LittleEndian.Uint32(block)
	if int64(size) > limit {
		return nil, wrapFormatErr(fmt.Errorf("decompressed size %d exceeds limit %d: %w", size, limit, format.ErrInconsistent))
	}
	out, err := inflate(r.head.Revision.Codec, block[format.CompressedSizePrefix:], int(size))
	if err != nil {
		return nil, wrapFormatErr(err)
	}
	r.log.Debug("asset inflated", "path", e.Path, "stored", e.Size, "size", size, "codec", r.head.Revision.Codec)
	return out, nil
}

// inflateGrowHint bounds the initial output buffer to a multiple of the
// compressed payload length.
const inflateGrowHint = 8

// inflate decodes a compressed payload whose decoded length must be exactly
// size.
func inflate(codec format.Codec, payload []byte, size int) ([]byte, error) {
	var (
		rd  io.Reader
		err error
	)
	switch codec {
	case format.CodecLZ4:
		rd = lz4.NewReader(bytes.NewReader(payload))
	default:
		var zr io.ReadCloser
		zr, err = zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("%s stream: %w: %w", codec, format.ErrDecompress, err)
		}
		defer zr.Close()
		rd = zr
	}

	// The size prefix is untrusted, so the buffer grows with the decoded
	// output instead of being allocated up front.
	var out bytes.Buffer
	out.Grow(min(size, len(payload)*inflateGrowHint))
	n, err := io.Copy(&out, io.LimitReader(rd, int64(size)+1))
	if err != nil {
		return nil, fmt.Errorf("%s stream: %w: %w", codec, format.ErrDecompress, err)
	}
	switch {
	case n < int64(size):
		return nil, fmt.Errorf("%s stream shorter than %d bytes (%d): %w", codec, size, n, format.ErrDecompress)
	case n > int64(size):
		return nil, fmt.Errorf("%s stream longer than %d bytes: %w", codec, size, format.ErrDecompress)
	}
	return out.Bytes(), nil
}
