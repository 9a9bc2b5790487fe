package reader

import (
	"encoding/binary"
	"time"

	"github.com/joshuapare/bsakit/internal/buf"
	"github.com/joshuapare/bsakit/internal/format"
	"github.com/joshuapare/bsakit/pkg/types"
)

// diagnosticScanner walks an opened archive and records every non-fatal
// problem it can find. Structural errors that would prevent opening never
// reach it.
type diagnosticScanner struct {
	r      *reader
	report *types.DiagnosticReport
}

func newDiagnosticScanner(r *reader) *diagnosticScanner {
	return &diagnosticScanner{r: r, report: types.NewDiagnosticReport()}
}

func (s *diagnosticScanner) scan() *types.DiagnosticReport {
	start := time.Now()
	s.report.FileSize = int64(len(s.r.buf))

	s.scanHeader()
	checkNameHashes(s.r.idx, s.r.head, s.report.Add)
	s.scanData()

	s.report.Summary.FoldersTested = len(s.r.idx.folders)
	s.report.Summary.FilesTested = len(s.r.idx.files)
	s.report.ScanTime = time.Since(start)
	s.report.Finalize()
	s.r.log.Debug("diagnose complete",
		"critical", s.report.Summary.Critical,
		"errors", s.report.Summary.Errors,
		"warnings", s.report.Summary.Warnings,
	)
	return s.report
}

func (s *diagnosticScanner) scanHeader() {
	h := s.r.head
	if h.Revision.Layout == format.LayoutTES3 {
		return
	}
	if h.Revision.Raw < 104 && h.Flags.Has(format.FlagEmbedNames) {
		s.report.Add(diagStructure(types.SevInfo, format.HeaderArchiveFlagsOffset, "header",
			"embed-names flag ignored before revision 104", nil, uint32(h.Flags)))
	}
	if h.HasFolderNames() != h.HasFileNames() {
		s.report.Add(diagStructure(types.SevInfo, format.HeaderArchiveFlagsOffset, "header",
			"only one of folder names and file names is stored; paths use hashes", nil, uint32(h.Flags)))
	}
	if h.FileCount > 0 && !h.HasFolderNames() && !h.HasFileNames() {
		s.report.Add(diagStructure(types.SevInfo, format.HeaderArchiveFlagsOffset, "header",
			"archive stores no names; paths use hashes", nil, uint32(h.Flags)))
	}
}

// scanData checks every data block: inside the buffer, after the directory,
// readable size prefix, and a unique virtual path.
func (s *diagnosticScanner) scanData() {
	r := s.r
	seen := make(map[string]int, len(r.idx.files))
	for i := range r.idx.files {
		e := r.entry(i)
		if prev, dup := seen[e.Path]; dup {
			s.report.Add(diagIntegrity(types.SevError, uint64(r.idx.files[i].recOff), "file",
				"duplicate virtual path", nil, r.idx.files[prev].rec.Offset, e.Path))
		} else {
			seen[e.Path] = i
		}

		end := uint64(e.Offset) + uint64(e.Size)
		if end > uint64(len(r.buf)) {
			s.report.Add(diagData(types.SevError, uint64(e.Offset),
				"data block extends past end of archive", len(r.buf), end, e.Path))
			continue
		}
		if int(e.Offset) < r.idx.dirEnd && e.Size > 0 {
			s.report.Add(diagData(types.SevWarning, uint64(e.Offset),
				"data block overlaps directory", r.idx.dirEnd, e.Offset, e.Path))
		}
		if e.Compressed && e.Size == 0 {
			s.report.Add(diagData(types.SevWarning, uint64(e.Offset),
				"compressed entry has zero size", nil, 0, e.Path))
			continue
		}

		block, err := r.dataBlock(e)
		if err != nil {
			s.report.Add(diagData(types.SevError, uint64(e.Offset),
				"embedded name does not fit in data block", nil, e.Size, e.Path))
			continue
		}
		if r.head.EmbedsNames() && r.idx.namesAvailable {
			raw, _, _ := buf.NewCursor(r.buf[e.Offset:]).BString(0)
			if got := format.NormalizePath(format.DecodeName(raw)); got != e.Path {
				s.report.Add(diagIntegrity(types.SevWarning, uint64(e.Offset), "data",
					"embedded name differs from directory path", e.Path, got, e.Path))
			}
		}
		if e.Compressed {
			if len(block) < format.CompressedSizePrefix {
				s.report.Add(diagData(types.SevError, uint64(e.Offset),
					"compressed block lacks size prefix", format.CompressedSizePrefix, len(block), e.Path))
				continue
			}
			size := binary.LittleEndian.Uint32(block)
			if int64(size) > r.opts.Limits.MaxAssetSize {
				s.report.Add(diagData(types.SevWarning, uint64(e.Offset),
					"decompressed size exceeds limit", r.opts.Limits.MaxAssetSize, size, e.Path))
			}
		}
	}
}
