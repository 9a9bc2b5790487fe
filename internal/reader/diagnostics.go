package reader

import (
	"sync"

	"github.com/joshuapare/bsakit/pkg/types"
)

// diagnosticCollector keeps the findings raised while the directory is
// indexed at open time, such as a folder or file hash that disagrees with
// its stored name. The reader only allocates one when
// OpenOptions.CollectDiagnostics is set; a nil collector drops everything.
type diagnosticCollector struct {
	mu       sync.Mutex
	findings []types.Diagnostic
	report   *types.DiagnosticReport // built on first read
}

func newDiagnosticCollector() *diagnosticCollector {
	return &diagnosticCollector{}
}

func (dc *diagnosticCollector) record(d types.Diagnostic) {
	if dc == nil {
		return
	}
	dc.mu.Lock()
	dc.findings = append(dc.findings, d)
	dc.report = nil
	dc.mu.Unlock()
}

// getReport summarizes the open-time findings. The report is cached until
// another finding arrives.
func (dc *diagnosticCollector) getReport() *types.DiagnosticReport {
	if dc == nil {
		return nil
	}
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.report == nil {
		dc.report = types.NewDiagnosticReport()
		for _, d := range dc.findings {
			dc.report.Add(d)
		}
		dc.report.Finalize()
	}
	return dc.report
}

// diagStructure reports a header or directory table problem. structure names
// the record kind ("header", "folder", "file").
func diagStructure(sev types.Severity, off uint64, structure, issue string, expected, actual any) types.Diagnostic {
	return types.Diagnostic{
		Severity:  sev,
		Category:  types.DiagStructure,
		Offset:    off,
		Structure: structure,
		Issue:     issue,
		Expected:  expected,
		Actual:    actual,
	}
}

// diagData reports a problem with the data block of the asset at path; off
// is the block's absolute offset.
func diagData(sev types.Severity, off uint64, issue string, expected, actual any, path string) types.Diagnostic {
	d := diagStructure(sev, off, "data", issue, expected, actual)
	d.Category = types.DiagData
	d.Path = path
	return d
}

// diagIntegrity reports a stored value that contradicts another part of the
// archive: a name hash against its name, an embedded path against the
// directory path, or two records claiming one virtual path.
func diagIntegrity(sev types.Severity, off uint64, structure, issue string, expected, actual any, path string) types.Diagnostic {
	d := diagStructure(sev, off, structure, issue, expected, actual)
	d.Category = types.DiagIntegrity
	d.Path = path
	return d
}
