package main

import (
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/joshuapare/bsakit/pkg/bsa"
)

// progressBarCallback renders extraction progress as a single overall bar.
// Call Wait on the returned container after the extraction returns, and
// abort first when it failed so Wait does not block on an unfinished bar.
func progressBarCallback() (func(bsa.ExtractEvent), *mpb.Progress, func()) {
	progress := mpb.New(
		mpb.WithWidth(60),
		mpb.WithRefreshRate(100),
	)

	var bar *mpb.Bar
	callback := func(ev bsa.ExtractEvent) {
		switch ev.Type {
		case bsa.ExtractStart:
			bar = progress.AddBar(int64(ev.Total),
				mpb.PrependDecorators(
					decor.Name("Extracting", decor.WC{C: decor.DindentRight | decor.DextraSpace}),
					decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
				),
				mpb.AppendDecorators(
					decor.Percentage(decor.WC{W: 5}),
				),
			)
		case bsa.ExtractFileDone, bsa.ExtractFileSkipped:
			if bar != nil {
				bar.Increment()
			}
		case bsa.ExtractComplete:
			if bar != nil {
				bar.SetTotal(int64(ev.Total), true)
			}
		}
	}
	abort := func() {
		if bar != nil {
			bar.Abort(false)
		}
	}
	return callback, progress, abort
}
