package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/bsakit/pkg/types"
)

// Extract writes entries below dest, recreating their folder structure.
// Existing files are skipped unless opts.Overwrite is set. Writes run on a
// bounded worker pool; the first failure cancels the remaining work.
// Progress callbacks are serialized.
func Extract(ctx context.Context, r types.Reader, entries []types.AssetEntry, dest string, opts types.ExtractOptions) (types.ExtractResult, error) {
	var res types.ExtractResult
	root, err := filepath.Abs(dest)
	if err != nil {
		return res, wrapIOErr(err)
	}
	targets := make([]string, len(entries))
	for i, e := range entries {
		t, err := targetPath(root, e.Path)
		if err != nil {
			return res, err
		}
		targets[i] = t
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		mu      sync.Mutex
		done    int
		written = make([]bool, len(entries))
		skipped = make([]bool, len(entries))
	)
	notify := func(ev types.ExtractEvent) {
		if opts.Progress != nil {
			opts.Progress(ev)
		}
	}
	notify(types.ExtractEvent{Type: types.ExtractStart, Total: len(entries)})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, wrote, err := extractOne(r, entries[i], targets[i], opts.Overwrite)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			done++
			ev := types.ExtractEvent{Path: entries[i].Path, Bytes: n, Done: done, Total: len(entries)}
			if wrote {
				written[i] = true
				res.Bytes += n
				ev.Type = types.ExtractFileDone
			} else {
				skipped[i] = true
				ev.Type = types.ExtractFileSkipped
			}
			notify(ev)
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	for i, e := range entries {
		switch {
		case written[i]:
			res.Written = append(res.Written, e.Path)
		case skipped[i]:
			res.Skipped = append(res.Skipped, e.Path)
		}
	}
	if err != nil {
		return res, err
	}
	notify(types.ExtractEvent{Type: types.ExtractComplete, Bytes: res.Bytes, Done: done, Total: len(entries)})
	return res, nil
}

// createTarget opens an extraction target for writing.
var createTarget = func(name string, flag int) (io.WriteCloser, error) {
	return os.OpenFile(name, flag, 0o644)
}

// extractOne writes a single asset. It reports false when the target exists
// and overwrite is off.
func extractOne(r types.Reader, e types.AssetEntry, target string, overwrite bool) (int64, bool, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, false, wrapIOErr(err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := createTarget(target, flags)
	if errors.Is(err, fs.ErrExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrapIOErr(err)
	}

	data, err := r.ReadEntry(e)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return 0, false, err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return 0, false, wrapIOErr(fmt.Errorf("write %s: %w", target, err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return 0, false, wrapIOErr(err)
	}
	return int64(len(data)), true, nil
}

// targetPath maps a virtual path below root and rejects paths that would
// land outside it.
func targetPath(root, virtual string) (string, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(virtual, `\`, "/"))
	target := filepath.Join(root, rel)
	check, err := filepath.Rel(root, target)
	if err != nil || check == "." || check == ".." || strings.HasPrefix(check, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", &types.Error{
			Kind: types.ErrKindInvalidArgument,
			Msg:  fmt.Sprintf("asset path %q escapes destination", virtual),
		}
	}
	return target, nil
}
