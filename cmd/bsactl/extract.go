package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"

	"github.com/joshuapare/bsakit/pkg/bsa"
)

var (
	extractOverwrite bool
	extractWorkers   int
	extractProgress  bool
)

func init() {
	rootCmd.AddCommand(newExtractCmd())
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <archive> <dest> [pattern]",
		Short: "Extract assets to a directory",
		Long: `The extract command writes the decompressed assets of an archive below a
destination directory, recreating the folder structure. Existing files are
skipped unless --overwrite is given.

Example:
  bsactl extract "Skyrim - Meshes.bsa" out
  bsactl extract "Skyrim - Textures.bsa" out '\.dds$' --workers 8 --progress`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), args)
		},
	}
	cmd.Flags().BoolVar(&extractOverwrite, "overwrite", false, "Replace existing files")
	cmd.Flags().IntVarP(&extractWorkers, "workers", "w", 0, "Concurrent writers (default: number of CPUs)")
	cmd.Flags().BoolVarP(&extractProgress, "progress", "p", false, "Show a progress bar")
	return cmd
}

func runExtract(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	path, dest := args[0], args[1]
	pattern := ""
	if len(args) > 2 {
		pattern = args[2]
	}

	opts := openOptions()
	opts.Extract = bsa.ExtractOptions{
		Overwrite: extractOverwrite,
		Workers:   extractWorkers,
	}

	var (
		progress *mpb.Progress
		abort    func()
	)
	if extractProgress && !quiet && !verbose && !jsonOut {
		opts.Extract.Progress, progress, abort = progressBarCallback()
	}

	printVerbose("Extracting %s to %s\n", path, dest)
	res, err := bsa.ExtractAssets(ctx, path, pattern, dest, opts)

	// Wait for progress bars to finish rendering
	if progress != nil {
		if err != nil {
			abort()
		}
		progress.Wait()
	}
	if err != nil {
		return fmt.Errorf("failed to extract: %w", err)
	}

	if jsonOut {
		return printJSON(res)
	}
	for _, p := range res.Written {
		printVerbose("  wrote %s\n", p)
	}
	for _, p := range res.Skipped {
		printVerbose("  skipped %s (exists)\n", p)
	}
	printInfo("Extracted %d asset(s), %s", len(res.Written), formatSize(res.Bytes))
	if len(res.Skipped) > 0 {
		printInfo(", skipped %d existing", len(res.Skipped))
	}
	printInfo("\n")
	return nil
}
