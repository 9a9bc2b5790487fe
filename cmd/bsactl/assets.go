package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/bsakit/pkg/bsa"
)

var assetsLong bool

func init() {
	rootCmd.AddCommand(newAssetsCmd())
}

func newAssetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets <archive> [pattern]",
		Short: "List assets, optionally filtered by a regular expression",
		Long: `The assets command lists the virtual paths of the assets in an archive in
directory order. The optional pattern is a case-insensitive regular expression
matched against paths such as "textures\armor\iron.dds".

Example:
  bsactl assets "Skyrim - Meshes.bsa"
  bsactl assets "Skyrim - Textures.bsa" '\.dds$'
  bsactl assets "Skyrim - Sounds.bsa" '^sound\\fx' --long`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssets(args)
		},
	}
	cmd.Flags().BoolVarP(&assetsLong, "long", "l", false, "Show size, compression and offset")
	return cmd
}

func runAssets(args []string) error {
	path := args[0]
	pattern := ""
	if len(args) > 1 {
		pattern = args[1]
	}

	printVerbose("Opening archive: %s\n", path)
	r, err := bsa.Open(path, openOptions())
	if err != nil {
		return err
	}
	defer r.Close()

	entries, err := r.Assets(pattern)
	if err != nil {
		return fmt.Errorf("failed to list assets: %w", err)
	}

	if jsonOut {
		return printJSON(entries)
	}

	for _, e := range entries {
		if assetsLong {
			mark := "-"
			if e.Compressed {
				mark = "z"
			}
			printInfo("%s %10d  0x%08X  %s\n", mark, e.Size, e.Offset, e.Path)
			continue
		}
		printInfo("%s\n", e.Path)
	}
	printVerbose("%d asset(s)\n", len(entries))
	return nil
}
