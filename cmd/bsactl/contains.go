package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/bsakit/pkg/bsa"
)

func init() {
	rootCmd.AddCommand(newContainsCmd())
}

func newContainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "contains <archive> <asset>",
		Short: "Report whether an archive holds an asset",
		Long: `The contains command resolves an asset path through the archive's hash
index. Paths are case-insensitive and accept either slash direction. The exit
status is 1 when the asset is absent.

Example:
  bsactl contains "Skyrim - Textures.bsa" textures/sky/skyrimcloudsfade.dds`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContains(args)
		},
	}
}

func runContains(args []string) error {
	ok, err := bsa.ContainsAsset(args[0], args[1], openOptions())
	if err != nil {
		return err
	}
	if jsonOut {
		if err := printJSON(map[string]any{"asset": args[1], "present": ok}); err != nil {
			return err
		}
	} else if ok {
		printInfo("%s: present\n", args[1])
	} else {
		printInfo("%s: absent\n", args[1])
	}
	if !ok {
		return &exitError{code: 1}
	}
	return nil
}
