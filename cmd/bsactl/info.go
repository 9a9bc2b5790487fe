package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/bsakit/internal/format"
	"github.com/joshuapare/bsakit/pkg/bsa"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <archive>",
		Short: "Validate an archive header and report basic metadata",
		Long: `The info command opens a BSA archive, validates its header and directory,
and displays the version, flags and record counts.

Example:
  bsactl info "Skyrim - Textures.bsa"
  bsactl info "Skyrim - Textures.bsa" --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

func runInfo(args []string) error {
	path := args[0]

	printVerbose("Opening archive: %s\n", path)

	info, err := bsa.GetArchiveInfo(path, openOptions())
	if err != nil {
		return fmt.Errorf("failed to get archive info: %w", err)
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nArchive Information:\n")
	printInfo("  File:     %s\n", path)
	printInfo("  Size:     %s\n", formatSize(info.Size))
	printInfo("  Version:  %d (%d.%d.%d, %s)\n", info.Version, info.Major, info.Minor, info.Patch, info.Game)
	printInfo("  Codec:    %s\n", info.Codec)
	printInfo("  Flags:    0x%03X %s\n", info.Flags, describeFlags(format.ArchiveFlags(info.Flags)))
	printInfo("  Folders:  %d\n", info.FolderCount)
	printInfo("  Files:    %d\n", info.FileCount)
	if !info.NamesAvailable {
		printInfo("  Names:    not stored (paths shown as hashes)\n")
	}
	printInfo("\nValidation:\n")
	printInfo("  ✓ Header valid\n")
	printInfo("  ✓ Directory sorted and consistent\n")
	return nil
}

func describeFlags(f format.ArchiveFlags) string {
	names := []struct {
		flag format.ArchiveFlags
		name string
	}{
		{format.FlagFolderNames, "folder-names"},
		{format.FlagFileNames, "file-names"},
		{format.FlagCompressed, "compressed"},
		{format.FlagBigEndian, "big-endian"},
		{format.FlagEmbedNames, "embed-names"},
		{format.FlagXMemCodec, "xmem"},
	}
	var set []string
	for _, n := range names {
		if f.Has(n.flag) {
			set = append(set, n.name)
		}
	}
	if len(set) == 0 {
		return ""
	}
	return "(" + strings.Join(set, ", ") + ")"
}
