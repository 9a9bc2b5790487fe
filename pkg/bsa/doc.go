/*
Package bsa provides a high-level, path-based API for reading Bethesda
archives (Morrowind through Skyrim Special Edition).

# Quick Start

List the textures in an archive:

	assets, err := bsa.ListAssets("Skyrim - Textures.bsa", `\.dds$`, nil)

# Features

  - One-call helpers that open, query and close an archive
  - Case-insensitive regular expression filters over virtual paths
  - Morrowind's flat layout and the TES4 family (revisions 103 to 105)
  - zlib (revisions 103/104) and LZ4 (revision 105) decompression
  - Parallel extraction with progress callbacks
  - Structural and hash diagnostics

# Basic Usage

Read a single asset:

	data, err := bsa.ReadAsset("Oblivion - Meshes.bsa", `meshes\armor\iron\cuirass.nif`, &bsa.Options{
	    OpenOptions: bsa.OpenOptions{LegacyRevisions: true},
	})

Extract every sound to a directory:

	res, err := bsa.ExtractAssets(ctx, "Fallout - Sound.bsa", `^sound\\`, "out", &bsa.Options{
	    Extract: bsa.ExtractOptions{Workers: 8},
	})

For many calls against the same archive, open it once:

	r, err := bsa.Open("Skyrim - Misc.bsa", nil)
	if err != nil {
	    log.Fatal(err)
	}
	defer r.Close()

# Virtual Paths

Paths are lower-case and use backslashes ("textures\a.dds"). Input paths are
normalized, so "Textures/A.DDS" finds the same asset. Archives that store no
names render paths from their hashes: "#<folder hash>\#<file hash>".

# Error Handling

Errors carry a types.ErrKind; use types.KindOf(err) or errors.Is against the
sentinels re-exported here (ErrNotBSA, ErrNotFound, ...).
*/
package bsa
