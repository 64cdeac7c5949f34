// Command mkfslfs creates a new, empty log-structured filesystem image.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/blocklayer/lfs"
)

func main() {
	var (
		blocks  = flag.Uint("blocks", uint(lfs.DefaultGeometry().TotalBlocks), "total blocks in the image")
		inodes  = flag.Uint("inodes", uint(lfs.DefaultGeometry().InodeMapSize), "maximum number of inodes")
		seedDir = flag.String("seed", "", "directory of files to copy into the new image's root")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: mkfslfs [flags] <image path>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	g, err := lfs.NewGeometry(
		lfs.WithTotalBlocks(uint32(*blocks)),
		lfs.WithInodeMapSize(uint32(*inodes)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mkfslfs: %v\n", err)
		os.Exit(1)
	}

	if err := lfs.FormatWithSeed(path, g, *seedDir); err != nil {
		fmt.Fprintf(os.Stderr, "mkfslfs: %v\n", err)
		os.Exit(1)
	}
}
