// Command lfsutil inspects a log-structured filesystem image without
// mounting it through FUSE.
package main

import (
	"fmt"
	"os"

	"github.com/blocklayer/lfs"
)

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	path := os.Args[2]

	g := lfs.DefaultGeometry()
	fsys, err := lfs.Mount(path, g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lfsutil: %v\n", err)
		os.Exit(1)
	}
	defer fsys.Unmount()

	switch cmd {
	case "ls":
		err = listFiles(fsys)
	case "cat":
		if len(os.Args) < 4 {
			usage()
			os.Exit(2)
		}
		err = catFile(fsys, os.Args[3])
	case "info":
		err = showInfo(fsys)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "lfsutil: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: lfsutil <ls|cat|info> <image path> [name]\n")
}

func listFiles(fsys *lfs.Filesystem) error {
	ents, err := fsys.Readdir()
	if err != nil {
		return err
	}
	for _, e := range ents {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		i, err := fsys.Getattr(e.InodeNo)
		if err != nil {
			return err
		}
		fmt.Printf("%-28s %8d  inode %d\n", e.Name, i.Size, e.InodeNo)
	}
	return nil
}

func catFile(fsys *lfs.Filesystem, name string) error {
	ino, err := fsys.Lookup(name)
	if err != nil {
		return err
	}
	i, err := fsys.Getattr(ino)
	if err != nil {
		return err
	}
	data, err := fsys.Read(ino, 0, i.Size)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func showInfo(fsys *lfs.Filesystem) error {
	s := fsys.Stat()
	fmt.Printf("total blocks:     %d\n", s.TotalBlocks)
	fmt.Printf("free blocks:      %d\n", s.FreeBlocks)
	fmt.Printf("log tail:         %d\n", s.LogTail)
	fmt.Printf("inodes allocated: %d\n", s.InodesAllocated)
	return nil
}
