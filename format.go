package lfs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Format creates a new, empty image at path: a zeroed file sized for g,
// with a superblock, an empty inode map, and a seeded root directory
// inode (inode 0, no entries). It is the Go equivalent of the reference
// implementation's formatter.
func Format(path string, g Geometry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("lfs: create image: %w", err)
	}
	if err := f.Truncate(int64(g.TotalBlocks) * int64(g.BlockSize)); err != nil {
		f.Close()
		return fmt.Errorf("lfs: size image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("lfs: size image: %w", err)
	}

	dev, err := OpenDevice(path, g.BlockSize)
	if err != nil {
		return err
	}
	defer dev.Close()

	sb := &Superblock{
		Magic:         Magic,
		BlockSize:     g.BlockSize,
		TotalBlocks:   g.TotalBlocks,
		InodeMapBlock: g.InodeMapBlock,
		LogStart:      g.LogStart,
		LogTail:       g.LogStart,
	}
	imap := newInodeMap(g)
	lg := openLog(dev, g, sb, imap)

	root := newInode(g, rootIno, InodeTypeDir)
	if _, err := lg.AppendInode(root); err != nil {
		return err
	}
	return lg.Checkpoint()
}

// FormatWithSeed formats a new image at path, then copies every regular
// file found directly within seedDir (non-recursively: this filesystem
// has no subdirectories) into the new root directory.
func FormatWithSeed(path string, g Geometry, seedDir string) error {
	if err := Format(path, g); err != nil {
		return err
	}
	if seedDir == "" {
		return nil
	}

	entries, err := os.ReadDir(seedDir)
	if err != nil {
		return fmt.Errorf("lfs: read seed dir: %w", err)
	}

	fsys, err := Mount(path, g)
	if err != nil {
		return err
	}
	defer fsys.Unmount()

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := seedFile(fsys, seedDir, e.Name()); err != nil {
			return err
		}
	}
	return nil
}

func seedFile(fsys *Filesystem, seedDir, name string) error {
	data, err := os.ReadFile(filepath.Join(seedDir, name))
	if err != nil {
		return fmt.Errorf("lfs: read seed file %q: %w", name, err)
	}
	if uint64(len(data)) > fsys.g.maxFileSize() {
		return fmt.Errorf("%w: seed file %q", ErrTooLarge, name)
	}
	ino, err := fsys.Create(name)
	if err != nil {
		return fmt.Errorf("lfs: seed create %q: %w", name, err)
	}
	if len(data) == 0 {
		return nil
	}
	if _, err := fsys.Write(ino, 0, data); err != nil {
		return fmt.Errorf("lfs: seed write %q: %w", name, err)
	}
	return nil
}
