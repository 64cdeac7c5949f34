package lfs

import (
	"fmt"
	"log"
)

// rootIno is the inode number of the filesystem's single directory. It is
// seeded at format time and is never returned by InodeMap.allocate.
const rootIno uint32 = 0

// Filesystem is a mounted image. It owns the block device, the in-memory
// inode map, and the log writer. A Filesystem is not safe for concurrent
// use: callers needing concurrent access must serialize their own calls.
type Filesystem struct {
	dev    *Device
	g      Geometry
	sb     *Superblock
	imap   *InodeMap
	log    *Log
	logger *log.Logger
}

// SetLogger replaces the diagnostic logger, which defaults to log.Default().
// Passing nil silences diagnostic output entirely.
func (fs *Filesystem) SetLogger(l *log.Logger) {
	fs.logger = l
}

func (fs *Filesystem) logf(format string, args ...any) {
	if fs.logger != nil {
		fs.logger.Printf(format, args...)
	}
}

// Mount opens the image at path, validates its superblock against g, and
// restores the in-memory inode map and log tail cursor.
func Mount(path string, g Geometry) (*Filesystem, error) {
	dev, err := OpenDevice(path, g.BlockSize)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, g.BlockSize)
	if err := dev.ReadBlock(0, buf); err != nil {
		dev.Close()
		return nil, err
	}
	sb := &Superblock{}
	if err := sb.UnmarshalBinary(buf); err != nil {
		dev.Close()
		return nil, err
	}
	if sb.BlockSize != g.BlockSize || sb.TotalBlocks != g.TotalBlocks ||
		sb.InodeMapBlock != g.InodeMapBlock || sb.LogStart != g.LogStart {
		dev.Close()
		return nil, fmt.Errorf("%w: image geometry does not match requested geometry", ErrBadFormat)
	}

	imap := newInodeMap(g)
	ibuf := make([]byte, g.BlockSize)
	if err := dev.ReadBlock(sb.InodeMapBlock, ibuf); err != nil {
		dev.Close()
		return nil, err
	}
	if err := imap.UnmarshalBinary(ibuf); err != nil {
		dev.Close()
		return nil, err
	}

	fsys := &Filesystem{dev: dev, g: g, sb: sb, imap: imap, log: openLog(dev, g, sb, imap), logger: log.Default()}
	fsys.logf("lfs: mounted %s, tail=%d, free=%d", path, sb.LogTail, fsys.log.FreeBlocks())
	return fsys, nil
}

// Unmount checkpoints the filesystem and closes the underlying device.
func (fs *Filesystem) Unmount() error {
	if err := fs.log.Checkpoint(); err != nil {
		return err
	}
	fs.logf("lfs: unmounting, tail=%d", fs.sb.LogTail)
	return fs.dev.Close()
}

func (fs *Filesystem) readInode(ino uint32) (*Inode, error) {
	blk, err := fs.imap.Lookup(ino)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, fs.g.BlockSize)
	if err := fs.dev.ReadBlock(blk, buf); err != nil {
		return nil, err
	}
	return decodeInode(fs.g, buf)
}

// writeInode appends a new on-disk copy of i and checkpoints, making both
// the new record and the updated inode map entry durable.
func (fs *Filesystem) writeInode(i *Inode) error {
	if _, err := fs.log.AppendInode(i); err != nil {
		return err
	}
	return fs.log.Checkpoint()
}

func (fs *Filesystem) maybeRunGC() error {
	if !fs.shouldRunGC() {
		return nil
	}
	fs.logf("lfs: gc: starting, free=%d threshold=%d", fs.log.FreeBlocks(), fs.g.GCThreshold)
	stats, err := fs.runGC()
	if err != nil {
		return err
	}
	fs.logf("lfs: gc: done, scanned=%d relocated=%d tail %d->%d", stats.BlocksScanned, stats.BlocksRelocated, stats.OldTail, stats.NewTail)
	return nil
}

// rootDirents collects every directory entry across the root's allocated
// data blocks, in on-disk order.
func (fs *Filesystem) rootDirents(root *Inode) ([]Dirent, error) {
	var all []Dirent
	for _, blk := range root.Direct {
		if blk == 0 {
			continue
		}
		buf := make([]byte, fs.g.BlockSize)
		if err := fs.dev.ReadBlock(blk, buf); err != nil {
			return nil, err
		}
		ents, err := decodeDirBlock(fs.g, buf)
		if err != nil {
			return nil, err
		}
		all = append(all, ents...)
	}
	return all, nil
}

// Lookup resolves name within the root directory. Only single-level paths
// are supported: see Non-goals.
func (fs *Filesystem) Lookup(name string) (uint32, error) {
	root, err := fs.readInode(rootIno)
	if err != nil {
		return 0, err
	}
	ents, err := fs.rootDirents(root)
	if err != nil {
		return 0, err
	}
	for _, e := range ents {
		if !e.free() && e.Name == name {
			return e.InodeNo, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Getattr returns the inode record for ino.
func (fs *Filesystem) Getattr(ino uint32) (*Inode, error) {
	return fs.readInode(ino)
}

// DirEntry is one entry returned by Readdir, including the synthetic "."
// and ".." entries every directory listing carries.
type DirEntry struct {
	Name    string
	InodeNo uint32
}

// Readdir lists the root directory: "." and ".." followed by every
// allocated, non-free entry.
func (fs *Filesystem) Readdir() ([]DirEntry, error) {
	root, err := fs.readInode(rootIno)
	if err != nil {
		return nil, err
	}
	out := []DirEntry{
		{Name: ".", InodeNo: rootIno},
		{Name: "..", InodeNo: rootIno},
	}
	ents, err := fs.rootDirents(root)
	if err != nil {
		return nil, err
	}
	for _, e := range ents {
		if e.free() {
			continue
		}
		out = append(out, DirEntry{Name: e.Name, InodeNo: e.InodeNo})
	}
	return out, nil
}

// Read returns up to length bytes starting at offset. Logical blocks never
// written (a direct pointer of 0 within the inode's current size) read back
// as zeroes, matching a sparse file.
func (fs *Filesystem) Read(ino uint32, offset, length uint32) ([]byte, error) {
	i, err := fs.readInode(ino)
	if err != nil {
		return nil, err
	}
	if i.Type == InodeTypeDir {
		return nil, ErrIsDirectory
	}
	if offset >= i.Size {
		return nil, nil
	}
	if offset+length > i.Size {
		length = i.Size - offset
	}
	out := make([]byte, length)
	b := fs.g.BlockSize
	for n := uint32(0); n < length; {
		blockIdx := (offset + n) / b
		inBlock := (offset + n) % b
		chunk := b - inBlock
		if chunk > length-n {
			chunk = length - n
		}
		if int(blockIdx) < len(i.Direct) && i.Direct[blockIdx] != 0 {
			buf := make([]byte, b)
			if err := fs.dev.ReadBlock(i.Direct[blockIdx], buf); err != nil {
				return nil, err
			}
			copy(out[n:n+chunk], buf[inBlock:inBlock+chunk])
		}
		n += chunk
	}
	return out, nil
}

// Create adds a new, empty regular file named name to the root directory.
func (fs *Filesystem) Create(name string) (uint32, error) {
	if len(name) == 0 || containsSlash(name) {
		return 0, ErrPermissionDenied
	}
	if uint32(len(name)) >= fs.g.MaxNameLen {
		return 0, ErrNameTooLong
	}
	if _, err := fs.Lookup(name); err == nil {
		return 0, ErrExists
	}

	if err := fs.maybeRunGC(); err != nil {
		return 0, err
	}

	ino, err := fs.imap.allocate()
	if err != nil {
		return 0, err
	}
	inode := newInode(fs.g, ino, InodeTypeFile)
	if _, err := fs.log.AppendInode(inode); err != nil {
		return 0, err
	}

	if err := fs.addDirent(Dirent{InodeNo: ino, Name: name}); err != nil {
		return 0, err
	}
	return ino, nil
}

// addDirent inserts entry into the root directory, allocating a new
// directory data block if every existing block is full, then checkpoints.
func (fs *Filesystem) addDirent(entry Dirent) error {
	root, err := fs.readInode(rootIno)
	if err != nil {
		return err
	}
	perBlock := fs.g.direntsPerBlock()

	for slot, blk := range root.Direct {
		if blk == 0 {
			continue
		}
		buf := make([]byte, fs.g.BlockSize)
		if err := fs.dev.ReadBlock(blk, buf); err != nil {
			return err
		}
		ents, err := decodeDirBlock(fs.g, buf)
		if err != nil {
			return err
		}
		for i, e := range ents {
			if e.free() {
				ents[i] = entry
				newBuf, err := encodeDirBlock(fs.g, ents)
				if err != nil {
					return err
				}
				newBlk, err := fs.log.Append(newBuf, rootIno, uint32(slot))
				if err != nil {
					return err
				}
				root.Direct[slot] = newBlk
				return fs.writeInode(root)
			}
		}
	}

	for slot, blk := range root.Direct {
		if blk != 0 {
			continue
		}
		ents := make([]Dirent, perBlock)
		ents[0] = entry
		newBuf, err := encodeDirBlock(fs.g, ents)
		if err != nil {
			return err
		}
		newBlk, err := fs.log.Append(newBuf, rootIno, uint32(slot))
		if err != nil {
			return err
		}
		root.Direct[slot] = newBlk
		root.Size += fs.g.BlockSize
		return fs.writeInode(root)
	}
	return ErrNoSpace
}

// Write stores data at offset within ino's file, extending its size as
// needed. A write starting past the last addressable byte (offset >=
// MaxDirect*BlockSize) fails with ErrTooLarge; one that starts in bounds but would extend past it is
// clamped to the blocks that fit, and the clamped length is returned.
func (fs *Filesystem) Write(ino uint32, offset uint32, data []byte) (int, error) {
	i, err := fs.readInode(ino)
	if err != nil {
		return 0, err
	}
	if i.Type == InodeTypeDir {
		return 0, ErrIsDirectory
	}
	max := fs.g.maxFileSize()
	if uint64(offset) >= max {
		return 0, ErrTooLarge
	}
	end := uint64(offset) + uint64(len(data))
	if end > max {
		data = data[:max-uint64(offset)]
		end = max
	}

	b := fs.g.BlockSize
	for n := uint32(0); n < uint32(len(data)); {
		if fs.shouldRunGC() {
			// Record the blocks this call has already appended, so GC
			// counts them as live.
			if n > 0 {
				if _, err := fs.log.AppendInode(i); err != nil {
					return 0, err
				}
			}
			if err := fs.maybeRunGC(); err != nil {
				return 0, err
			}
			// GC may have relocated this inode's own record and direct
			// pointers: continue from a fresh read.
			i, err = fs.readInode(ino)
			if err != nil {
				return 0, err
			}
		}

		blockIdx := (offset + n) / b
		inBlock := (offset + n) % b
		chunk := b - inBlock
		if chunk > uint32(len(data))-n {
			chunk = uint32(len(data)) - n
		}

		buf := make([]byte, b)
		if i.Direct[blockIdx] != 0 {
			if err := fs.dev.ReadBlock(i.Direct[blockIdx], buf); err != nil {
				return 0, err
			}
		}
		copy(buf[inBlock:inBlock+chunk], data[n:n+chunk])

		newBlk, err := fs.log.Append(buf, ino, blockIdx)
		if err != nil {
			return 0, err
		}
		i.Direct[blockIdx] = newBlk
		n += chunk
	}

	if uint32(end) > i.Size {
		i.Size = uint32(end)
	}
	if err := fs.writeInode(i); err != nil {
		return 0, err
	}
	return len(data), nil
}

// Truncate supports only truncation to zero: any other target size fails
// with ErrPermissionDenied, matching the reference implementation.
func (fs *Filesystem) Truncate(ino uint32, size uint32) error {
	if size != 0 {
		return ErrPermissionDenied
	}
	i, err := fs.readInode(ino)
	if err != nil {
		return err
	}
	if i.Type == InodeTypeDir {
		return ErrIsDirectory
	}
	for j := range i.Direct {
		i.Direct[j] = 0
	}
	i.Size = 0
	return fs.writeInode(i)
}

// FSStats is the occupancy report returned by Stat, used for diagnostics
// and cmd/lfsutil.
type FSStats struct {
	TotalBlocks     uint32
	FreeBlocks      uint32
	LogTail         uint32
	InodesAllocated uint32
}

func (fs *Filesystem) Stat() FSStats {
	var used uint32
	for ino := uint32(0); ino < fs.g.InodeMapSize; ino++ {
		if _, err := fs.imap.Lookup(ino); err == nil {
			used++
		}
	}
	return FSStats{
		TotalBlocks:     fs.g.TotalBlocks,
		FreeBlocks:      fs.log.FreeBlocks(),
		LogTail:         fs.sb.LogTail,
		InodesAllocated: used,
	}
}

func containsSlash(name string) bool {
	for _, r := range name {
		if r == '/' {
			return true
		}
	}
	return false
}
