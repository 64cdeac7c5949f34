package lfs

// GCStats summarizes one garbage collection pass, returned by runGC for the
// diagnostic log line written after each pass.
type GCStats struct {
	OldTail         uint32
	NewTail         uint32
	BlocksScanned   uint32
	BlocksRelocated uint32
}

// ownerRef identifies what a live block holds: either an inode record
// itself (Slot < 0) or the data block at inode.Direct[Slot].
type ownerRef struct {
	ino  uint32
	slot int32
}

// shouldRunGC reports whether free space has dropped below the configured
// threshold and a GC pass should run before the next allocation.
func (fs *Filesystem) shouldRunGC() bool {
	return fs.log.FreeBlocks() < fs.g.GCThreshold
}

// runGC performs a full relocating compaction of the log region. Liveness
// is always computed by scanning the inode map and every allocated inode's
// direct pointers; segment summaries are never consulted, since they
// record provenance, not liveness.
//
// Compaction copies every live block forward into a fresh log starting at
// LogStart, in ascending source-block order, using the same segment/summary
// reservation discipline as ordinary appends, so segment boundaries in the
// compacted log line up exactly as they would for a log written from
// scratch. Pointers are then patched in place: inode map entries first,
// then each affected inode's direct array, using a direct block write
// rather than a further log append, so compaction never needs more space
// than the log already occupied.
func (fs *Filesystem) runGC() (GCStats, error) {
	g := fs.g
	dev := fs.dev
	imap := fs.imap
	oldTail := fs.sb.LogTail

	owner := make(map[uint32]ownerRef)
	inodes := make(map[uint32]*Inode)

	for ino := uint32(0); ino < g.InodeMapSize; ino++ {
		blk, err := imap.Lookup(ino)
		if err != nil {
			continue
		}
		owner[blk] = ownerRef{ino: ino, slot: -1}
		buf := make([]byte, g.BlockSize)
		if err := dev.ReadBlock(blk, buf); err != nil {
			return GCStats{}, err
		}
		inode, err := decodeInode(g, buf)
		if err != nil {
			return GCStats{}, err
		}
		inodes[ino] = inode
		for j, d := range inode.Direct {
			if d != 0 {
				owner[d] = ownerRef{ino: ino, slot: int32(j)}
			}
		}
	}

	newSB := &Superblock{
		Magic:         fs.sb.Magic,
		BlockSize:     g.BlockSize,
		TotalBlocks:   g.TotalBlocks,
		InodeMapBlock: g.InodeMapBlock,
		LogStart:      g.LogStart,
		LogTail:       g.LogStart,
	}
	cLog := openLog(dev, g, newSB, imap)

	relocated := make(map[uint32]uint32)
	var scanned, moved uint32

	for src := g.LogStart; src < oldTail; src++ {
		if g.isSegmentSummaryBlock(src) {
			continue
		}
		ref, live := owner[src]
		scanned++
		if !live {
			continue
		}
		buf := make([]byte, g.BlockSize)
		if err := dev.ReadBlock(src, buf); err != nil {
			return GCStats{}, err
		}
		tag := uint32(ref.slot)
		if ref.slot < 0 {
			tag = metaBlockIdx
		}
		dst, err := cLog.Append(buf, ref.ino, tag)
		if err != nil {
			return GCStats{}, err
		}
		relocated[src] = dst
		moved++
		if ref.slot < 0 {
			imap.set(ref.ino, dst)
		}
	}

	for ino, inode := range inodes {
		changed := false
		for j, d := range inode.Direct {
			if d == 0 {
				continue
			}
			if nd, ok := relocated[d]; ok && nd != d {
				inode.Direct[j] = nd
				changed = true
			}
		}
		if !changed {
			continue
		}
		blk, err := imap.Lookup(ino)
		if err != nil {
			return GCStats{}, err
		}
		data, err := inode.MarshalBinary()
		if err != nil {
			return GCStats{}, err
		}
		padded := make([]byte, g.BlockSize)
		copy(padded, data)
		if err := dev.WriteBlock(blk, padded); err != nil {
			return GCStats{}, err
		}
	}

	fs.sb.LogTail = newSB.LogTail
	fs.log = &Log{dev: dev, g: g, sb: fs.sb, imap: imap, cur: cLog.cur, curBlock: cLog.curBlock}

	if err := fs.log.Checkpoint(); err != nil {
		return GCStats{}, err
	}

	return GCStats{
		OldTail:         oldTail,
		NewTail:         newSB.LogTail,
		BlocksScanned:   scanned,
		BlocksRelocated: moved,
	}, nil
}
