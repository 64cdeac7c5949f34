package lfs

import "fmt"

// metaBlockIdx marks a log entry that holds an inode record rather than a
// logical file data block.
const metaBlockIdx = ^uint32(0)

// Log is the append-only writer. It owns the tail cursor (via the shared
// Superblock) and maintains the current segment's summary block as data is
// appended. Summaries are provenance only: GC never trusts them for
// liveness (see gc.go), so a torn summary write is never a correctness bug,
// only a loss of debugging information.
type Log struct {
	dev  *Device
	g    Geometry
	sb   *Superblock
	imap *InodeMap

	cur      *SegmentSummary
	curBlock uint32
}

func openLog(dev *Device, g Geometry, sb *Superblock, imap *InodeMap) *Log {
	return &Log{dev: dev, g: g, sb: sb, imap: imap}
}

// reserveIfNeeded ensures l.cur holds the summary for the segment containing
// the current tail, reserving a fresh summary block if the tail has just
// reached one.
func (l *Log) reserveIfNeeded() error {
	tail := l.sb.LogTail
	sblk := l.g.segmentSummaryBlock(tail)
	if l.cur != nil && l.curBlock == sblk {
		return nil
	}
	if tail == sblk {
		if tail >= l.g.TotalBlocks {
			return ErrNoSpace
		}
		l.cur = newSegmentSummary(l.g)
		l.curBlock = sblk
		l.sb.LogTail++
		return l.flushSummary()
	}
	buf := make([]byte, l.g.BlockSize)
	if err := l.dev.ReadBlock(sblk, buf); err != nil {
		return err
	}
	s := newSegmentSummary(l.g)
	if err := s.UnmarshalBinary(buf); err != nil {
		return err
	}
	l.cur = s
	l.curBlock = sblk
	return nil
}

func (l *Log) flushSummary() error {
	data, err := l.cur.MarshalBinary()
	if err != nil {
		return err
	}
	padded := make([]byte, l.g.BlockSize)
	copy(padded, data)
	return l.dev.WriteBlock(l.curBlock, padded)
}

// Append writes buf (exactly one block) to the log tail, tagging the entry
// as belonging to (ownerInode, blockIdx) in the segment summary, and returns
// the block number it was written to. The caller is responsible for
// checking free space against the GC threshold beforehand.
func (l *Log) Append(buf []byte, ownerInode, blockIdx uint32) (uint32, error) {
	if uint32(len(buf)) != l.g.BlockSize {
		return 0, fmt.Errorf("%w: append buffer is %d bytes, want %d", ErrInvalidArgument, len(buf), l.g.BlockSize)
	}
	if err := l.reserveIfNeeded(); err != nil {
		return 0, err
	}
	tail := l.sb.LogTail
	if tail >= l.g.TotalBlocks {
		return 0, ErrNoSpace
	}
	if err := l.dev.WriteBlock(tail, buf); err != nil {
		return 0, err
	}
	l.cur.set(tail-l.curBlock, ownerInode, blockIdx)
	if err := l.flushSummary(); err != nil {
		return 0, err
	}
	l.sb.LogTail++
	return tail, nil
}

// AppendInode packs and appends an inode record, then updates the in-memory
// inode map to point at its new block. The caller must Checkpoint to make
// the map update durable.
func (l *Log) AppendInode(i *Inode) (uint32, error) {
	data, err := i.MarshalBinary()
	if err != nil {
		return 0, err
	}
	padded := make([]byte, l.g.BlockSize)
	copy(padded, data)
	blk, err := l.Append(padded, i.InodeNo, metaBlockIdx)
	if err != nil {
		return 0, err
	}
	l.imap.set(i.InodeNo, blk)
	return blk, nil
}

// FreeBlocks returns the number of blocks between the tail and the end of
// the image, the quantity the GC threshold is measured against.
func (l *Log) FreeBlocks() uint32 {
	if l.sb.LogTail >= l.g.TotalBlocks {
		return 0
	}
	return l.g.TotalBlocks - l.sb.LogTail
}

// Checkpoint durably commits the current inode map and superblock (tail
// cursor). This is the sole commit point: until Checkpoint runs, a crash
// loses every append since the previous checkpoint, but the log region
// itself is left untouched and consistent.
func (l *Log) Checkpoint() error {
	imapData, err := l.imap.MarshalBinary()
	if err != nil {
		return err
	}
	padded := make([]byte, l.g.BlockSize)
	copy(padded, imapData)
	if err := l.dev.WriteBlock(l.sb.InodeMapBlock, padded); err != nil {
		return err
	}
	sbData, err := l.sb.MarshalBinary()
	if err != nil {
		return err
	}
	padded2 := make([]byte, l.g.BlockSize)
	copy(padded2, sbData)
	return l.dev.WriteBlock(0, padded2)
}
