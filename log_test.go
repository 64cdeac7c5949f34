package lfs

import (
	"bytes"
	"testing"
)

func newTestLog(t *testing.T, g Geometry) (*Device, *Superblock, *InodeMap, *Log) {
	t.Helper()
	path := newTestImage(t, g.TotalBlocks, g.BlockSize)
	dev, err := OpenDevice(path, g.BlockSize)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	t.Cleanup(func() { dev.Close() })

	sb := &Superblock{Magic: Magic, BlockSize: g.BlockSize, TotalBlocks: g.TotalBlocks, InodeMapBlock: g.InodeMapBlock, LogStart: g.LogStart, LogTail: g.LogStart}
	imap := newInodeMap(g)
	return dev, sb, imap, openLog(dev, g, sb, imap)
}

func TestLogAppendReservesSegmentSummary(t *testing.T) {
	g := DefaultGeometry()
	dev, sb, _, lg := newTestLog(t, g)

	data := bytes.Repeat([]byte{0x11}, int(g.BlockSize))
	blk, err := lg.Append(data, 3, 0)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	// First append after mkfs must land right after the reserved summary
	// block at LogStart.
	if blk != g.LogStart+1 {
		t.Fatalf("first append landed at block %d, want %d", blk, g.LogStart+1)
	}
	if sb.LogTail != blk+1 {
		t.Fatalf("LogTail = %d, want %d", sb.LogTail, blk+1)
	}

	// The summary block itself should now describe this append.
	sbuf := make([]byte, g.BlockSize)
	if err := dev.ReadBlock(g.LogStart, sbuf); err != nil {
		t.Fatalf("ReadBlock(summary): %v", err)
	}
	summary := newSegmentSummary(g)
	if err := summary.UnmarshalBinary(sbuf); err != nil {
		t.Fatalf("UnmarshalBinary(summary): %v", err)
	}
	if summary.Entries[1] != (segEntry{InodeNo: 3, BlockIdx: 0}) {
		t.Fatalf("summary entry = %+v, want {3 0}", summary.Entries[1])
	}
}

func TestLogAppendWrongSize(t *testing.T) {
	g := DefaultGeometry()
	_, _, _, lg := newTestLog(t, g)
	if _, err := lg.Append(make([]byte, 10), 1, 0); err == nil {
		t.Fatalf("Append with wrong-size buffer: want error, got nil")
	}
}

func TestLogCheckpointPersists(t *testing.T) {
	g := DefaultGeometry()
	dev, sb, imap, lg := newTestLog(t, g)

	data := bytes.Repeat([]byte{0x22}, int(g.BlockSize))
	if _, err := lg.Append(data, 9, 0); err != nil {
		t.Fatalf("Append: %v", err)
	}
	imap.set(9, sb.LogTail-1)
	if err := lg.Checkpoint(); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}

	buf := make([]byte, g.BlockSize)
	if err := dev.ReadBlock(0, buf); err != nil {
		t.Fatalf("ReadBlock(0): %v", err)
	}
	gotSB := &Superblock{}
	if err := gotSB.UnmarshalBinary(buf); err != nil {
		t.Fatalf("UnmarshalBinary(superblock): %v", err)
	}
	if gotSB.LogTail != sb.LogTail {
		t.Fatalf("checkpointed LogTail = %d, want %d", gotSB.LogTail, sb.LogTail)
	}

	ibuf := make([]byte, g.BlockSize)
	if err := dev.ReadBlock(g.InodeMapBlock, ibuf); err != nil {
		t.Fatalf("ReadBlock(inode map): %v", err)
	}
	gotMap := newInodeMap(g)
	if err := gotMap.UnmarshalBinary(ibuf); err != nil {
		t.Fatalf("UnmarshalBinary(inode map): %v", err)
	}
	if blk, _ := gotMap.Lookup(9); blk != sb.LogTail-1 {
		t.Fatalf("checkpointed inode map entry = %d, want %d", blk, sb.LogTail-1)
	}
}

func TestLogFreeBlocks(t *testing.T) {
	g := DefaultGeometry()
	_, sb, _, lg := newTestLog(t, g)
	want := g.TotalBlocks - sb.LogTail
	if got := lg.FreeBlocks(); got != want {
		t.Fatalf("FreeBlocks() = %d, want %d", got, want)
	}
}
