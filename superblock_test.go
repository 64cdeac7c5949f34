package lfs

import "testing"

func TestSuperblockRoundTrip(t *testing.T) {
	sb := &Superblock{
		Magic:         Magic,
		BlockSize:     4096,
		TotalBlocks:   1024,
		InodeMapBlock: 1,
		LogStart:      10,
		LogTail:       37,
	}
	data, err := sb.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	got := &Superblock{}
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if *got != *sb {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, sb)
	}
}

func TestSuperblockBadMagic(t *testing.T) {
	sb := &Superblock{Magic: 0xdeadbeef, BlockSize: 4096, TotalBlocks: 1024, InodeMapBlock: 1, LogStart: 10, LogTail: 10}
	data, err := sb.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	got := &Superblock{}
	if err := got.UnmarshalBinary(data); err == nil {
		t.Fatalf("UnmarshalBinary with bad magic: want error, got nil")
	}
}

func TestSuperblockShortBuffer(t *testing.T) {
	sb := &Superblock{}
	if err := sb.UnmarshalBinary(make([]byte, 2)); err == nil {
		t.Fatalf("UnmarshalBinary with short buffer: want error, got nil")
	}
}
