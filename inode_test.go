package lfs

import (
	"reflect"
	"testing"
)

func TestInodeRoundTrip(t *testing.T) {
	g := DefaultGeometry()
	i := newInode(g, 5, InodeTypeFile)
	i.Size = 1234
	i.Direct[0] = 42
	i.Direct[3] = 99

	data, err := i.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	padded := make([]byte, g.BlockSize)
	copy(padded, data)

	got, err := decodeInode(g, padded)
	if err != nil {
		t.Fatalf("decodeInode: %v", err)
	}
	if !reflect.DeepEqual(got, i) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, i)
	}
}

func TestInodeTypeString(t *testing.T) {
	if InodeTypeFile.String() != "file" {
		t.Errorf("InodeTypeFile.String() = %q, want file", InodeTypeFile.String())
	}
	if InodeTypeDir.String() != "directory" {
		t.Errorf("InodeTypeDir.String() = %q, want directory", InodeTypeDir.String())
	}
}

func TestInodeClone(t *testing.T) {
	g := DefaultGeometry()
	i := newInode(g, 1, InodeTypeFile)
	i.Direct[0] = 10

	c := i.clone()
	c.Direct[0] = 20

	if i.Direct[0] != 10 {
		t.Fatalf("clone aliased the direct array: original mutated to %d", i.Direct[0])
	}
}

func TestDecodeInodeShortBuffer(t *testing.T) {
	g := DefaultGeometry()
	if _, err := decodeInode(g, make([]byte, 4)); err == nil {
		t.Fatalf("decodeInode with short buffer: want error, got nil")
	}
}
