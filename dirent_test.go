package lfs

import (
	"strings"
	"testing"
)

func TestDirentRoundTrip(t *testing.T) {
	d := Dirent{InodeNo: 7, Name: "hello.txt"}
	enc, err := encodeDirent(d)
	if err != nil {
		t.Fatalf("encodeDirent: %v", err)
	}
	got, err := decodeDirent(enc)
	if err != nil {
		t.Fatalf("decodeDirent: %v", err)
	}
	if got != d {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, d)
	}
}

func TestEncodeDirentNameTooLong(t *testing.T) {
	d := Dirent{InodeNo: 1, Name: strings.Repeat("x", direntNameLen)}
	if _, err := encodeDirent(d); err == nil {
		t.Fatalf("encodeDirent with over-length name: want error, got nil")
	}
}

func TestDirBlockRoundTrip(t *testing.T) {
	g := DefaultGeometry()
	ents := make([]Dirent, g.direntsPerBlock())
	ents[0] = Dirent{InodeNo: 1, Name: "a"}
	ents[2] = Dirent{InodeNo: 3, Name: "bee"}

	buf, err := encodeDirBlock(g, ents)
	if err != nil {
		t.Fatalf("encodeDirBlock: %v", err)
	}
	if uint32(len(buf)) != g.BlockSize {
		t.Fatalf("encodeDirBlock returned %d bytes, want %d", len(buf), g.BlockSize)
	}

	got, err := decodeDirBlock(g, buf)
	if err != nil {
		t.Fatalf("decodeDirBlock: %v", err)
	}
	if len(got) != len(ents) {
		t.Fatalf("decodeDirBlock returned %d entries, want %d", len(got), len(ents))
	}
	if got[0] != ents[0] || got[2] != ents[2] {
		t.Fatalf("decodeDirBlock mismatch: got %+v", got)
	}
	if !got[1].free() {
		t.Fatalf("slot 1 should decode as free, got %+v", got[1])
	}
}
