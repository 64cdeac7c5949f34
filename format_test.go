package lfs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestFormatProducesMountableImage(t *testing.T) {
	g := DefaultGeometry()
	path := filepath.Join(t.TempDir(), "fresh.lfs")
	if err := Format(path, g); err != nil {
		t.Fatalf("Format: %v", err)
	}
	fsys, err := Mount(path, g)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer fsys.Unmount()

	ents, err := fsys.Readdir()
	if err != nil {
		t.Fatalf("Readdir: %v", err)
	}
	if len(ents) != 2 {
		t.Fatalf("fresh image has %d entries, want just . and ..", len(ents))
	}
}

func TestMountRejectsGeometryMismatch(t *testing.T) {
	g := DefaultGeometry()
	path := filepath.Join(t.TempDir(), "fresh.lfs")
	if err := Format(path, g); err != nil {
		t.Fatalf("Format: %v", err)
	}

	wrong := g
	wrong.TotalBlocks = g.TotalBlocks + 1
	if _, err := Mount(path, wrong); err == nil {
		t.Fatalf("Mount with mismatched geometry: want error, got nil")
	}
}

func TestFormatWithSeedCopiesFiles(t *testing.T) {
	g := DefaultGeometry()
	seedDir := t.TempDir()
	content := []byte("seeded file contents")
	if err := os.WriteFile(filepath.Join(seedDir, "seed.txt"), content, 0644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	path := filepath.Join(t.TempDir(), "seeded.lfs")
	if err := FormatWithSeed(path, g, seedDir); err != nil {
		t.Fatalf("FormatWithSeed: %v", err)
	}

	fsys, err := Mount(path, g)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	defer fsys.Unmount()

	ino, err := fsys.Lookup("seed.txt")
	if err != nil {
		t.Fatalf("Lookup seed.txt: %v", err)
	}
	got, err := fsys.Read(ino, 0, uint32(len(content)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("seeded content = %q, want %q", got, content)
	}
}
