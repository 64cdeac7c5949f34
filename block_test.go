package lfs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func newTestImage(t *testing.T, blocks, blockSize uint32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.lfs")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	if err := f.Truncate(int64(blocks) * int64(blockSize)); err != nil {
		t.Fatalf("truncate image: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close image: %v", err)
	}
	return path
}

func TestDeviceReadWriteBlock(t *testing.T) {
	path := newTestImage(t, 8, 512)
	dev, err := OpenDevice(path, 512)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	defer dev.Close()

	want := bytes.Repeat([]byte{0xAB}, 512)
	if err := dev.WriteBlock(3, want); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}

	got := make([]byte, 512)
	if err := dev.ReadBlock(3, got); err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("ReadBlock returned %x, want %x", got[:4], want[:4])
	}

	// Neighboring blocks remain untouched.
	zero := make([]byte, 512)
	other := make([]byte, 512)
	if err := dev.ReadBlock(2, other); err != nil {
		t.Fatalf("ReadBlock(2): %v", err)
	}
	if !bytes.Equal(other, zero) {
		t.Fatalf("block 2 was modified by a write to block 3")
	}
}

func TestDeviceWrongSizeBuffer(t *testing.T) {
	path := newTestImage(t, 4, 512)
	dev, err := OpenDevice(path, 512)
	if err != nil {
		t.Fatalf("OpenDevice: %v", err)
	}
	defer dev.Close()

	if err := dev.WriteBlock(0, make([]byte, 100)); err == nil {
		t.Fatalf("WriteBlock with wrong-size buffer: want error, got nil")
	}
	if err := dev.ReadBlock(0, make([]byte, 100)); err == nil {
		t.Fatalf("ReadBlock with wrong-size buffer: want error, got nil")
	}
}

func TestDeviceNotOpen(t *testing.T) {
	var dev *Device
	if err := dev.ReadBlock(0, make([]byte, 0)); err != ErrNotOpen {
		t.Fatalf("ReadBlock on nil device: got %v, want ErrNotOpen", err)
	}
}
