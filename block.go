package lfs

import (
	"fmt"
	"os"
)

// Device is a positional block-addressed read/write primitive over a fixed
// size image file. It has no knowledge of log semantics; it is the leaf
// abstraction everything else builds on.
//
// Reads and writes use ReadAt/WriteAt (pread/pwrite under the hood) rather
// than Seek+Read/Write, so callers cannot race each other through a shared
// file cursor.
type Device struct {
	f         *os.File
	blockSize uint32
}

// OpenDevice opens the image file at path for positional block I/O.
func OpenDevice(path string, blockSize uint32) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("lfs: open device: %w", err)
	}
	return &Device{f: f, blockSize: blockSize}, nil
}

// ReadBlock reads exactly blockSize bytes from block b into out.
// len(out) must equal the device's block size.
func (d *Device) ReadBlock(b uint32, out []byte) error {
	if d == nil || d.f == nil {
		return ErrNotOpen
	}
	if uint32(len(out)) != d.blockSize {
		return fmt.Errorf("%w: read buffer is %d bytes, want %d", ErrInvalidArgument, len(out), d.blockSize)
	}
	n, err := d.f.ReadAt(out, int64(b)*int64(d.blockSize))
	if err != nil {
		return fmt.Errorf("%w: read block %d: %v", ErrIO, b, err)
	}
	if uint32(n) != d.blockSize {
		return fmt.Errorf("%w: short read on block %d (got %d bytes)", ErrIO, b, n)
	}
	return nil
}

// WriteBlock writes exactly blockSize bytes from in to block b.
// len(in) must equal the device's block size.
func (d *Device) WriteBlock(b uint32, in []byte) error {
	if d == nil || d.f == nil {
		return ErrNotOpen
	}
	if uint32(len(in)) != d.blockSize {
		return fmt.Errorf("%w: write buffer is %d bytes, want %d", ErrInvalidArgument, len(in), d.blockSize)
	}
	n, err := d.f.WriteAt(in, int64(b)*int64(d.blockSize))
	if err != nil {
		return fmt.Errorf("%w: write block %d: %v", ErrIO, b, err)
	}
	if uint32(n) != d.blockSize {
		return fmt.Errorf("%w: short write on block %d (wrote %d bytes)", ErrIO, b, n)
	}
	return nil
}

// Close closes the underlying file. Close on an unopened or already-closed
// Device is a no-op.
func (d *Device) Close() error {
	if d == nil || d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}
