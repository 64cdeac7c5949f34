package lfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// InodeMap is the in-memory mirror of the block-1 indirection table: slot i
// holds the log block currently holding inode i's most recent record, or 0
// if inode i is unallocated. It is the single layer of indirection that lets
// every other mutation be append-only.
type InodeMap struct {
	g       Geometry
	entries []uint32 // len == g.InodeMapSize
}

func newInodeMap(g Geometry) *InodeMap {
	return &InodeMap{g: g, entries: make([]uint32, g.InodeMapSize)}
}

// Lookup returns the log block holding inode ino, ErrNotFound if ino is
// unallocated, or ErrInvalidArgument if ino is out of range. Inode 0 is the root directory: always a
// valid lookup target, just never a candidate for allocate.
func (m *InodeMap) Lookup(ino uint32) (uint32, error) {
	if ino >= uint32(len(m.entries)) {
		return 0, fmt.Errorf("%w: inode %d", ErrInvalidArgument, ino)
	}
	blk := m.entries[ino]
	if blk == 0 {
		return 0, fmt.Errorf("%w: inode %d", ErrNotFound, ino)
	}
	return blk, nil
}

// set records that inode ino's current record lives at block blk. Called
// after every inode write, and patched in place by GC's relocation pass.
func (m *InodeMap) set(ino, blk uint32) {
	m.entries[ino] = blk
}

// allocate scans slots [1, InodeMapSize) for the first unused inode number.
// Inode 0 is reserved and never allocated.
func (m *InodeMap) allocate() (uint32, error) {
	for i := uint32(1); i < uint32(len(m.entries)); i++ {
		if m.entries[i] == 0 {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: inode map exhausted", ErrNoSpace)
}

// MarshalBinary packs the map as InodeMapSize consecutive uint32 block
// pointers. The caller zero-pads the result to the device block size.
func (m *InodeMap) MarshalBinary() ([]byte, error) {
	buf := &bytes.Buffer{}
	for _, e := range m.entries {
		if err := binary.Write(buf, binary.LittleEndian, e); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes InodeMapSize entries from data.
func (m *InodeMap) UnmarshalBinary(data []byte) error {
	need := len(m.entries) * 4
	if len(data) < need {
		return fmt.Errorf("%w: inode map buffer too short", ErrBadFormat)
	}
	r := bytes.NewReader(data)
	for i := range m.entries {
		if err := binary.Read(r, binary.LittleEndian, &m.entries[i]); err != nil {
			return err
		}
	}
	return nil
}
