package lfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// InodeType distinguishes files from directories. There is no symlink or
// hard-link type: see spec Non-goals.
type InodeType uint32

const (
	InodeTypeFile InodeType = 1
	InodeTypeDir  InodeType = 2
)

func (t InodeType) String() string {
	switch t {
	case InodeTypeFile:
		return "file"
	case InodeTypeDir:
		return "directory"
	default:
		return fmt.Sprintf("InodeType(%d)", uint32(t))
	}
}

// Inode is one inode record, stored one per block in the log. Every mutation
// produces a brand-new on-disk copy; the only in-place inode overwrite is
// GC's pointer fixup pass (see gc.go).
type Inode struct {
	InodeNo uint32
	Type    InodeType
	Size    uint32
	NLinks  uint32
	Direct  []uint32 // len == Geometry.MaxDirect
}

func newInode(g Geometry, ino uint32, typ InodeType) *Inode {
	return &Inode{
		InodeNo: ino,
		Type:    typ,
		NLinks:  1,
		Direct:  make([]uint32, g.MaxDirect),
	}
}

// MarshalBinary encodes the inode header plus direct pointer array. The
// caller zero-pads the result to the device block size.
func (i *Inode) MarshalBinary() ([]byte, error) {
	buf := &bytes.Buffer{}
	for _, v := range []uint32{i.InodeNo, uint32(i.Type), i.Size, i.NLinks} {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}
	for _, d := range i.Direct {
		if err := binary.Write(buf, binary.LittleEndian, d); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// decodeInode decodes an inode record sized for geometry g from data.
func decodeInode(g Geometry, data []byte) (*Inode, error) {
	need := 16 + int(g.MaxDirect)*4
	if len(data) < need {
		return nil, fmt.Errorf("%w: inode buffer too short", ErrBadFormat)
	}
	r := bytes.NewReader(data)
	i := &Inode{Direct: make([]uint32, g.MaxDirect)}
	var typ uint32
	if err := binary.Read(r, binary.LittleEndian, &i.InodeNo); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &typ); err != nil {
		return nil, err
	}
	i.Type = InodeType(typ)
	if err := binary.Read(r, binary.LittleEndian, &i.Size); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &i.NLinks); err != nil {
		return nil, err
	}
	for j := range i.Direct {
		if err := binary.Read(r, binary.LittleEndian, &i.Direct[j]); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// clone returns a deep copy so callers can mutate without aliasing cached state.
func (i *Inode) clone() *Inode {
	c := *i
	c.Direct = append([]uint32(nil), i.Direct...)
	return &c
}
