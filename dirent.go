package lfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// direntSize is the packed size of one Dirent: a 4-byte inode number
// followed by a fixed-width, NUL-padded name.
const direntNameLen = 28
const direntSize = 4 + direntNameLen

// Dirent is one directory entry. InodeNo == 0 marks a free slot; inode 0
// is the root directory itself, which never appears as an entry and is
// never handed out by allocate (see inodemap.go).
type Dirent struct {
	InodeNo uint32
	Name    string
}

func (d Dirent) free() bool { return d.InodeNo == 0 }

func encodeDirent(d Dirent) ([]byte, error) {
	if len(d.Name) >= direntNameLen {
		return nil, fmt.Errorf("%w: dirent name %q", ErrNameTooLong, d.Name)
	}
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, d.InodeNo); err != nil {
		return nil, err
	}
	var name [direntNameLen]byte
	copy(name[:], d.Name)
	buf.Write(name[:])
	return buf.Bytes(), nil
}

func decodeDirent(data []byte) (Dirent, error) {
	if len(data) < direntSize {
		return Dirent{}, fmt.Errorf("%w: dirent buffer too short", ErrBadFormat)
	}
	var d Dirent
	d.InodeNo = binary.LittleEndian.Uint32(data[0:4])
	name := data[4:direntSize]
	end := bytes.IndexByte(name, 0)
	if end < 0 {
		end = len(name)
	}
	d.Name = string(name[:end])
	return d, nil
}

// decodeDirBlock unpacks every dirent slot in a directory data block,
// including free slots, in on-disk order.
func decodeDirBlock(g Geometry, data []byte) ([]Dirent, error) {
	n := g.direntsPerBlock()
	ents := make([]Dirent, 0, n)
	for i := uint32(0); i < n; i++ {
		off := i * direntSize
		d, err := decodeDirent(data[off : off+direntSize])
		if err != nil {
			return nil, err
		}
		ents = append(ents, d)
	}
	return ents, nil
}

// encodeDirBlock packs ents into a block-sized buffer, zero-padding any
// remainder as free slots.
func encodeDirBlock(g Geometry, ents []Dirent) ([]byte, error) {
	buf := make([]byte, g.BlockSize)
	n := g.direntsPerBlock()
	for i := uint32(0); i < n && int(i) < len(ents); i++ {
		enc, err := encodeDirent(ents[i])
		if err != nil {
			return nil, err
		}
		copy(buf[i*direntSize:], enc)
	}
	return buf, nil
}
