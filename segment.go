package lfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// segEntry records which inode (and which logical block index within that
// inode) owns one block of a segment. It is provenance for GC debugging,
// never an authoritative liveness source (see gc.go).
type segEntry struct {
	InodeNo  uint32
	BlockIdx uint32
}

// SegmentSummary occupies the first in-log-region block of every segment.
// Entries[0] describes the summary's own position and is always zero;
// Entries[k] (k>0) describes the block k positions after the summary.
type SegmentSummary struct {
	Entries []segEntry
}

func newSegmentSummary(g Geometry) *SegmentSummary {
	return &SegmentSummary{Entries: make([]segEntry, g.BlocksPerSeg)}
}

// segmentSummaryBlock returns the block number holding the summary for the
// segment that contains block b. Segment 0 begins at block 0, so its
// summary position is clamped forward to the first log-region block
// (LogStart) rather than block 0, which holds the superblock.
func (g Geometry) segmentSummaryBlock(b uint32) uint32 {
	start := (b / g.BlocksPerSeg) * g.BlocksPerSeg
	if start < g.LogStart {
		start = g.LogStart
	}
	return start
}

// isSegmentSummaryBlock reports whether b is itself a segment-summary position.
func (g Geometry) isSegmentSummaryBlock(b uint32) bool {
	return b == g.segmentSummaryBlock(b)
}

// MarshalBinary serializes the summary as BlocksPerSeg (inode_no, block_idx)
// pairs. The caller zero-pads the result to the device block size.
func (s *SegmentSummary) MarshalBinary() ([]byte, error) {
	buf := &bytes.Buffer{}
	for _, e := range s.Entries {
		if err := binary.Write(buf, binary.LittleEndian, e.InodeNo); err != nil {
			return nil, err
		}
		if err := binary.Write(buf, binary.LittleEndian, e.BlockIdx); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes n entries (n == len(s.Entries)) from data.
func (s *SegmentSummary) UnmarshalBinary(data []byte) error {
	need := len(s.Entries) * 8
	if len(data) < need {
		return fmt.Errorf("%w: segment summary buffer too short", ErrBadFormat)
	}
	r := bytes.NewReader(data)
	for i := range s.Entries {
		if err := binary.Read(r, binary.LittleEndian, &s.Entries[i].InodeNo); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, &s.Entries[i].BlockIdx); err != nil {
			return err
		}
	}
	return nil
}

// set records that block b (offset positions after the segment's summary
// block) is owned by (inodeNo, blockIdx).
func (s *SegmentSummary) set(offset uint32, inodeNo, blockIdx uint32) {
	if int(offset) >= len(s.Entries) {
		return
	}
	s.Entries[offset] = segEntry{InodeNo: inodeNo, BlockIdx: blockIdx}
}
