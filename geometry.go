package lfs

// Geometry fixes the on-disk layout constants for an image. The zero value
// is not usable; use DefaultGeometry or NewGeometry with Options.
type Geometry struct {
	BlockSize     uint32 // B: bytes per block
	TotalBlocks   uint32 // N: total blocks in the image
	InodeMapBlock uint32 // conventionally 1
	InodeMapSize  uint32 // M: max inodes supported
	LogStart      uint32 // first block usable for the log
	BlocksPerSeg  uint32 // S: blocks per segment, including its summary
	GCThreshold   uint32 // GC triggers when free blocks drop below this
	MaxDirect     uint32 // D: direct pointers per inode
	MaxNameLen    uint32 // L: max bytes in a dirent name, including NUL
}

// Magic identifies the on-disk format. Fixed per spec.
const Magic uint32 = 0x4C465331 // "LFS1"

// DefaultGeometry matches the values used by the reference implementation:
// a 4MB image of 4096-byte blocks, 256 inodes, 10 direct pointers, 32-block
// segments, and a 700-block GC threshold.
func DefaultGeometry() Geometry {
	return Geometry{
		BlockSize:     4096,
		TotalBlocks:   1024,
		InodeMapBlock: 1,
		InodeMapSize:  256,
		LogStart:      10,
		BlocksPerSeg:  32,
		GCThreshold:   700,
		MaxDirect:     10,
		MaxNameLen:    28,
	}
}

// GeometryOption configures a Geometry built from DefaultGeometry.
type GeometryOption func(*Geometry) error

// NewGeometry builds a Geometry starting from DefaultGeometry and applying opts.
func NewGeometry(opts ...GeometryOption) (Geometry, error) {
	g := DefaultGeometry()
	for _, opt := range opts {
		if err := opt(&g); err != nil {
			return Geometry{}, err
		}
	}
	return g, nil
}

// WithTotalBlocks overrides the total block count (image size = blocks * BlockSize).
func WithTotalBlocks(n uint32) GeometryOption {
	return func(g *Geometry) error {
		g.TotalBlocks = n
		return nil
	}
}

// WithInodeMapSize overrides the maximum number of inodes.
func WithInodeMapSize(m uint32) GeometryOption {
	return func(g *Geometry) error {
		g.InodeMapSize = m
		return nil
	}
}

// WithGCThreshold overrides the free-block count below which GC is triggered.
func WithGCThreshold(threshold uint32) GeometryOption {
	return func(g *Geometry) error {
		g.GCThreshold = threshold
		return nil
	}
}

// direntsPerBlock returns how many directory entries fit in one block.
func (g Geometry) direntsPerBlock() uint32 {
	return g.BlockSize / direntSize
}

// maxFileSize returns the largest byte size a file's direct array can address.
func (g Geometry) maxFileSize() uint64 {
	return uint64(g.MaxDirect) * uint64(g.BlockSize)
}
