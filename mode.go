package lfs

import (
	"io/fs"
)

// Unix mode bits, used by UnixMode to report a stat-compatible mode_t to
// callers (e.g. cmd/lfsfuse's Getattr). LFS stores no permission bits on
// disk: every file is reported 0644 and every directory 0755.
const (
	S_IFMT  = 0xf000
	S_IFREG = 0x8000
	S_IFDIR = 0x4000

	defaultFileMode = 0644
	defaultDirMode  = 0755
)

// FileMode reports the fs.FileMode a caller should see for this inode's type.
func (t InodeType) FileMode() fs.FileMode {
	switch t {
	case InodeTypeDir:
		return fs.ModeDir | defaultDirMode
	default:
		return defaultFileMode
	}
}

// UnixMode reports the raw unix mode_t value (type bits plus permission
// bits) for this inode's type, as used by the FUSE Getattr adapter.
func (t InodeType) UnixMode() uint32 {
	switch t {
	case InodeTypeDir:
		return S_IFDIR | defaultDirMode
	default:
		return S_IFREG | defaultFileMode
	}
}
