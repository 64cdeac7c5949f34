package lfs

import "errors"

// Package-specific error variables that can be used with errors.Is() for error handling.
// Filesystem operations fail with one of these, often wrapped with context;
// opening or creating an image file can also fail with an error from the os
// package.
var (
	// ErrNotFound is returned when a path does not resolve to an inode.
	ErrNotFound = errors.New("lfs: not found")

	// ErrExists is returned by Create when the name already resolves.
	ErrExists = errors.New("lfs: already exists")

	// ErrNotDirectory is returned when a directory operation targets a file.
	ErrNotDirectory = errors.New("lfs: not a directory")

	// ErrIsDirectory is returned when a file operation targets a directory.
	ErrIsDirectory = errors.New("lfs: is a directory")

	// ErrNameTooLong is returned when a name is >= MaxNameLen bytes.
	ErrNameTooLong = errors.New("lfs: name too long")

	// ErrPermissionDenied is returned for unsupported operations, such as an
	// embedded slash in a create path or a nonzero-size truncate.
	ErrPermissionDenied = errors.New("lfs: permission denied")

	// ErrNoSpace is returned when the log or a directory block is full.
	ErrNoSpace = errors.New("lfs: no space left")

	// ErrTooLarge is returned when a write offset is beyond the last direct block.
	ErrTooLarge = errors.New("lfs: file too large")

	// ErrIO wraps an underlying block device failure.
	ErrIO = errors.New("lfs: io error")

	// ErrBadFormat is returned by Mount when the superblock magic mismatches.
	ErrBadFormat = errors.New("lfs: bad format")

	// ErrNotOpen is returned when a block device operation is attempted
	// against an unopened handle.
	ErrNotOpen = errors.New("lfs: device not open")

	// ErrInvalidArgument covers precondition violations: out-of-range inode
	// numbers, nil buffers, wrong-size buffers.
	ErrInvalidArgument = errors.New("lfs: invalid argument")
)
