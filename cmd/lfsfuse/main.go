// Command lfsfuse mounts a log-structured filesystem image via FUSE. It is
// a thin adapter over package lfs: the core library has no dependency on
// go-fuse, so non-FUSE consumers never pull in the binding.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/blocklayer/lfs"
)

type root struct {
	fs.Inode
	fsys *lfs.Filesystem
}

var (
	_ fs.NodeLookuper  = (*root)(nil)
	_ fs.NodeReaddirer = (*root)(nil)
	_ fs.NodeGetattrer = (*root)(nil)
	_ fs.NodeCreater   = (*root)(nil)
)

func (r *root) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = lfs.InodeTypeDir.UnixMode()
	return 0
}

func (r *root) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	ino, err := r.fsys.Lookup(name)
	if err != nil {
		return nil, syscall.ENOENT
	}
	i, err := r.fsys.Getattr(ino)
	if err != nil {
		return nil, syscall.EIO
	}
	out.Mode = i.Type.UnixMode()
	out.Size = uint64(i.Size)
	child := r.NewInode(ctx, &fileNode{fsys: r.fsys, ino: ino}, fs.StableAttr{Mode: syscall.S_IFREG, Ino: uint64(ino)})
	return child, 0
}

func (r *root) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	ents, err := r.fsys.Readdir()
	if err != nil {
		return nil, syscall.EIO
	}
	var list []fuse.DirEntry
	for _, e := range ents {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		list = append(list, fuse.DirEntry{Name: e.Name, Ino: uint64(e.InodeNo), Mode: syscall.S_IFREG})
	}
	return fs.NewListDirStream(list), 0
}

func (r *root) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	ino, err := r.fsys.Create(name)
	if err != nil {
		switch {
		case errors.Is(err, lfs.ErrExists):
			return nil, nil, 0, syscall.EEXIST
		case errors.Is(err, lfs.ErrNameTooLong):
			return nil, nil, 0, syscall.ENAMETOOLONG
		case errors.Is(err, lfs.ErrPermissionDenied):
			return nil, nil, 0, syscall.EPERM
		default:
			return nil, nil, 0, syscall.EIO
		}
	}
	out.Mode = lfs.InodeTypeFile.UnixMode()
	child := r.NewInode(ctx, &fileNode{fsys: r.fsys, ino: ino}, fs.StableAttr{Mode: syscall.S_IFREG, Ino: uint64(ino)})
	return child, nil, 0, 0
}

type fileNode struct {
	fs.Inode
	fsys *lfs.Filesystem
	ino  uint32
}

var (
	_ fs.NodeGetattrer = (*fileNode)(nil)
	_ fs.NodeReader    = (*fileNode)(nil)
	_ fs.NodeWriter    = (*fileNode)(nil)
	_ fs.NodeSetattrer = (*fileNode)(nil)
)

func (n *fileNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	i, err := n.fsys.Getattr(n.ino)
	if err != nil {
		return syscall.EIO
	}
	out.Mode = i.Type.UnixMode()
	out.Size = uint64(i.Size)
	return 0
}

func (n *fileNode) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := n.fsys.Read(n.ino, uint32(off), uint32(len(dest)))
	if err != nil {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(data), 0
}

func (n *fileNode) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	written, err := n.fsys.Write(n.ino, uint32(off), data)
	if err != nil {
		if errors.Is(err, lfs.ErrTooLarge) {
			return 0, syscall.EFBIG
		}
		return 0, syscall.EIO
	}
	return uint32(written), 0
}

func (n *fileNode) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	if sz, ok := in.GetSize(); ok {
		if err := n.fsys.Truncate(n.ino, uint32(sz)); err != nil {
			return syscall.EPERM
		}
	}
	i, err := n.fsys.Getattr(n.ino)
	if err != nil {
		return syscall.EIO
	}
	out.Size = uint64(i.Size)
	return 0
}

func main() {
	debug := flag.Bool("debug", false, "enable go-fuse debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: lfsfuse [flags] <image path> <mountpoint>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	g := lfs.DefaultGeometry()
	fsys, err := lfs.Mount(flag.Arg(0), g)
	if err != nil {
		log.Fatalf("lfsfuse: mount image: %v", err)
	}
	defer fsys.Unmount()

	server, err := fs.Mount(flag.Arg(1), &root{fsys: fsys}, &fs.Options{
		MountOptions: fuse.MountOptions{Debug: *debug},
	})
	if err != nil {
		log.Fatalf("lfsfuse: mount fuse: %v", err)
	}
	server.Wait()
}
