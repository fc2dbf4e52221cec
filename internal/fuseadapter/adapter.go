// Copyright 2026 Katharos Technology. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fuseadapter binds a fs.Translator to github.com/jacobsa/fuse's
// fuseutil.FileSystem interface: the boundary between POSIX op structs
// the kernel sends and the Translator's store-shaped method calls.
//
// One adapter method per op; everything the translator doesn't support,
// including all file content operations (OpenFile, ReadFile, WriteFile,
// and friends), falls through to the embedded
// fuseutil.NotImplementedFileSystem: PolyFS translates a namespace, not
// file bytes.
package fuseadapter

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/katharostech/polyfs/codec"
	"github.com/katharostech/polyfs/internal/fs"
)

// Ownership supplies the uid/gid recorded on newly created inodes. The
// kernel does not hand these to us on MkDir/CreateFile in a form this
// library exposes, so the mount is configured with a single owner up
// front, matching a single-user mount model.
type Ownership struct {
	Uid uint32
	Gid uint32
}

// Modes optionally forces the permission bits recorded on newly created
// inodes, mirroring the dir-mode/file-mode mount knobs. A zero field
// honors whatever mode the kernel supplied with the request.
type Modes struct {
	Dir  os.FileMode
	File os.FileMode
}

// FileSystem adapts a fs.Translator to fuseutil.FileSystem.
type FileSystem struct {
	fuseutil.NotImplementedFileSystem

	translator *fs.Translator
	owner      Ownership
	modes      Modes
}

var _ fuseutil.FileSystem = (*FileSystem)(nil)

// New returns a FileSystem backed by translator, recording owner as the
// uid/gid of every inode it creates and applying any mode overrides in
// modes.
func New(translator *fs.Translator, owner Ownership, modes Modes) *FileSystem {
	return &FileSystem{translator: translator, owner: owner, modes: modes}
}

// createPerm resolves the permission bits to record for a new inode of
// the given kind: the configured override if one is set, otherwise the
// kernel-supplied mode.
func (a *FileSystem) createPerm(kind codec.Kind, requested os.FileMode) uint32 {
	override := a.modes.File
	if kind == codec.KindDirectory {
		override = a.modes.Dir
	}
	if override != 0 {
		return uint32(override.Perm())
	}
	return uint32(requested.Perm())
}

func (a *FileSystem) LookUpInode(ctx context.Context, op *fuseops.LookUpInodeOp) error {
	attr, ttl, err := a.translator.Lookup(ctx, uint64(op.Parent), op.Name)
	if err != nil {
		return mapError(err)
	}
	op.Entry = childInodeEntry(attr, ttl)
	return nil
}

func (a *FileSystem) GetInodeAttributes(ctx context.Context, op *fuseops.GetInodeAttributesOp) error {
	attr, ttl, err := a.translator.GetAttr(ctx, uint64(op.Inode))
	if err != nil {
		return mapError(err)
	}
	op.Attributes = attrToFuse(attr)
	op.AttributesExpiration = time.Now().Add(ttl)
	return nil
}

func (a *FileSystem) SetInodeAttributes(ctx context.Context, op *fuseops.SetInodeAttributesOp) error {
	var patch fs.AttrPatch

	if op.Size != nil {
		patch.Size = op.Size
	}
	if op.Mode != nil {
		mode := uint32(op.Mode.Perm())
		patch.Mode = &mode
	}
	if op.Atime != nil {
		ts := toTimespec(*op.Atime)
		patch.Atime = &ts
	}
	if op.Mtime != nil {
		ts := toTimespec(*op.Mtime)
		patch.Mtime = &ts
	}

	attr, err := a.translator.SetAttr(ctx, uint64(op.Inode), patch)
	if err != nil {
		return mapError(err)
	}

	op.Attributes = attrToFuse(attr)
	op.AttributesExpiration = time.Now().Add(fs.LookupTTL)
	return nil
}

// ForgetInode is a no-op: the translator keeps no lookup-count state for
// the kernel's dentry cache to release.
func (a *FileSystem) ForgetInode(ctx context.Context, op *fuseops.ForgetInodeOp) error {
	return nil
}

func (a *FileSystem) MkDir(ctx context.Context, op *fuseops.MkDirOp) error {
	attr, ttl, err := a.translator.CreateFile(
		ctx, codec.KindDirectory, uint64(op.Parent), op.Name,
		a.createPerm(codec.KindDirectory, op.Mode), a.owner.Uid, a.owner.Gid, 0,
	)
	if err != nil {
		return mapError(err)
	}
	op.Entry = childInodeEntry(attr, ttl)
	return nil
}

// MkNode implements the raw mknod(2) path: creating a directory entry of
// arbitrary kind (regular file, device, FIFO, ...) without opening it.
// The op carries no device number, so device nodes are recorded with
// rdev 0.
func (a *FileSystem) MkNode(ctx context.Context, op *fuseops.MkNodeOp) error {
	kind := fileModeToKind(op.Mode)
	attr, ttl, err := a.translator.CreateFile(
		ctx, kind, uint64(op.Parent), op.Name,
		a.createPerm(kind, op.Mode), a.owner.Uid, a.owner.Gid, 0,
	)
	if err != nil {
		return mapError(err)
	}
	op.Entry = childInodeEntry(attr, ttl)
	return nil
}

func (a *FileSystem) CreateFile(ctx context.Context, op *fuseops.CreateFileOp) error {
	attr, ttl, err := a.translator.CreateFile(
		ctx, codec.KindRegularFile, uint64(op.Parent), op.Name,
		a.createPerm(codec.KindRegularFile, op.Mode), a.owner.Uid, a.owner.Gid, 0,
	)
	if err != nil {
		return mapError(err)
	}
	op.Entry = childInodeEntry(attr, ttl)
	return nil
}

func (a *FileSystem) RmDir(ctx context.Context, op *fuseops.RmDirOp) error {
	return mapError(a.translator.RemoveFile(ctx, uint64(op.Parent), op.Name))
}

func (a *FileSystem) Unlink(ctx context.Context, op *fuseops.UnlinkOp) error {
	return mapError(a.translator.RemoveFile(ctx, uint64(op.Parent), op.Name))
}

// OpenDir always succeeds: the translator is stateless, so there is no
// handle-local state to establish beyond the zero HandleID.
func (a *FileSystem) OpenDir(ctx context.Context, op *fuseops.OpenDirOp) error {
	return nil
}

func (a *FileSystem) ReadDir(ctx context.Context, op *fuseops.ReadDirOp) error {
	entries, err := a.translator.ReadDir(ctx, uint64(op.Inode), int64(op.Offset))
	if err != nil {
		return mapError(err)
	}

	for _, e := range entries {
		n := fuseutil.WriteDirent(op.Dst[op.BytesRead:], fuseutil.Dirent{
			Offset: fuseops.DirOffset(e.Offset),
			Inode:  fuseops.InodeID(e.Ino),
			Name:   e.Name,
			Type:   kindToDirentType(e.Kind),
		})
		if n == 0 {
			break
		}
		op.BytesRead += n
	}

	return nil
}

func (a *FileSystem) ReleaseDirHandle(ctx context.Context, op *fuseops.ReleaseDirHandleOp) error {
	return nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNoEntry):
		return fuse.ENOENT
	case errors.Is(err, fs.ErrInvalidName):
		return fuse.EINVAL
	case errors.Is(err, fs.ErrStore), errors.Is(err, fs.ErrDecode):
		return fuse.EIO
	default:
		return err
	}
}

func childInodeEntry(attr codec.Attr, ttl time.Duration) fuseops.ChildInodeEntry {
	expiry := time.Now().Add(ttl)
	return fuseops.ChildInodeEntry{
		Child:                fuseops.InodeID(attr.Ino),
		Attributes:           attrToFuse(attr),
		AttributesExpiration: expiry,
		EntryExpiration:      expiry,
	}
}

func attrToFuse(a codec.Attr) fuseops.InodeAttributes {
	return fuseops.InodeAttributes{
		Size:   a.Size,
		Nlink:  a.Nlink,
		Mode:   kindToFileMode(a.Kind) | os.FileMode(a.Perm),
		Atime:  fromTimespec(a.Atime),
		Mtime:  fromTimespec(a.Mtime),
		Ctime:  fromTimespec(a.Ctime),
		Crtime: fromTimespec(a.Crtime),
		Uid:    a.Uid,
		Gid:    a.Gid,
	}
}

func kindToFileMode(k codec.Kind) os.FileMode {
	switch k {
	case codec.KindDirectory:
		return os.ModeDir
	case codec.KindSymlink:
		return os.ModeSymlink
	case codec.KindNamedPipe:
		return os.ModeNamedPipe
	case codec.KindSocket:
		return os.ModeSocket
	case codec.KindCharDevice:
		return os.ModeDevice | os.ModeCharDevice
	case codec.KindBlockDevice:
		return os.ModeDevice
	default:
		return 0
	}
}

// fileModeToKind maps the os.FileMode type bits the kernel sends a
// MkNodeOp with back to the Kind the attribute record stores.
func fileModeToKind(mode os.FileMode) codec.Kind {
	switch {
	case mode&os.ModeDir != 0:
		return codec.KindDirectory
	case mode&os.ModeSymlink != 0:
		return codec.KindSymlink
	case mode&os.ModeNamedPipe != 0:
		return codec.KindNamedPipe
	case mode&os.ModeSocket != 0:
		return codec.KindSocket
	case mode&os.ModeDevice != 0:
		if mode&os.ModeCharDevice != 0 {
			return codec.KindCharDevice
		}
		return codec.KindBlockDevice
	default:
		return codec.KindRegularFile
	}
}

func kindToDirentType(k codec.Kind) fuseutil.DirentType {
	switch k {
	case codec.KindDirectory:
		return fuseutil.DT_Directory
	case codec.KindSymlink:
		return fuseutil.DT_Link
	case codec.KindNamedPipe:
		return fuseutil.DT_FIFO
	case codec.KindSocket:
		return fuseutil.DT_Socket
	case codec.KindCharDevice:
		return fuseutil.DT_Char
	case codec.KindBlockDevice:
		return fuseutil.DT_Block
	default:
		return fuseutil.DT_File
	}
}

func toTimespec(t time.Time) codec.Timespec {
	return codec.Timespec{Sec: t.Unix(), Nsec: int32(t.Nanosecond())}
}

func fromTimespec(ts codec.Timespec) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec))
}
