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

// Package fs implements the PolyFS filesystem translator: the stateless
// service that converts host filesystem callbacks into a bounded sequence
// of operations against a kv.Store, enforcing PolyFS's data-model
// invariants.
//
// The translator holds no state of its own beyond its store and clock —
// every method call is resolved entirely by store round-trips, without
// an in-memory inode cache: the store is already indexed by ino, so
// nothing needs to be cached to avoid a costly re-listing.
package fs

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jacobsa/timeutil"

	"github.com/katharostech/polyfs/codec"
	"github.com/katharostech/polyfs/kv"
	"github.com/katharostech/polyfs/schema"
)

// LookupTTL is the cache validity hint returned to the kernel for a
// successful Lookup or CreateFile.
const LookupTTL = 1 * time.Second

// maxAllocateAttempts bounds the allocate-and-check-collision loop so a
// run of colliding candidates surfaces an error instead of spinning
// forever; collisions themselves are expected to be vanishingly rare. A
// store error ends the loop at once, on the attempt that observed it.
const maxAllocateAttempts = 1000

// Translator services filesystem callbacks against a kv.Store. The zero
// value is not usable; construct with New.
type Translator struct {
	store kv.Store
	clock timeutil.Clock
}

// New returns a Translator backed by store, using clock for the wall-clock
// timestamps recorded on newly created inodes.
func New(store kv.Store, clock timeutil.Clock) *Translator {
	return &Translator{store: store, clock: clock}
}

// Init ensures the root inode exists: if FileAttributes[RootIno] is
// absent, it writes a Directory inode with permissions 0o777, link count
// 1, and zero timestamps and remaining fields. It is idempotent and safe
// to call on every mount.
func (t *Translator) Init(ctx context.Context) error {
	key := schema.FileAttributesKey(schema.RootIno)

	_, ok, err := t.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	if ok {
		return nil
	}

	root := codec.Attr{
		Ino:   schema.RootIno,
		Kind:  codec.KindDirectory,
		Perm:  0o777,
		Nlink: 1,
	}

	if err := t.store.Set(ctx, key, codec.EncodeAttr(root)); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}

	return nil
}

// Lookup resolves name within parent and returns the child's attributes.
func (t *Translator) Lookup(ctx context.Context, parent uint64, name string) (codec.Attr, time.Duration, error) {
	key, err := schema.DirectoryEntryKey(parent, name)
	if err != nil {
		return codec.Attr{}, 0, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	raw, ok, err := t.store.Get(ctx, key)
	if err != nil {
		return codec.Attr{}, 0, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if !ok {
		return codec.Attr{}, 0, ErrNoEntry
	}

	ino, err := codec.DecodeIno(raw)
	if err != nil {
		return codec.Attr{}, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	attr, err := t.getAttr(ctx, ino)
	if err != nil {
		// A dangling directory entry is surfaced as no-entry rather than
		// as a corruption error.
		if isNotFound(err) {
			return codec.Attr{}, 0, ErrNoEntry
		}
		return codec.Attr{}, 0, err
	}

	return attr, LookupTTL, nil
}

// GetAttr returns the attributes of ino.
func (t *Translator) GetAttr(ctx context.Context, ino uint64) (codec.Attr, time.Duration, error) {
	attr, err := t.getAttr(ctx, ino)
	if err != nil {
		return codec.Attr{}, 0, err
	}
	return attr, LookupTTL, nil
}

func (t *Translator) getAttr(ctx context.Context, ino uint64) (codec.Attr, error) {
	raw, ok, err := t.store.Get(ctx, schema.FileAttributesKey(ino))
	if err != nil {
		return codec.Attr{}, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if !ok {
		return codec.Attr{}, ErrNoEntry
	}

	attr, err := codec.DecodeAttr(raw)
	if err != nil {
		return codec.Attr{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return attr, nil
}

func isNotFound(err error) bool {
	return err == ErrNoEntry
}

// AttrPatch is a partial update to an inode's mutable attributes. A nil
// field leaves the stored value unchanged. Chgtime, when set, updates
// Mtime; nothing in this patch ever updates Ctime automatically.
type AttrPatch struct {
	Mode    *uint32
	Uid     *uint32
	Gid     *uint32
	Size    *uint64
	Atime   *codec.Timespec
	Mtime   *codec.Timespec
	Crtime  *codec.Timespec
	Chgtime *codec.Timespec
	Flags   *uint32
}

// SetAttr applies patch to ino's stored attributes and returns the
// resulting record. Applying an empty patch is a no-op that leaves the
// attributes bytewise unchanged.
func (t *Translator) SetAttr(ctx context.Context, ino uint64, patch AttrPatch) (codec.Attr, error) {
	attr, err := t.getAttr(ctx, ino)
	if err != nil {
		return codec.Attr{}, err
	}

	if patch.Mode != nil {
		attr.Perm = uint16(*patch.Mode & 0xFFFF)
	}
	if patch.Uid != nil {
		attr.Uid = *patch.Uid
	}
	if patch.Gid != nil {
		attr.Gid = *patch.Gid
	}
	if patch.Size != nil {
		attr.Size = *patch.Size
	}
	if patch.Atime != nil {
		attr.Atime = *patch.Atime
	}
	if patch.Mtime != nil {
		attr.Mtime = *patch.Mtime
	}
	if patch.Crtime != nil {
		attr.Crtime = *patch.Crtime
	}
	if patch.Chgtime != nil {
		attr.Mtime = *patch.Chgtime
	}
	if patch.Flags != nil {
		attr.Flags = *patch.Flags
	}

	if err := t.store.Set(ctx, schema.FileAttributesKey(ino), codec.EncodeAttr(attr)); err != nil {
		return codec.Attr{}, fmt.Errorf("%w: %v", ErrStore, err)
	}

	return attr, nil
}

// AllocateIno returns a fresh 64-bit inode id not used by any existing
// FileAttributes key. It draws a uniformly random candidate and checks
// for collision, retrying on one; it never returns 0 or 1. The random
// source need only be statistically uniform, not cryptographically
// secure.
func (t *Translator) AllocateIno(ctx context.Context) (uint64, error) {
	for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
		candidate := rand.Uint64()
		if candidate == 0 || candidate == schema.RootIno {
			continue
		}

		_, ok, err := t.store.Get(ctx, schema.FileAttributesKey(candidate))
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStore, err)
		}
		if !ok {
			return candidate, nil
		}
	}

	return 0, fmt.Errorf("fs: could not allocate an unused inode after %d attempts", maxAllocateAttempts)
}

// CreateFile allocates a new inode of the given kind, binds it to name
// within parent, and appends it to parent's children list. A
// pre-existing (parent, name) is not rejected: the call overwrites the
// directory entry and a second children-list element is appended
// alongside the first (see DESIGN.md).
func (t *Translator) CreateFile(
	ctx context.Context,
	kind codec.Kind,
	parent uint64,
	name string,
	mode uint32,
	uid, gid uint32,
	rdev uint32,
) (codec.Attr, time.Duration, error) {
	entryKey, err := schema.DirectoryEntryKey(parent, name)
	if err != nil {
		return codec.Attr{}, 0, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	ino, err := t.AllocateIno(ctx)
	if err != nil {
		return codec.Attr{}, 0, err
	}

	now := toTimespec(t.clock.Now())
	attr := codec.Attr{
		Ino:    ino,
		Size:   0,
		Blocks: 0,
		Atime:  now,
		Mtime:  now,
		Ctime:  now,
		Crtime: now,
		Kind:   kind,
		Perm:   uint16(mode & 0xFFFF),
		Nlink:  1,
		Uid:    uid,
		Gid:    gid,
		Rdev:   rdev,
		Flags:  0,
	}

	if err := t.store.Set(ctx, schema.FileAttributesKey(ino), codec.EncodeAttr(attr)); err != nil {
		return codec.Attr{}, 0, fmt.Errorf("%w: %v", ErrStore, err)
	}

	if err := t.store.Set(ctx, entryKey, codec.EncodeIno(ino)); err != nil {
		return codec.Attr{}, 0, fmt.Errorf("%w: %v", ErrStore, err)
	}

	children, err := t.readChildren(ctx, parent)
	if err != nil {
		return codec.Attr{}, 0, err
	}
	children = append(children, codec.ChildEntry{Ino: ino, Kind: kind, Name: name})
	if err := t.writeChildren(ctx, parent, children); err != nil {
		return codec.Attr{}, 0, err
	}

	return attr, LookupTTL, nil
}

// RemoveFile unbinds name from parent, removes the corresponding element
// of parent's children list, and deletes the child's attribute record.
// unlink and rmdir both call this; it does not check that rmdir is only
// applied to a directory, nor that a directory is empty (see DESIGN.md).
func (t *Translator) RemoveFile(ctx context.Context, parent uint64, name string) error {
	entryKey, err := schema.DirectoryEntryKey(parent, name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	raw, ok, err := t.store.Get(ctx, entryKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	if !ok {
		return ErrNoEntry
	}

	ino, err := codec.DecodeIno(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if err := t.store.Delete(ctx, entryKey); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}

	children, err := t.readChildren(ctx, parent)
	if err != nil {
		return err
	}
	filtered := children[:0:0]
	removed := false
	for _, c := range children {
		if !removed && c.Ino == ino {
			removed = true
			continue
		}
		filtered = append(filtered, c)
	}
	// Write back even if the list became empty: absence and an empty
	// list are equivalent, but writing keeps the store's children record
	// in lockstep with what we just observed.
	if err := t.writeChildren(ctx, parent, filtered); err != nil {
		return err
	}

	if err := t.store.Delete(ctx, schema.FileAttributesKey(ino)); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}

	return nil
}

// DirEntry is one entry of a ReadDir stream: a name paired with the child
// inode and kind it refers to, plus the logical offset of the *next*
// entry (the value the kernel should pass back in to resume the stream
// after this one).
type DirEntry struct {
	Offset int64
	Ino    uint64
	Kind   codec.Kind
	Name   string
}

// ReadDir returns the directory stream for ino starting after offset.
// The stream always begins with synthetic "." and ".." entries at
// positions 0 and 1, both pointing at ino itself: no parent pointer is
// stored, so ".." cannot name ino's true parent (see DESIGN.md).
func (t *Translator) ReadDir(ctx context.Context, ino uint64, offset int64) ([]DirEntry, error) {
	children, err := t.readChildren(ctx, ino)
	if err != nil {
		return nil, err
	}

	all := make([]DirEntry, 0, len(children)+2)
	all = append(all,
		DirEntry{Offset: 1, Ino: ino, Kind: codec.KindDirectory, Name: "."},
		DirEntry{Offset: 2, Ino: ino, Kind: codec.KindDirectory, Name: ".."},
	)
	for i, c := range children {
		all = append(all, DirEntry{
			Offset: int64(3 + i),
			Ino:    c.Ino,
			Kind:   c.Kind,
			Name:   c.Name,
		})
	}

	if offset < 0 {
		offset = 0
	}
	if offset >= int64(len(all)) {
		return nil, nil
	}

	return all[offset:], nil
}

func (t *Translator) readChildren(ctx context.Context, ino uint64) ([]codec.ChildEntry, error) {
	raw, ok, err := t.store.Get(ctx, schema.InodeChildrenKey(ino))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if !ok {
		return nil, nil
	}

	children, err := codec.DecodeChildren(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return children, nil
}

func (t *Translator) writeChildren(ctx context.Context, ino uint64, children []codec.ChildEntry) error {
	if err := t.store.Set(ctx, schema.InodeChildrenKey(ino), codec.EncodeChildren(children)); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

func toTimespec(t time.Time) codec.Timespec {
	return codec.Timespec{Sec: t.Unix(), Nsec: int32(t.Nanosecond())}
}
