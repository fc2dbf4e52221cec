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

package fs

import (
	"context"
	"testing"
	"time"

	"github.com/jacobsa/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katharostech/polyfs/codec"
	"github.com/katharostech/polyfs/kv/memkv"
	"github.com/katharostech/polyfs/schema"
)

func newSimulatedClock(t0 time.Time) *timeutil.SimulatedClock {
	clock := &timeutil.SimulatedClock{}
	clock.SetTime(t0)
	return clock
}

func newTestTranslator(t *testing.T) *Translator {
	t.Helper()
	clock := newSimulatedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	tr := New(memkv.New(), clock)
	require.NoError(t, tr.Init(context.Background()))
	return tr
}

func TestInitCreatesRoot(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	attr, _, err := tr.GetAttr(ctx, schema.RootIno)
	require.NoError(t, err)
	assert.Equal(t, schema.RootIno, attr.Ino)
	assert.Equal(t, codec.KindDirectory, attr.Kind)
	assert.Equal(t, uint16(0o777), attr.Perm)
	assert.Equal(t, uint32(1), attr.Nlink)
}

func TestInitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	before, _, err := tr.GetAttr(ctx, schema.RootIno)
	require.NoError(t, err)

	require.NoError(t, tr.Init(ctx))

	after, _, err := tr.GetAttr(ctx, schema.RootIno)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCreateFileThenLookup(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	created, ttl, err := tr.CreateFile(ctx, codec.KindRegularFile, schema.RootIno, "hello.txt", 0o644, 501, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, LookupTTL, ttl)
	assert.Equal(t, codec.KindRegularFile, created.Kind)
	assert.Equal(t, uint16(0o644), created.Perm)
	assert.Equal(t, uint32(501), created.Uid)
	assert.Equal(t, uint32(20), created.Gid)
	assert.Equal(t, uint32(1), created.Nlink)
	assert.NotZero(t, created.Ino)
	assert.NotEqual(t, schema.RootIno, created.Ino)

	found, _, err := tr.Lookup(ctx, schema.RootIno, "hello.txt")
	require.NoError(t, err)
	assert.Equal(t, created, found)
}

func TestLookupUnknownNameReturnsNoEntry(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	_, _, err := tr.Lookup(ctx, schema.RootIno, "does-not-exist")
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestGetAttrUnknownInoReturnsNoEntry(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	_, _, err := tr.GetAttr(ctx, 0xDEADBEEF)
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestCreateFileRejectsInvalidName(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	_, _, err := tr.CreateFile(ctx, codec.KindRegularFile, schema.RootIno, "bad\xffname", 0o644, 0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestSetAttrAppliesOnlyPatchedFields(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	created, _, err := tr.CreateFile(ctx, codec.KindRegularFile, schema.RootIno, "f", 0o644, 1, 1, 0)
	require.NoError(t, err)

	newSize := uint64(4096)
	updated, err := tr.SetAttr(ctx, created.Ino, AttrPatch{Size: &newSize})
	require.NoError(t, err)

	assert.Equal(t, newSize, updated.Size)
	assert.Equal(t, created.Perm, updated.Perm)
	assert.Equal(t, created.Uid, updated.Uid)
	assert.Equal(t, created.Mtime, updated.Mtime)
}

func TestSetAttrChgtimeUpdatesMtimeOnly(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	created, _, err := tr.CreateFile(ctx, codec.KindRegularFile, schema.RootIno, "f", 0o644, 1, 1, 0)
	require.NoError(t, err)

	newTime := codec.Timespec{Sec: 123456, Nsec: 7}
	updated, err := tr.SetAttr(ctx, created.Ino, AttrPatch{Chgtime: &newTime})
	require.NoError(t, err)

	assert.Equal(t, newTime, updated.Mtime)
	assert.Equal(t, created.Ctime, updated.Ctime)
}

func TestSetAttrUnknownInoReturnsNoEntry(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	size := uint64(1)
	_, err := tr.SetAttr(ctx, 0xDEADBEEF, AttrPatch{Size: &size})
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestAllocateInoNeverReturnsZeroOrRoot(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	for i := 0; i < 50; i++ {
		ino, err := tr.AllocateIno(ctx)
		require.NoError(t, err)
		assert.NotZero(t, ino)
		assert.NotEqual(t, schema.RootIno, ino)
	}
}

func TestRemoveFileDeletesEntryAndAttributes(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	created, _, err := tr.CreateFile(ctx, codec.KindRegularFile, schema.RootIno, "doomed", 0o644, 0, 0, 0)
	require.NoError(t, err)

	require.NoError(t, tr.RemoveFile(ctx, schema.RootIno, "doomed"))

	_, _, err = tr.Lookup(ctx, schema.RootIno, "doomed")
	assert.ErrorIs(t, err, ErrNoEntry)

	_, _, err = tr.GetAttr(ctx, created.Ino)
	assert.ErrorIs(t, err, ErrNoEntry)

	entries, err := tr.ReadDir(ctx, schema.RootIno, 0)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "doomed", e.Name)
	}
}

func TestRemoveFileUnknownNameReturnsNoEntry(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	err := tr.RemoveFile(ctx, schema.RootIno, "never-existed")
	assert.ErrorIs(t, err, ErrNoEntry)
}

func TestReadDirIncludesSyntheticDotAndDotDot(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	_, _, err := tr.CreateFile(ctx, codec.KindRegularFile, schema.RootIno, "a", 0o644, 0, 0, 0)
	require.NoError(t, err)
	_, _, err = tr.CreateFile(ctx, codec.KindRegularFile, schema.RootIno, "b", 0o644, 0, 0, 0)
	require.NoError(t, err)

	entries, err := tr.ReadDir(ctx, schema.RootIno, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, ".", entries[0].Name)
	assert.Equal(t, schema.RootIno, entries[0].Ino)
	assert.Equal(t, "..", entries[1].Name)
	assert.Equal(t, schema.RootIno, entries[1].Ino)
	assert.Equal(t, "a", entries[2].Name)
	assert.Equal(t, "b", entries[3].Name)
}

func TestReadDirResumesFromOffset(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	_, _, err := tr.CreateFile(ctx, codec.KindRegularFile, schema.RootIno, "a", 0o644, 0, 0, 0)
	require.NoError(t, err)

	full, err := tr.ReadDir(ctx, schema.RootIno, 0)
	require.NoError(t, err)
	require.Len(t, full, 3)

	rest, err := tr.ReadDir(ctx, schema.RootIno, full[0].Offset)
	require.NoError(t, err)
	assert.Equal(t, full[1:], rest)

	tail, err := tr.ReadDir(ctx, schema.RootIno, full[len(full)-1].Offset)
	require.NoError(t, err)
	assert.Empty(t, tail)
}

func TestReadDirOfEmptyDirectoryHasOnlyDotEntries(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	entries, err := tr.ReadDir(ctx, schema.RootIno, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ".", entries[0].Name)
	assert.Equal(t, "..", entries[1].Name)
}

// Creating a name that already exists in parent overwrites the directory
// entry binding and appends a second children-list element, rather than
// returning an error (see DESIGN.md).
func TestCreateFileDuplicateNameIsNotRejected(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator(t)

	first, _, err := tr.CreateFile(ctx, codec.KindRegularFile, schema.RootIno, "dup", 0o644, 0, 0, 0)
	require.NoError(t, err)
	second, _, err := tr.CreateFile(ctx, codec.KindRegularFile, schema.RootIno, "dup", 0o644, 0, 0, 0)
	require.NoError(t, err)
	assert.NotEqual(t, first.Ino, second.Ino)

	found, _, err := tr.Lookup(ctx, schema.RootIno, "dup")
	require.NoError(t, err)
	assert.Equal(t, second.Ino, found.Ino)

	entries, err := tr.ReadDir(ctx, schema.RootIno, 0)
	require.NoError(t, err)
	count := 0
	for _, e := range entries {
		if e.Name == "dup" {
			count++
		}
	}
	assert.Equal(t, 2, count)
}
