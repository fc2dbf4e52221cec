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

// Package schema implements PolyFS's key schema: the deterministic
// encoding that partitions a single flat key-value namespace into three
// virtual tables — FileAttributes, DirectoryEntry, and InodeChildren —
// each keyed by a one-byte table tag followed by a table-specific body.
//
// All multi-byte integers in keys are little-endian, matching the value
// codec's framing in package codec.
package schema

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Table tags. Each is a distinct single byte, so no body of one table can
// collide with a key of another.
const (
	TagFileAttributes byte = 0x00
	TagDirectoryEntry byte = 0x01
	TagInodeChildren  byte = 0x02
)

// RootIno is the inode id of the filesystem root. It is created on first
// mount if absent and is never deleted.
const RootIno uint64 = 1

// FileAttributesKey builds the key for the FileAttributes table entry of
// the given inode.
func FileAttributesKey(ino uint64) []byte {
	key := make([]byte, 1+8)
	key[0] = TagFileAttributes
	binary.LittleEndian.PutUint64(key[1:], ino)
	return key
}

// DirectoryEntryKey builds the key for the DirectoryEntry table binding of
// name within parent. name is stored as its raw UTF-8 bytes, unescaped
// and uncased: the schema performs no normalization.
//
// ErrInvalidName is returned if name is not valid UTF-8; the caller's
// name-based lookup cannot be represented in this table otherwise.
func DirectoryEntryKey(parent uint64, name string) ([]byte, error) {
	if !utf8.ValidString(name) {
		return nil, ErrInvalidName
	}

	key := make([]byte, 1+8+len(name))
	key[0] = TagDirectoryEntry
	binary.LittleEndian.PutUint64(key[1:9], parent)
	copy(key[9:], name)
	return key, nil
}

// InodeChildrenKey builds the key for the InodeChildren table entry of the
// given inode.
func InodeChildrenKey(ino uint64) []byte {
	key := make([]byte, 1+8)
	key[0] = TagInodeChildren
	binary.LittleEndian.PutUint64(key[1:], ino)
	return key
}

// ErrInvalidName is returned when a filename's bytes are not valid UTF-8
// and therefore cannot be encoded into a DirectoryEntry key.
var ErrInvalidName = fmt.Errorf("schema: name is not valid UTF-8")

// Descriptor is the decoded shape of a raw key, used by administrative
// tooling (see cmd/polyfs inspect) to print keys without duplicating the
// encoding rules above.
type Descriptor struct {
	Table  byte
	Ino    uint64 // valid for FileAttributes and InodeChildren
	Parent uint64 // valid for DirectoryEntry
	Name   string // valid for DirectoryEntry
}

// Parse decodes a raw key back into a Descriptor. It is used only by
// administrative tooling; the translator never needs to parse a key it
// did not just build itself.
func Parse(key []byte) (Descriptor, error) {
	if len(key) < 1 {
		return Descriptor{}, fmt.Errorf("schema: empty key")
	}

	d := Descriptor{Table: key[0]}
	body := key[1:]

	switch d.Table {
	case TagFileAttributes, TagInodeChildren:
		if len(body) != 8 {
			return Descriptor{}, fmt.Errorf("schema: key body has wrong length %d, want 8", len(body))
		}
		d.Ino = binary.LittleEndian.Uint64(body)

	case TagDirectoryEntry:
		if len(body) < 8 {
			return Descriptor{}, fmt.Errorf("schema: key body too short for directory entry")
		}
		d.Parent = binary.LittleEndian.Uint64(body[:8])
		d.Name = string(body[8:])

	default:
		return Descriptor{}, fmt.Errorf("schema: unknown table tag %#x", d.Table)
	}

	return d, nil
}
