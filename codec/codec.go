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

// Package codec implements PolyFS's value serialization: the canonical
// byte framing for inode attribute records and directory children lists
// stored under the keys built by package schema.
//
// Framing is a fixed binary layout, little-endian throughout, prefixed
// with a one-byte format version so a future layout change can be
// detected rather than silently misread.
package codec

import (
	"encoding/binary"
	"fmt"
)

// Version1 is the only codec version PolyFS currently writes.
const Version1 byte = 0x01

// Kind enumerates the POSIX object types PolyFS records. The ordering
// matches the canonical field order of the inode attribute record.
type Kind uint8

const (
	KindNamedPipe Kind = iota
	KindCharDevice
	KindBlockDevice
	KindDirectory
	KindRegularFile
	KindSymlink
	KindSocket
)

func (k Kind) String() string {
	switch k {
	case KindNamedPipe:
		return "NamedPipe"
	case KindCharDevice:
		return "CharDevice"
	case KindBlockDevice:
		return "BlockDevice"
	case KindDirectory:
		return "Directory"
	case KindRegularFile:
		return "RegularFile"
	case KindSymlink:
		return "Symlink"
	case KindSocket:
		return "Socket"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Timespec is a wall-clock timestamp, stored as (seconds, nanoseconds)
// rather than reusing time.Time so the on-disk layout is independent of
// however the host platform happens to represent time.
type Timespec struct {
	Sec  int64
	Nsec int32
}

// Attr is the canonical inode attribute record, field order and widths as
// specified: ino/size/blocks are 64-bit, perm is 16-bit, nlink/uid/gid/
// rdev/flags are 32-bit, the four timestamps are 96-bit (int64, int32)
// pairs, kind is one of the seven Kind variants.
type Attr struct {
	Ino    uint64
	Size   uint64
	Blocks uint64
	Atime  Timespec
	Mtime  Timespec
	Ctime  Timespec
	Crtime Timespec
	Kind   Kind
	Perm   uint16
	Nlink  uint32
	Uid    uint32
	Gid    uint32
	Rdev   uint32
	Flags  uint32
}

// attrEncodedLen is the fixed byte length of an encoded Attr, excluding
// the version byte.
const attrEncodedLen = 8 + 8 + 8 + 12*4 + 1 + 2 + 4 + 4 + 4 + 4 + 4

// EncodeAttr serializes an inode attribute record.
func EncodeAttr(a Attr) []byte {
	buf := make([]byte, 1+attrEncodedLen)
	buf[0] = Version1
	b := buf[1:]

	off := 0
	putUint64(b, &off, a.Ino)
	putUint64(b, &off, a.Size)
	putUint64(b, &off, a.Blocks)
	putTimespec(b, &off, a.Atime)
	putTimespec(b, &off, a.Mtime)
	putTimespec(b, &off, a.Ctime)
	putTimespec(b, &off, a.Crtime)
	b[off] = byte(a.Kind)
	off++
	putUint16(b, &off, a.Perm)
	putUint32(b, &off, a.Nlink)
	putUint32(b, &off, a.Uid)
	putUint32(b, &off, a.Gid)
	putUint32(b, &off, a.Rdev)
	putUint32(b, &off, a.Flags)

	return buf
}

// DecodeAttr deserializes an inode attribute record previously produced by
// EncodeAttr. It returns an error if the version byte is unrecognized or
// the payload is short.
func DecodeAttr(data []byte) (Attr, error) {
	var a Attr

	if len(data) < 1 {
		return a, fmt.Errorf("codec: empty attribute record")
	}
	if data[0] != Version1 {
		return a, fmt.Errorf("codec: unsupported attribute record version %#x", data[0])
	}
	b := data[1:]
	if len(b) != attrEncodedLen {
		return a, fmt.Errorf("codec: attribute record has wrong length %d, want %d", len(b), attrEncodedLen)
	}

	off := 0
	a.Ino = getUint64(b, &off)
	a.Size = getUint64(b, &off)
	a.Blocks = getUint64(b, &off)
	a.Atime = getTimespec(b, &off)
	a.Mtime = getTimespec(b, &off)
	a.Ctime = getTimespec(b, &off)
	a.Crtime = getTimespec(b, &off)
	a.Kind = Kind(b[off])
	off++
	a.Perm = getUint16(b, &off)
	a.Nlink = getUint32(b, &off)
	a.Uid = getUint32(b, &off)
	a.Gid = getUint32(b, &off)
	a.Rdev = getUint32(b, &off)
	a.Flags = getUint32(b, &off)

	return a, nil
}

// ChildEntry is one element of a directory's children list: a child inode
// paired with the kind and name it was last known by.
type ChildEntry struct {
	Ino  uint64
	Kind Kind
	Name string
}

// EncodeChildren serializes a directory's children list in insertion
// order: a version byte, a uint32 count, then each entry as
// ino(8) ‖ kind(1) ‖ name-length(2) ‖ name bytes.
func EncodeChildren(entries []ChildEntry) []byte {
	size := 1 + 4
	for _, e := range entries {
		size += 8 + 1 + 2 + len(e.Name)
	}

	buf := make([]byte, size)
	buf[0] = Version1
	off := 1
	putUint32(buf, &off, uint32(len(entries)))
	for _, e := range entries {
		putUint64(buf, &off, e.Ino)
		buf[off] = byte(e.Kind)
		off++
		putUint16(buf, &off, uint16(len(e.Name)))
		off += copy(buf[off:], e.Name)
	}

	return buf
}

// DecodeChildren deserializes a children list previously produced by
// EncodeChildren.
func DecodeChildren(data []byte) ([]ChildEntry, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("codec: empty children record")
	}
	if data[0] != Version1 {
		return nil, fmt.Errorf("codec: unsupported children record version %#x", data[0])
	}
	b := data[1:]
	if len(b) < 4 {
		return nil, fmt.Errorf("codec: truncated children record")
	}

	off := 0
	count := getUint32(b, &off)
	entries := make([]ChildEntry, 0, count)

	for i := uint32(0); i < count; i++ {
		if len(b)-off < 8+1+2 {
			return nil, fmt.Errorf("codec: truncated children record at entry %d", i)
		}
		var e ChildEntry
		e.Ino = getUint64(b, &off)
		e.Kind = Kind(b[off])
		off++
		nameLen := int(getUint16(b, &off))
		if len(b)-off < nameLen {
			return nil, fmt.Errorf("codec: truncated children record name at entry %d", i)
		}
		e.Name = string(b[off : off+nameLen])
		off += nameLen

		entries = append(entries, e)
	}

	return entries, nil
}

// EncodeIno encodes a raw 8-byte little-endian ino. This is the one place
// an ino is stored outside a versioned, framed value: the value of a
// DirectoryEntry key is the bare child ino.
func EncodeIno(ino uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, ino)
	return buf
}

// DecodeIno decodes a raw 8-byte little-endian ino produced by EncodeIno.
func DecodeIno(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("codec: directory entry value has wrong length %d, want 8", len(data))
	}
	return binary.LittleEndian.Uint64(data), nil
}

func putUint64(b []byte, off *int, v uint64) {
	binary.LittleEndian.PutUint64(b[*off:], v)
	*off += 8
}

func putUint32(b []byte, off *int, v uint32) {
	binary.LittleEndian.PutUint32(b[*off:], v)
	*off += 4
}

func putUint16(b []byte, off *int, v uint16) {
	binary.LittleEndian.PutUint16(b[*off:], v)
	*off += 2
}

func putTimespec(b []byte, off *int, t Timespec) {
	binary.LittleEndian.PutUint64(b[*off:], uint64(t.Sec))
	*off += 8
	binary.LittleEndian.PutUint32(b[*off:], uint32(t.Nsec))
	*off += 4
}

func getUint64(b []byte, off *int) uint64 {
	v := binary.LittleEndian.Uint64(b[*off:])
	*off += 8
	return v
}

func getUint32(b []byte, off *int) uint32 {
	v := binary.LittleEndian.Uint32(b[*off:])
	*off += 4
	return v
}

func getUint16(b []byte, off *int) uint16 {
	v := binary.LittleEndian.Uint16(b[*off:])
	*off += 2
	return v
}

func getTimespec(b []byte, off *int) Timespec {
	sec := int64(binary.LittleEndian.Uint64(b[*off:]))
	*off += 8
	nsec := int32(binary.LittleEndian.Uint32(b[*off:]))
	*off += 4
	return Timespec{Sec: sec, Nsec: nsec}
}
