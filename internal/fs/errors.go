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

import "errors"

// Error kinds surfaced by the translator. Callers (the FUSE adapter) map
// these to host-visible errno values with errors.Is;
// the translator itself never returns anything else for a well-formed
// request.
var (
	// ErrNoEntry is returned by Lookup, GetAttr, SetAttr, and RemoveFile
	// when the name or inode in question does not exist. It is routine,
	// not corruption, and is surfaced directly (host sees ENOENT).
	ErrNoEntry = errors.New("fs: no such entry")

	// ErrInvalidName is returned when a filename's bytes are not valid
	// UTF-8 (host sees EINVAL).
	ErrInvalidName = errors.New("fs: invalid name")

	// ErrStore wraps a failure reported by the backing kv.Store (host
	// sees EIO). The translator does not retry or attempt repair.
	ErrStore = errors.New("fs: store error")

	// ErrDecode wraps a failure to deserialize bytes read from the store
	// (host sees EIO, treated as corruption).
	ErrDecode = errors.New("fs: decode error")
)
