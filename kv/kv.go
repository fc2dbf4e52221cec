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

// Package kv defines the abstract key-value store PolyFS's core is built
// on: a single flat byte-key/byte-value map exposing get, set, delete,
// and whole-key listing. The core treats any Store implementation as a
// black box; concrete backends live in sibling packages (memkv, boltkv).
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrBackend is the sentinel a Store implementation should wrap when a
// backend-specific failure occurs, so callers can distinguish it from a
// normal miss (which is reported via the ok return, not an error) using
// errors.Is.
var ErrBackend = errors.New("kv: backend error")

// WrapBackendError wraps a backend-specific error so errors.Is(err,
// ErrBackend) succeeds. Backend implementations should use this rather
// than returning the raw driver error, so the translator layer can treat
// all backends uniformly.
func WrapBackendError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrBackend, op, err)
}

// Store is the downward interface the filesystem translator is built
// against. Every method reports either success or a backend error
// wrapping ErrBackend; the translator treats any such error as fatal for
// the operation that observed it.
type Store interface {
	// Get returns the value for key, or ok=false if the key is absent.
	Get(ctx context.Context, key []byte) (value []byte, ok bool, err error)

	// Set writes value for key, replacing any existing value.
	Set(ctx context.Context, key, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key []byte) error

	// List returns every key with the given prefix. It is used only by
	// administrative tooling (see cmd/polyfs inspect), never by the
	// translator itself, so implementations are free to make it O(n) in
	// the size of the store.
	List(ctx context.Context, prefix []byte) ([][]byte, error)

	// Close releases any resources (file handles, connections) the store
	// holds. The translator does not call this; it is invoked once by
	// whichever caller constructed the store.
	Close() error
}
