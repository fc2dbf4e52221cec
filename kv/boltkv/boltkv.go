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

// Package boltkv implements a kv.Store backed by a single go.etcd.io/bbolt
// file: a real, persistent, single-process embedded key-value engine, a
// direct concrete instance of the abstract store PolyFS's core is built
// against.
//
// One bucket, opened once at construction and closed at shutdown, byte
// keys mapped straight to byte values with no further structure imposed
// by this package.
package boltkv

import (
	"bytes"
	"context"

	bolt "go.etcd.io/bbolt"

	"github.com/katharostech/polyfs/kv"
)

// rootBucket is the single bbolt bucket PolyFS stores everything under.
// The kv.Store abstraction is already a flat namespace partitioned by
// package schema's table tags, so there is no need for bbolt's own
// nested-bucket structure.
var rootBucket = []byte("polyfs")

// Store is a bbolt-backed kv.Store.
type Store struct {
	db *bolt.DB
}

var _ kv.Store = (*Store)(nil)

// Open opens (creating if necessary) the bbolt file at path and returns a
// Store backed by it.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, kv.WrapBackendError("open", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, kv.WrapBackendError("create root bucket", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	var value []byte
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(rootBucket).Get(key)
		if v == nil {
			return nil
		}
		found = true
		// Bolt's Get result is only valid for the lifetime of the
		// transaction; copy it out before returning.
		value = append([]byte{}, v...)
		return nil
	})
	if err != nil {
		return nil, false, kv.WrapBackendError("get", err)
	}
	return value, found, nil
}

func (s *Store) Set(_ context.Context, key, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rootBucket).Put(key, value)
	})
	if err != nil {
		return kv.WrapBackendError("set", err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(rootBucket).Delete(key)
	})
	if err != nil {
		return kv.WrapBackendError("delete", err)
	}
	return nil
}

func (s *Store) List(_ context.Context, prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(rootBucket).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		return nil
	})
	if err != nil {
		return nil, kv.WrapBackendError("list", err)
	}
	return keys, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return kv.WrapBackendError("close", err)
	}
	return nil
}
