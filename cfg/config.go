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

// Package cfg holds the configuration surface for a PolyFS mount: which
// kv.Store backend to use, the uid/gid/permission bits stamped on new
// inodes, and logging setup.
package cfg

// Config is the fully resolved configuration for a `polyfs mount` run.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Mount   MountConfig   `yaml:"mount" mapstructure:"mount"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// StoreConfig selects and configures the kv.Store backend.
type StoreConfig struct {
	Backend StoreBackend `yaml:"backend" mapstructure:"backend"`

	// BoltPath is the database file used when Backend is BoltStoreBackend.
	BoltPath ResolvedPath `yaml:"bolt-path" mapstructure:"bolt-path"`
}

// MountConfig carries the defaults stamped onto inodes the translator
// creates, since the FUSE wire protocol this library exposes never hands
// the adapter a requesting uid/gid.
type MountConfig struct {
	Uid uint32 `yaml:"uid" mapstructure:"uid"`
	Gid uint32 `yaml:"gid" mapstructure:"gid"`

	// DirMode and FileMode, when nonzero, force the permission bits
	// recorded on every directory or file the mount creates, overriding
	// whatever mode the kernel request carried. Zero honors the request.
	DirMode  Octal `yaml:"dir-mode" mapstructure:"dir-mode"`
	FileMode Octal `yaml:"file-mode" mapstructure:"file-mode"`
}

// LoggingConfig configures the internal/logger facade.
type LoggingConfig struct {
	Severity LogSeverity  `yaml:"severity" mapstructure:"severity"`
	Format   string       `yaml:"format" mapstructure:"format"`
	FilePath ResolvedPath `yaml:"file-path" mapstructure:"file-path"`

	MaxFileSizeMB   int  `yaml:"max-file-size-mb" mapstructure:"max-file-size-mb"`
	BackupFileCount int  `yaml:"backup-file-count" mapstructure:"backup-file-count"`
	Compress        bool `yaml:"compress" mapstructure:"compress"`
}
