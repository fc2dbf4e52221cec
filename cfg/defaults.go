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

package cfg

// Default returns the configuration used when no config file is supplied:
// a durable on-disk store, matching the original CLI's default of a
// file-backed store over an in-memory one, backed here by bbolt rather
// than the original's sqlite.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend:  BoltStoreBackend,
			BoltPath: "polyfs.db",
		},
		Mount: MountConfig{
			// Zero modes honor the kernel-supplied mode on each create
			// rather than forcing a fixed one.
			DirMode:  0,
			FileMode: 0,
		},
		Logging: LoggingConfig{
			Severity:        InfoLogSeverity,
			Format:          "text",
			MaxFileSizeMB:   512,
			BackupFileCount: 10,
			Compress:        false,
		},
	}
}
