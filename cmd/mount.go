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

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseutil"
	"github.com/jacobsa/timeutil"
	"github.com/spf13/cobra"

	"github.com/katharostech/polyfs/cfg"
	"github.com/katharostech/polyfs/internal/fs"
	"github.com/katharostech/polyfs/internal/fuseadapter"
	"github.com/katharostech/polyfs/internal/logger"
	"github.com/katharostech/polyfs/kv"
	"github.com/katharostech/polyfs/kv/boltkv"
	"github.com/katharostech/polyfs/kv/memkv"
)

var readOnly bool

var mountCmd = &cobra.Command{
	Use:   "mount <mount-point>",
	Short: "Mount the configured key-value store at mount-point",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return runMount(c.Context(), args[0])
	},
}

func init() {
	mountCmd.Flags().BoolVar(&readOnly, "read-only", false, "mount the translator read-only (create/remove/setattr return EROFS)")
}

func runMount(ctx context.Context, mountPoint string) error {
	conf, err := cfg.Load(cfgFile)
	if err != nil {
		return err
	}

	if conf.Logging.FilePath != "" {
		if err := logger.InitLogFile(conf.Logging); err != nil {
			return err
		}
	} else {
		logger.SetLogFormat(conf.Logging.Format)
	}

	store, err := openStore(conf.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	translator := fs.New(store, timeutil.RealClock())
	if err := translator.Init(ctx); err != nil {
		return fmt.Errorf("initializing root inode: %w", err)
	}

	fileSystem := fuseadapter.New(translator,
		fuseadapter.Ownership{
			Uid: conf.Mount.Uid,
			Gid: conf.Mount.Gid,
		},
		fuseadapter.Modes{
			Dir:  os.FileMode(conf.Mount.DirMode),
			File: os.FileMode(conf.Mount.FileMode),
		})

	mountCfg := &fuse.MountConfig{
		FSName:   "polyfs",
		Subtype:  "polyfs",
		ReadOnly: readOnly,
	}

	logger.Infof("mounting polyfs at %s", mountPoint)
	mfs, err := fuse.Mount(mountPoint, fuseutil.NewFileSystemServer(fileSystem), mountCfg)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Infof("received shutdown signal, unmounting %s", mountPoint)
		if err := fuse.Unmount(mountPoint); err != nil {
			logger.Errorf("unmount %s: %v", mountPoint, err)
		}
	}()

	return mfs.Join(ctx)
}

func openStore(storeCfg cfg.StoreConfig) (kv.Store, error) {
	switch storeCfg.Backend {
	case cfg.BoltStoreBackend:
		return boltkv.Open(string(storeCfg.BoltPath))
	case cfg.MemoryStoreBackend:
		return memkv.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", storeCfg.Backend)
	}
}
