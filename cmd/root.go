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

// Package cmd implements the polyfs command-line tool: mount, inspect,
// and init subcommands wired up with spf13/cobra.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var cfgFile string

// Execute runs the polyfs CLI, returning any error the active subcommand
// produced.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

var rootCmd = &cobra.Command{
	Use:   "polyfs",
	Short: "Mount a key-value store as a POSIX directory tree",
	Long: `PolyFS is a userspace FUSE filesystem that projects a POSIX
directory tree onto an opaque key-value store. It translates namespace
operations — lookups, directory listings, attribute changes, creation
and removal — into reads and writes against that store; file content is
out of scope.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a polyfs YAML config file")
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(initCmd)
}
