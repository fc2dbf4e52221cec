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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/katharostech/polyfs/cfg"
)

var initOutPath string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default polyfs config file",
	RunE: func(c *cobra.Command, args []string) error {
		return runInit()
	},
}

func init() {
	initCmd.Flags().StringVar(&initOutPath, "out", "polyfs.yaml", "path to write the default config to")
}

func runInit() error {
	data, err := yaml.Marshal(cfg.Default())
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}

	if err := os.WriteFile(initOutPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", initOutPath, err)
	}

	fmt.Printf("wrote default config to %s\n", initOutPath)
	return nil
}
