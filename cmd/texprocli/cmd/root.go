/*
Copyright © 2025 Bartłomiej Święcki (byo)

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cmd implements the texprocli command line tool (§6): build a
// NodeGraph one node/edge at a time, export/import it as JSON, and render a
// named output node to a PNG file.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "texprocli",
		Short: "Build, inspect and render live texture-processing graphs",
		Long: `texprocli operates on NodeGraph JSON files: add and wire nodes with the
'graph' subcommands, then drive the finished graph to completion and write a
named output node to a PNG file with 'render'.

The tool does not keep any state between invocations; each command reads its
input graph from a JSON file and, where it mutates the graph, writes the
result back to another JSON file.
`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	cmd.AddCommand(graphCmd())
	cmd.AddCommand(renderCmd())

	return cmd
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to rootCmd.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
