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

package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/cinode/texpro/pkg/texpro/graph"
)

func graphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Create and edit a NodeGraph JSON file",
	}
	cmd.AddCommand(graphNewCmd())
	cmd.AddCommand(graphAddNodeCmd())
	cmd.AddCommand(graphConnectCmd())
	cmd.AddCommand(graphExportCmd())
	cmd.AddCommand(graphImportCmd())
	return cmd
}

func graphNewCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "new --out <file>",
		Short: "Create an empty NodeGraph JSON file",
		Run: func(cmd *cobra.Command, args []string) {
			if out == "" {
				cmd.Help()
				return
			}
			if err := saveGraph(out, graph.New()); err != nil {
				log.Fatal(err)
			}
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination JSON file")
	return cmd
}

func graphAddNodeCmd() *cobra.Command {
	var in, out, kind, name, path, mix, resizePolicy, resizeFilter string
	var value float32
	var embed, resizeSlot, resizeWidth, resizeHeight uint32

	cmd := &cobra.Command{
		Use:   "add-node --in <file> --out <file> --kind <kind>",
		Short: "Add a node to a NodeGraph JSON file, printing its assigned id",
		Long: `Kind is one of: input-gray, input-rgba, output-gray, output-rgba, graph,
image-read, image-write, embedded, value, mix, height-to-normal, separate-rgba,
combine-rgba.
`,
		Run: func(cmd *cobra.Command, args []string) {
			if in == "" || out == "" || kind == "" {
				cmd.Help()
				return
			}
			ng, err := loadGraph(in)
			if err != nil {
				log.Fatal(err)
			}

			nodeKind, err := parseNodeKind(kind)
			if err != nil {
				log.Fatal(err)
			}
			node := graph.Node{Type: graph.NodeType{
				Kind:  nodeKind,
				Name:  name,
				Path:  path,
				Embed: graph.EmbedID(embed),
				Value: value,
			}}
			if mix != "" {
				m, err := parseMixType(mix)
				if err != nil {
					log.Fatal(err)
				}
				node.Type.Mix = m
			}
			if resizePolicy != "" {
				p, err := parseResizePolicy(resizePolicy)
				if err != nil {
					log.Fatal(err)
				}
				node.ResizePolicy = graph.ResizePolicy{
					Kind:         p,
					SpecificSlot: graph.SlotID(resizeSlot),
					Width:        resizeWidth,
					Height:       resizeHeight,
				}
			}
			if resizeFilter != "" {
				f, err := parseResizeFilter(resizeFilter)
				if err != nil {
					log.Fatal(err)
				}
				node.ResizeFilter = f
			}

			id, err := ng.AddNode(node)
			if err != nil {
				log.Fatal(err)
			}
			if err := saveGraph(out, ng); err != nil {
				log.Fatal(err)
			}
			fmt.Println(id)
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Source JSON file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination JSON file")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Node kind")
	cmd.Flags().StringVar(&name, "name", "", "Endpoint name (input-gray/rgba, output-gray/rgba)")
	cmd.Flags().StringVar(&path, "path", "", "File path (image-read/image-write)")
	cmd.Flags().Float32Var(&value, "value", 0, "Constant value (value nodes)")
	cmd.Flags().Uint32Var(&embed, "embed", 0, "Embed slot id (embedded nodes)")
	cmd.Flags().StringVar(&mix, "mix", "", "Mix operator: add, subtract, multiply, divide, pow")
	cmd.Flags().StringVar(&resizePolicy, "resize-policy", "", "most-pixels, least-pixels, largest-axes, smallest-axes, specific-slot, specific-size")
	cmd.Flags().StringVar(&resizeFilter, "resize-filter", "", "nearest, triangle, catmullrom, gaussian, lanczos3")
	cmd.Flags().Uint32Var(&resizeSlot, "resize-slot", 0, "Slot id for resize-policy=specific-slot")
	cmd.Flags().Uint32Var(&resizeWidth, "resize-width", 0, "Width for resize-policy=specific-size")
	cmd.Flags().Uint32Var(&resizeHeight, "resize-height", 0, "Height for resize-policy=specific-size")
	return cmd
}

func graphConnectCmd() *cobra.Command {
	var in, out string
	var outputNode, inputNode uint32
	var outputSlot, inputSlot uint32

	cmd := &cobra.Command{
		Use:   "connect --in <file> --out <file>",
		Short: "Wire an edge between two nodes",
		Run: func(cmd *cobra.Command, args []string) {
			if in == "" || out == "" {
				cmd.Help()
				return
			}
			ng, err := loadGraph(in)
			if err != nil {
				log.Fatal(err)
			}
			_, err = ng.Connect(
				graph.NodeID(outputNode), graph.SlotID(outputSlot),
				graph.NodeID(inputNode), graph.SlotID(inputSlot),
			)
			if err != nil {
				log.Fatal(err)
			}
			if err := saveGraph(out, ng); err != nil {
				log.Fatal(err)
			}
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Source JSON file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination JSON file")
	cmd.Flags().Uint32Var(&outputNode, "output-node", 0, "Output node id")
	cmd.Flags().Uint32Var(&outputSlot, "output-slot", 0, "Output slot id")
	cmd.Flags().Uint32Var(&inputNode, "input-node", 0, "Input node id")
	cmd.Flags().Uint32Var(&inputSlot, "input-slot", 0, "Input slot id")
	return cmd
}

func graphExportCmd() *cobra.Command {
	var in string
	var withFingerprint bool

	cmd := &cobra.Command{
		Use:   "export --in <file>",
		Short: "Print a NodeGraph's canonical JSON, optionally with its fingerprint",
		Run: func(cmd *cobra.Command, args []string) {
			if in == "" {
				cmd.Help()
				return
			}
			ng, err := loadGraph(in)
			if err != nil {
				log.Fatal(err)
			}
			data, err := json.MarshalIndent(ng, "", "  ")
			if err != nil {
				log.Fatal(err)
			}
			os.Stdout.Write(data)
			fmt.Println()
			if withFingerprint {
				fp, err := ng.Fingerprint()
				if err != nil {
					log.Fatal(err)
				}
				fmt.Println(fp)
			}
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "Source JSON file")
	cmd.Flags().BoolVar(&withFingerprint, "fingerprint", false, "Also print the content fingerprint")
	return cmd
}

func graphImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a NodeGraph JSON file and print a summary",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ng, err := loadGraph(args[0])
			if err != nil {
				log.Fatal(err)
			}
			fp, err := ng.Fingerprint()
			if err != nil {
				log.Fatal(err)
			}
			fmt.Printf("nodes: %d\n", len(ng.Nodes()))
			fmt.Printf("edges: %d\n", len(ng.Edges()))
			fmt.Printf("fingerprint: %s\n", fp)
		},
	}
	return cmd
}
