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
	"context"
	"image"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cinode/texpro/pkg/texpro/engine"
	"github.com/cinode/texpro/pkg/texpro/livegraph"
)

func renderCmd() *cobra.Command {
	var graphPath, outputName, out string
	var memoryThreshold int64
	var maxProcessingNodes int
	var srgb bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "render --graph <file> --output-name <name> --out <png>",
		Short: "Build a graph from a JSON file, await a named output node, write a PNG",
		Long: `render loads a NodeGraph JSON file, drives it to completion through a
TextureProcessor, waits for the output-gray/output-rgba endpoint node named
--output-name to become Clean, and writes its RGBA bytes as a PNG file.
`,
		Run: func(cmd *cobra.Command, args []string) {
			if graphPath == "" || outputName == "" || out == "" {
				cmd.Help()
				return
			}

			ng, err := loadGraph(graphPath)
			if err != nil {
				log.Fatal(err)
			}
			nodeID, ok := ng.EndpointID(outputName)
			if !ok {
				log.Fatalf("no endpoint node named %q", outputName)
			}

			var opts []engine.Option
			if memoryThreshold > 0 {
				opts = append(opts, engine.WithMemoryThreshold(memoryThreshold))
			}
			if maxProcessingNodes > 0 {
				opts = append(opts, engine.WithMaxProcessingNodes(maxProcessingNodes))
			}
			tp := engine.New(opts...)

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			tp.Start(ctx)
			defer tp.Close()

			// Auto-update: render has no per-node Request/Prioritise calls of its
			// own, so every Dirty node in the loaded graph is implicitly a
			// discovery candidate.
			lg := livegraph.NewFromGraph(ng, livegraph.WithAutoUpdate(true))
			tp.AddLiveGraph(lg)

			sd, err := tp.AwaitSlotData(ctx, lg, nodeID)
			if err != nil {
				log.Fatal(err)
			}

			var pixels []byte
			if srgb {
				pixels, err = sd.ToU8RGBASRGB()
			} else {
				pixels, err = sd.ToU8RGBA()
			}
			if err != nil {
				log.Fatal(err)
			}

			size := sd.Image.Size()
			img := image.NewNRGBA(image.Rect(0, 0, int(size.Width), int(size.Height)))
			copy(img.Pix, pixels)

			f, err := os.Create(out)
			if err != nil {
				log.Fatal(err)
			}
			defer f.Close()
			if err := png.Encode(f, img); err != nil {
				log.Fatal(err)
			}
		},
	}

	cmd.Flags().StringVar(&graphPath, "graph", "", "Source NodeGraph JSON file")
	cmd.Flags().StringVar(&outputName, "output-name", "", "Name of the output-gray/output-rgba endpoint to render")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Destination PNG file")
	cmd.Flags().Int64Var(&memoryThreshold, "memory-threshold", 0, "Resident buffer byte threshold (0 = default)")
	cmd.Flags().IntVar(&maxProcessingNodes, "max-processing-nodes", 0, "Admission limit (0 = number of CPUs)")
	cmd.Flags().BoolVar(&srgb, "srgb", false, "Encode R,G,B with the sRGB transfer function instead of linearly")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Maximum time to wait for the output to become Clean")

	return cmd
}
