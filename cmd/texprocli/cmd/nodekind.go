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
	"fmt"

	"github.com/cinode/texpro/pkg/texpro/graph"
)

var nodeKindNames = map[string]graph.NodeKind{
	"input-gray":       graph.KindInputGray,
	"input-rgba":       graph.KindInputRgba,
	"output-gray":      graph.KindOutputGray,
	"output-rgba":      graph.KindOutputRgba,
	"graph":            graph.KindGraph,
	"image-read":       graph.KindImageRead,
	"image-write":      graph.KindImageWrite,
	"embedded":         graph.KindEmbedded,
	"value":            graph.KindValue,
	"mix":              graph.KindMix,
	"height-to-normal": graph.KindHeightToNormal,
	"separate-rgba":    graph.KindSeparateRgba,
	"combine-rgba":     graph.KindCombineRgba,
}

func parseNodeKind(s string) (graph.NodeKind, error) {
	if k, ok := nodeKindNames[s]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

var mixTypeNames = map[string]graph.MixType{
	"add":      graph.MixAdd,
	"subtract": graph.MixSubtract,
	"multiply": graph.MixMultiply,
	"divide":   graph.MixDivide,
	"pow":      graph.MixPow,
}

func parseMixType(s string) (graph.MixType, error) {
	if m, ok := mixTypeNames[s]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("unknown mix type %q", s)
}

var resizeFilterNames = map[string]graph.ResizeFilter{
	"nearest":     graph.FilterNearest,
	"triangle":    graph.FilterTriangle,
	"catmullrom":  graph.FilterCatmullRom,
	"gaussian":    graph.FilterGaussian,
	"lanczos3":    graph.FilterLanczos3,
}

func parseResizeFilter(s string) (graph.ResizeFilter, error) {
	if f, ok := resizeFilterNames[s]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("unknown resize filter %q", s)
}

var resizePolicyNames = map[string]graph.ResizePolicyKind{
	"most-pixels":    graph.ResizeMostPixels,
	"least-pixels":   graph.ResizeLeastPixels,
	"largest-axes":   graph.ResizeLargestAxes,
	"smallest-axes":  graph.ResizeSmallestAxes,
	"specific-slot":  graph.ResizeSpecificSlot,
	"specific-size":  graph.ResizeSpecificSize,
}

func parseResizePolicy(s string) (graph.ResizePolicyKind, error) {
	if p, ok := resizePolicyNames[s]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("unknown resize policy %q", s)
}
