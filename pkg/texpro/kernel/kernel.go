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

// Package kernel holds the per-node-kind processing functions (§4.8): pure,
// given a resolved set of input SlotData, they produce the node's output
// SlotData or a sentinel error. Dispatch is a single switch on NodeKind
// (§9), never a virtual method per node type.
package kernel

import (
	"context"
	"sync/atomic"

	"github.com/cinode/texpro/pkg/texpro/errs"
	"github.com/cinode/texpro/pkg/texpro/graph"
	"github.com/cinode/texpro/pkg/texpro/livegraph"
	"github.com/cinode/texpro/pkg/texpro/slotdata"
)

// SubGraphRunner drives a nested LiveGraph to completion, supplied by the
// engine so the Graph kernel can recurse without this package importing the
// engine package (which itself imports kernel to dispatch).
type SubGraphRunner func(ctx context.Context, lg *livegraph.LiveGraph) error

// Input is everything a kernel needs to produce a node's outputs.
type Input struct {
	NodeID graph.NodeID
	Node   graph.Node

	// Slots maps this node's input slot id to the SlotData currently
	// feeding it, already resized to a common size per the node's
	// ResizePolicy/ResizeFilter. A slot with no connected edge is absent.
	Slots map[graph.SlotID]slotdata.SlotData

	// EmbeddedSlotData resolves a KindEmbedded node's backing data.
	EmbeddedSlotData func(graph.EmbedID) (slotdata.SlotData, error)

	// RunSubGraph executes a KindGraph node's nested LiveGraph.
	RunSubGraph SubGraphRunner

	Cancel   *atomic.Bool
	Shutdown *atomic.Bool
}

// cancelled reports whether either the node's own cancel flag or the global
// shutdown flag has been raised (§5).
func (in Input) cancelled() bool {
	return (in.Cancel != nil && in.Cancel.Load()) || (in.Shutdown != nil && in.Shutdown.Load())
}

// Run dispatches to the kernel matching in.Node.Type.Kind and resizes
// mismatched inputs to a common size first, per the node's ResizePolicy.
func Run(ctx context.Context, in Input) ([]slotdata.SlotData, error) {
	if in.cancelled() {
		return nil, errs.ErrCanceled
	}

	resized, err := resizeInputs(in.Slots, in.Node.ResizePolicy, in.Node.ResizeFilter)
	if err != nil {
		return nil, err
	}
	in.Slots = resized

	switch in.Node.Type.Kind {
	case graph.KindValue:
		return runValue(in)
	case graph.KindMix:
		return runMix(in)
	case graph.KindCombineRgba:
		return runCombineRgba(in)
	case graph.KindSeparateRgba:
		return runSeparateRgba(in)
	case graph.KindHeightToNormal:
		return runHeightToNormal(in)
	case graph.KindEmbedded:
		return runEmbedded(in)
	case graph.KindImageRead:
		return runImageRead(in)
	case graph.KindImageWrite:
		return runImageWrite(in)
	case graph.KindGraph:
		return runGraph(ctx, in)
	case graph.KindInputGray, graph.KindInputRgba, graph.KindOutputGray, graph.KindOutputRgba:
		return runPassthrough(in)
	default:
		return nil, errs.ErrInvalidBufferCount
	}
}

// runPassthrough handles InputGray/InputRgba and OutputGray/OutputRgba
// endpoint nodes alike: whatever is staged on slot 0 (an external input for
// an Input node, the upstream edge's data for an Output node) is republished
// under this node's own identity on slot 0, so either endpoint's value is
// observable the same way any other node's output is (§4.8).
func runPassthrough(in Input) ([]slotdata.SlotData, error) {
	if sd, ok := in.Slots[0]; ok {
		sd.NodeID = in.NodeID
		sd.SlotID = 0
		return []slotdata.SlotData{sd}, nil
	}
	return nil, nil
}
