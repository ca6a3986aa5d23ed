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

package kernel

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cinode/texpro/pkg/texpro/graph"
	"github.com/cinode/texpro/pkg/texpro/livegraph"
	"github.com/cinode/texpro/pkg/texpro/slotdata"
)

// runGraph instantiates the node's nested SubGraph as a fresh LiveGraph,
// feeds this node's inputs into the child's InputGray/InputRgba endpoints
// (slot id equals the child endpoint node's own id, §4.8), drives it to
// completion via the engine-supplied SubGraphRunner, and re-publishes the
// child's OutputGray/OutputRgba endpoints under this node's own identity.
func runGraph(ctx context.Context, in Input) ([]slotdata.SlotData, error) {
	sub := in.Node.Type.SubGraph
	if sub == nil {
		return nil, nil
	}
	if in.RunSubGraph == nil {
		return nil, nil
	}

	// Auto-update: a nested sub-graph has no caller able to Request/Prioritise
	// its internal nodes one by one, so every Dirty node is implicitly a
	// discovery candidate (§4.8).
	child := livegraph.NewFromGraph(sub, livegraph.WithAutoUpdate(true))
	for _, inputID := range sub.ExternalInputIDs() {
		if sd, ok := in.Slots[graph.SlotID(inputID)]; ok {
			child.SetExternalInput(inputID, sd)
		}
	}

	if err := in.RunSubGraph(ctx, child); err != nil {
		return nil, err
	}

	outputIDs := sub.ExternalOutputIDs()
	results := make([]slotdata.SlotData, len(outputIDs))
	filled := make([]bool, len(outputIDs))

	g, _ := errgroup.WithContext(ctx)
	for i, outputID := range outputIDs {
		i, outputID := i, outputID
		g.Go(func() error {
			datas := child.SlotDatas(outputID)
			if len(datas) == 0 {
				return nil
			}
			sd := datas[0]
			sd.NodeID = in.NodeID
			sd.SlotID = graph.SlotID(outputID)
			results[i], filled[i] = sd, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]slotdata.SlotData, 0, len(outputIDs))
	for i, ok := range filled {
		if ok {
			out = append(out, results[i])
		}
	}
	return out, nil
}
