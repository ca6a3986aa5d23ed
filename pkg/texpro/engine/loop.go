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

package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cinode/texpro/pkg/texpro/buffer"
	"github.com/cinode/texpro/pkg/texpro/errs"
	"github.com/cinode/texpro/pkg/texpro/graph"
	"github.com/cinode/texpro/pkg/texpro/kernel"
	"github.com/cinode/texpro/pkg/texpro/livegraph"
	"github.com/cinode/texpro/pkg/texpro/scheduler"
	"github.com/cinode/texpro/pkg/texpro/slotdata"
)

// runLoop is the coordinator: drain completions, discover processable
// nodes across every registered live graph, propagate priorities, admit
// through the scheduler, and dispatch newly admitted nodes to workers.
// Sleeps tickInterval whenever a pass admits nothing, bounding CPU use
// while idle (§4.4).
func (tp *TextureProcessor) runLoop(ctx context.Context) {
	defer close(tp.loopDone)

	for {
		if ctx.Err() != nil || tp.shutdown.Load() {
			return
		}

		tp.drainCompletions()
		if tp.shutdown.Load() {
			return
		}

		admitted := tp.tick(ctx)
		if admitted == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(tp.tickInterval):
			}
		}
	}
}

// drainCompletions applies every completion currently buffered on the
// channel without blocking once it runs dry.
func (tp *TextureProcessor) drainCompletions() {
	for {
		select {
		case c := <-tp.completions:
			tp.applyCompletion(c)
		default:
			return
		}
	}
}

// applyCompletion folds one finished kernel run back into its LiveGraph
// (§4.4 step 1). A canceled kernel reverts to Dirty without storing
// anything; any other error is treated as fatal and raises shutdown. A
// node that went ProcessingDirty while it ran discards its (now stale)
// result and goes back to Dirty rather than Clean.
func (tp *TextureProcessor) applyCompletion(c completion) {
	if c.err != nil {
		if errors.Is(c.err, errs.ErrCanceled) {
			_ = c.lg.ForceState(c.nodeID, livegraph.StateDirty)
			return
		}
		tp.log.Error("node kernel failed", slog.String("node", c.nodeID.String()), slog.Any("err", c.err))
		tp.shutdown.Store(true)
		return
	}

	state, err := c.lg.State(c.nodeID)
	if err != nil {
		return
	}
	if state == livegraph.StateProcessingDirty {
		_ = c.lg.ForceState(c.nodeID, livegraph.StateDirty)
		return
	}

	c.lg.ReplaceSlotDatas(c.nodeID, c.data)
	for _, container := range containersOf(c.data) {
		tp.cache.Push(container)
	}
	_ = c.lg.ForceState(c.nodeID, livegraph.StateClean)

	if !c.lg.UseCache() {
		tp.evictSatisfiedParents(c.lg, c.nodeID)
	}
}

// evictSatisfiedParents drops the stored output of any parent (upstream
// dependency) of nodeID whose every child (downstream consumer) has
// reached Clean or Processing, since no future consumer can still need it
// under a use_cache=false retention policy (§4.4 step 1).
func (tp *TextureProcessor) evictSatisfiedParents(lg *livegraph.LiveGraph, nodeID graph.NodeID) {
	g := lg.Graph()
	for _, parent := range g.Parents(nodeID) {
		satisfied := true
		for _, child := range g.Children(parent) {
			state, err := lg.State(child)
			if err != nil {
				continue
			}
			if state != livegraph.StateClean && state != livegraph.StateProcessing {
				satisfied = false
				break
			}
		}
		if satisfied {
			lg.EvictSlotDatas(parent)
		}
	}
}

// tick discovers this pass's processable nodes across every registered
// live graph, propagates priorities, submits the candidates to the shared
// scheduler, and dispatches whatever it admits. Returns the number of
// nodes dispatched.
func (tp *TextureProcessor) tick(ctx context.Context) int {
	var candidates []scheduler.ProcessPack

	for _, lg := range tp.liveGraphsSnapshot() {
		seen := make(map[graph.NodeID]struct{})
		for _, requested := range lg.DiscoverCandidates() {
			for _, id := range lg.ClosestProcessable(requested) {
				seen[id] = struct{}{}
			}
		}

		for id := range seen {
			state, err := lg.State(id)
			if err != nil {
				continue
			}
			if state != livegraph.StateDirty && state != livegraph.StateRequested && state != livegraph.StatePrioritised {
				continue
			}
			cell := lg.PriorityCell(id)
			if cell == nil {
				continue
			}
			candidates = append(candidates, scheduler.ProcessPack{NodeID: id, Priority: cell, LiveGraph: lg})
		}

		lg.UpdatePriorities()
	}

	admitted, err := tp.manager.Update(candidates)
	if err != nil {
		tp.log.Error("scheduler update failed", slog.Any("err", err))
		return 0
	}
	for _, pp := range admitted {
		tp.dispatch(ctx, pp)
	}
	return len(admitted)
}

// dispatch marks pp's node Processing, resolves its inputs from the
// incoming edges of its LiveGraph (an edge whose source has no stored
// SlotData yields a 1x1 black buffer, §4.4 step 4; a slot with no edge is
// left absent), and runs its kernel on the bounded
// worker pool, reporting the result back over the completions channel.
func (tp *TextureProcessor) dispatch(ctx context.Context, pp scheduler.ProcessPack) {
	lg := pp.LiveGraph
	nodeID := pp.NodeID

	node, err := lg.Node(nodeID)
	if err != nil {
		return
	}
	if err := lg.SetState(nodeID, livegraph.StateProcessing); err != nil {
		return
	}

	slots := make(map[graph.SlotID]slotdata.SlotData)
	for _, e := range lg.IncomingEdges(nodeID) {
		sd, ok := lg.SlotDataFor(e.OutputNode, e.OutputSlot)
		if !ok {
			sd = slotdata.SlotData{Image: slotdata.NewValueImage(0)}
		}
		slots[e.InputSlot] = sd
	}
	switch node.Type.Kind {
	case graph.KindInputGray, graph.KindInputRgba:
		if sd, ok := lg.ExternalInput(nodeID); ok {
			slots[0] = sd
		}
	}

	in := kernel.Input{
		NodeID:           nodeID,
		Node:             *node,
		Slots:            slots,
		EmbeddedSlotData: lg.EmbeddedSlotData,
		RunSubGraph:      tp.runSubGraph,
		Cancel:           lg.CancelFlag(nodeID),
		Shutdown:         tp.shutdown,
	}

	tp.workers.Go(func() error {
		data, err := kernel.Run(ctx, in)
		tp.completions <- completion{lg: lg, nodeID: nodeID, data: data, err: err}
		return nil
	})
}

// runSubGraph registers a nested LiveGraph with this processor so the
// coordinator loop drives it exactly like any top-level graph, then blocks
// until every one of its external outputs reaches Clean (§4.8). It is
// injected into kernel.Input as kernel.SubGraphRunner, keeping package
// kernel free of any dependency on package engine.
func (tp *TextureProcessor) runSubGraph(ctx context.Context, child *livegraph.LiveGraph) error {
	tp.AddLiveGraph(child)
	defer tp.RemoveLiveGraph(child)

	outputIDs := child.Graph().ExternalOutputIDs()
	for {
		if tp.shutdown.Load() {
			return errs.ErrCanceled
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		done := true
		for _, id := range outputIDs {
			state, err := child.State(id)
			if err != nil {
				return err
			}
			if state != livegraph.StateClean {
				done = false
				break
			}
		}
		if done {
			return nil
		}
		time.Sleep(tp.tickInterval)
	}
}

// containersOf collects every buffer.Container backing a batch of SlotData
// so the coordinator can hand them to the shared transient buffer cache
// (§4.6) right after they are produced.
func containersOf(datas []slotdata.SlotData) []*buffer.Container {
	var out []*buffer.Container
	for _, sd := range datas {
		if sd.Image.IsRGBA() {
			for _, c := range sd.Image.RGBA {
				if c != nil {
					out = append(out, c)
				}
			}
			continue
		}
		if sd.Image.Gray != nil {
			out = append(out, sd.Image.Gray)
		}
	}
	return out
}
