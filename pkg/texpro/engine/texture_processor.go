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

// Package engine drives one or more LiveGraph instances towards Clean: the
// coordinator loop (§4.4) discovers processable nodes, propagates
// priorities, admits work through the scheduler, dispatches node kernels on
// a bounded worker pool, and folds completions back into each LiveGraph
// under its own lock. TextureProcessor is the owning handle a caller holds;
// shutdown is scoped to one TextureProcessor. Nested Graph kernels share
// their parent's TextureProcessor rather than spinning up a new one (§4.8).
package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cinode/texpro/pkg/texpro/buffer"
	"github.com/cinode/texpro/pkg/texpro/errs"
	"github.com/cinode/texpro/pkg/texpro/graph"
	"github.com/cinode/texpro/pkg/texpro/livegraph"
	"github.com/cinode/texpro/pkg/texpro/scheduler"
	"github.com/cinode/texpro/pkg/texpro/slotdata"
)

const defaultMemoryThreshold = 1 << 30 // 1 GiB resident buffer budget, §4.6

// Option configures a TextureProcessor at construction time.
type Option func(*TextureProcessor)

// WithMemoryThreshold sets the resident-buffer byte threshold enforced by
// the shared transient buffer cache (§4.6).
func WithMemoryThreshold(bytes int64) Option {
	return func(tp *TextureProcessor) { tp.cache.SetThreshold(bytes) }
}

// WithMaxProcessingNodes overrides the scheduler's admission limit, which
// otherwise defaults to the number of logical CPUs (§4.5).
func WithMaxProcessingNodes(n int) Option {
	return func(tp *TextureProcessor) {
		tp.manager.MaxCount = n
		tp.workers.SetLimit(n)
	}
}

// WithLogger sets the structured logger used for coordinator-loop
// diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(tp *TextureProcessor) { tp.log = log }
}

// WithTickInterval overrides the coordinator loop's idle sleep (default
// 1ms, bounding CPU use while no work is admitted, §4.4).
func WithTickInterval(d time.Duration) Option {
	return func(tp *TextureProcessor) { tp.tickInterval = d }
}

// TextureProcessor owns a shared buffer cache, admission scheduler and
// coordinator loop shared by every LiveGraph registered with it (§4.7).
type TextureProcessor struct {
	mu         sync.RWMutex
	liveGraphs []*livegraph.LiveGraph

	cache    *buffer.Cache
	manager  *scheduler.ProcessPackManager
	shutdown *atomic.Bool
	log      *slog.Logger

	tickInterval time.Duration
	workers      *errgroup.Group
	completions  chan completion

	startOnce sync.Once
	closeOnce sync.Once
	loopDone  chan struct{}
}

// completion is one kernel's finished (or failed, or canceled) run, fed back
// to the coordinator loop over a channel rather than mutating the
// LiveGraph directly from the worker goroutine (§4.4 step 1).
type completion struct {
	lg     *livegraph.LiveGraph
	nodeID graph.NodeID
	data   []slotdata.SlotData
	err    error
}

// New creates a TextureProcessor with its buffer cache and scheduler ready.
// Call Start to launch the coordinator loop.
func New(opts ...Option) *TextureProcessor {
	shutdown := &atomic.Bool{}
	workers := &errgroup.Group{}
	manager := scheduler.New()
	workers.SetLimit(manager.MaxCount)

	tp := &TextureProcessor{
		shutdown:     shutdown,
		cache:        buffer.NewCache(defaultMemoryThreshold, shutdown, nil),
		manager:      manager,
		log:          slog.Default(),
		tickInterval: time.Millisecond,
		workers:      workers,
		completions:  make(chan completion, 256),
		loopDone:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(tp)
	}
	return tp
}

// NewLiveGraph creates an empty LiveGraph and registers it with this
// processor.
func (tp *TextureProcessor) NewLiveGraph(opts ...livegraph.Option) *livegraph.LiveGraph {
	lg := livegraph.New(opts...)
	tp.AddLiveGraph(lg)
	return lg
}

// AddLiveGraph registers an already-constructed LiveGraph with this
// processor, e.g. one rebuilt from a persisted NodeGraph.
func (tp *TextureProcessor) AddLiveGraph(lg *livegraph.LiveGraph) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.liveGraphs = append(tp.liveGraphs, lg)
}

// RemoveLiveGraph unregisters lg, e.g. once a nested sub-graph instantiation
// has finished and its outputs have been collected (§4.8).
func (tp *TextureProcessor) RemoveLiveGraph(lg *livegraph.LiveGraph) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	for i, g := range tp.liveGraphs {
		if g == lg {
			tp.liveGraphs = append(tp.liveGraphs[:i], tp.liveGraphs[i+1:]...)
			return
		}
	}
}

// liveGraphsSnapshot returns a stable slice of the currently registered live
// graphs for one coordinator tick to range over.
func (tp *TextureProcessor) liveGraphsSnapshot() []*livegraph.LiveGraph {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	out := make([]*livegraph.LiveGraph, len(tp.liveGraphs))
	copy(out, tp.liveGraphs)
	return out
}

// Start launches the coordinator loop and the buffer cache's maintenance
// loop, each in its own goroutine. Calling Start more than once is a no-op.
func (tp *TextureProcessor) Start(ctx context.Context) {
	tp.startOnce.Do(func() {
		go tp.cache.Run(10 * time.Millisecond)
		go tp.runLoop(ctx)
	})
}

// Close signals shutdown, waits for the coordinator loop and every
// in-flight kernel worker to return.
func (tp *TextureProcessor) Close() error {
	var err error
	tp.closeOnce.Do(func() {
		tp.shutdown.Store(true)
		<-tp.loopDone
		err = tp.workers.Wait()
	})
	return err
}

// AwaitSlotData prioritises nodeID so it is scheduled ahead of merely
// Requested work, then blocks until lg reports it Clean, and returns the
// first SlotData stored for it (§4.7); there is no slot selection, so other
// output slots of a multi-output node are not returned. It returns early if
// ctx is done.
func (tp *TextureProcessor) AwaitSlotData(ctx context.Context, lg *livegraph.LiveGraph, nodeID graph.NodeID) (slotdata.SlotData, error) {
	if err := lg.Prioritise(nodeID); err != nil {
		return slotdata.SlotData{}, err
	}

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		state, err := lg.State(nodeID)
		if err != nil {
			return slotdata.SlotData{}, err
		}
		if state == livegraph.StateClean {
			datas := lg.SlotDatas(nodeID)
			if len(datas) == 0 {
				return slotdata.SlotData{}, errs.ErrNoSlotData
			}
			return datas[0], nil
		}

		select {
		case <-ctx.Done():
			return slotdata.SlotData{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// AwaitBufferRGBA is AwaitSlotData followed by a linear RGBA byte encoding
// (§6), the shape most callers (e.g. the render CLI command) want directly.
func (tp *TextureProcessor) AwaitBufferRGBA(ctx context.Context, lg *livegraph.LiveGraph, nodeID graph.NodeID) ([]byte, error) {
	sd, err := tp.AwaitSlotData(ctx, lg, nodeID)
	if err != nil {
		return nil, err
	}
	return sd.ToU8RGBA()
}
