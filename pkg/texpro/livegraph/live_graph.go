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

package livegraph

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cinode/texpro/pkg/texpro/errs"
	"github.com/cinode/texpro/pkg/texpro/graph"
	"github.com/cinode/texpro/pkg/texpro/priority"
	"github.com/cinode/texpro/pkg/texpro/slotdata"
)

// Option configures a LiveGraph at construction time, following the
// teacher's functional-options idiom (pkg/internal/utilities/httpserver).
type Option func(*LiveGraph)

// WithUseCache sets the retention policy: when false, intermediates are
// evicted as soon as all of their consumers are at least Processing.
func WithUseCache(v bool) Option {
	return func(g *LiveGraph) { g.useCache = v }
}

// WithAutoUpdate sets discovery mode: when true every non-clean node is
// implicitly requested; when false only Requested/Prioritised nodes are
// discovered.
func WithAutoUpdate(v bool) Option {
	return func(g *LiveGraph) { g.autoUpdate = v }
}

// LiveGraph is one editable NodeGraph instance plus everything needed to
// drive it towards Clean: per-node state, priority propagation, cancel
// flags, produced SlotData, embedded/external inputs and a change log
// (§2.4, §4.3). It is guarded by a single sync.RWMutex (§5); kernel bodies
// never hold this lock while they run.
type LiveGraph struct {
	mu sync.RWMutex

	graph      *graph.NodeGraph
	states     map[graph.NodeID]State
	cancels    map[graph.NodeID]*atomic.Bool
	slotData   map[graph.NodeID][]slotdata.SlotData
	embedded   map[graph.EmbedID]slotdata.SlotData
	external   map[graph.NodeID]slotdata.SlotData
	changed    map[graph.NodeID]struct{}
	propagator *priority.Propagator

	useCache   bool
	autoUpdate bool
}

// New creates an empty LiveGraph.
func New(opts ...Option) *LiveGraph {
	g := &LiveGraph{
		graph:      graph.New(),
		states:     make(map[graph.NodeID]State),
		cancels:    make(map[graph.NodeID]*atomic.Bool),
		slotData:   make(map[graph.NodeID][]slotdata.SlotData),
		embedded:   make(map[graph.EmbedID]slotdata.SlotData),
		external:   make(map[graph.NodeID]slotdata.SlotData),
		changed:    make(map[graph.NodeID]struct{}),
		propagator: priority.NewPropagator(),
		useCache:   true,
		autoUpdate: false,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewFromGraph wraps an existing NodeGraph (e.g. a KindGraph node's static
// SubGraph definition) as a freshly-Dirty LiveGraph instance. Used to
// instantiate nested sub-graph execution (§4.8): the static graph is never
// mutated in place, each instantiation gets its own states/priority/cancel
// bookkeeping.
func NewFromGraph(ng *graph.NodeGraph, opts ...Option) *LiveGraph {
	g := New(opts...)
	g.graph = ng
	for _, n := range ng.Nodes() {
		g.states[n.ID] = StateDirty
		g.cancels[n.ID] = new(atomic.Bool)
		g.propagator.Register(n.ID, priority.NewCell(0))
	}
	return g
}

// UseCache reports this live graph's retention policy.
func (g *LiveGraph) UseCache() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.useCache
}

// AutoUpdate reports this live graph's discovery mode.
func (g *LiveGraph) AutoUpdate() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.autoUpdate
}

// AddNode inserts a node, initializing it Dirty with a fresh priority cell
// and cancel flag.
func (g *LiveGraph) AddNode(n graph.Node) (graph.NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := g.graph.AddNode(n)
	if err != nil {
		return 0, err
	}
	g.states[id] = StateDirty
	g.cancels[id] = new(atomic.Bool)
	g.propagator.Register(id, priority.NewCell(0))
	g.markChangedLocked(id)
	return id, nil
}

// RemoveNode deletes a node and every edge touching it.
func (g *LiveGraph) RemoveNode(id graph.NodeID) ([]graph.Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed, err := g.graph.RemoveNode(id)
	if err != nil {
		return nil, err
	}
	delete(g.states, id)
	delete(g.cancels, id)
	delete(g.slotData, id)
	g.propagator.Unregister(id)
	g.markChangedLocked(id)
	for _, e := range removed {
		g.dirtyLocked(e.InputNode)
		g.setCancelLocked(e.InputNode)
		if cell := g.propagator.Cell(e.OutputNode); cell != nil {
			cell.Touch()
		}
	}
	return removed, nil
}

// Connect wires an edge and dirties the affected descendants, touches the
// output node's priority, and cancels any in-flight work on the input node
// (§4.3).
func (g *LiveGraph) Connect(outNode graph.NodeID, outSlot graph.SlotID, inNode graph.NodeID, inSlot graph.SlotID) (graph.Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, err := g.graph.Connect(outNode, outSlot, inNode, inSlot)
	if err != nil {
		return graph.Edge{}, err
	}
	g.dirtyLocked(inNode)
	if cell := g.propagator.Cell(outNode); cell != nil {
		cell.Touch()
	}
	g.setCancelLocked(inNode)
	return e, nil
}

// DisconnectSlot removes edges occupying a slot, dirtying the implicated
// input nodes, touching the output nodes' priority, and cancelling any
// in-flight work on the input nodes (§4.3).
func (g *LiveGraph) DisconnectSlot(node graph.NodeID, side graph.Side, slot graph.SlotID) ([]graph.Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed, err := g.graph.DisconnectSlot(node, side, slot)
	if err != nil {
		return nil, err
	}
	for _, e := range removed {
		g.dirtyLocked(e.InputNode)
		g.setCancelLocked(e.InputNode)
		if cell := g.propagator.Cell(e.OutputNode); cell != nil {
			cell.Touch()
		}
	}
	return removed, nil
}

func (g *LiveGraph) setCancelLocked(id graph.NodeID) {
	if c := g.cancels[id]; c != nil {
		c.Store(true)
	}
}

// CancelFlag returns the shared cancel flag for id, or nil if unknown.
func (g *LiveGraph) CancelFlag(id graph.NodeID) *atomic.Bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cancels[id]
}

// PriorityCell returns the shared priority cell for id, or nil if unknown.
func (g *LiveGraph) PriorityCell(id graph.NodeID) *priority.Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.propagator.Cell(id)
}

// UpdatePriorities re-propagates priorities across the whole graph (§4.2).
// The engine calls this once per live graph, per tick, before admission.
func (g *LiveGraph) UpdatePriorities() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.propagator.Update(g.graph)
}

// State returns the current lifecycle state of id.
func (g *LiveGraph) State(id graph.NodeID) (State, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.states[id]
	if !ok {
		return 0, graph.ErrInvalidNodeID
	}
	return s, nil
}

// Node returns the underlying node definition for id.
func (g *LiveGraph) Node(id graph.NodeID) (*graph.Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.graph.Node(id)
}

// Request promotes a Dirty node to Requested; a no-op in any other state
// (§4.3, Open Question resolved in DESIGN.md).
func (g *LiveGraph) Request(id graph.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.states[id]; !ok {
		return graph.ErrInvalidNodeID
	}
	if g.states[id] == StateDirty {
		g.states[id] = StateRequested
		g.markChangedLocked(id)
	}
	return nil
}

// Prioritise promotes a Dirty or Requested node to Prioritised.
func (g *LiveGraph) Prioritise(id graph.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.states[id]
	if !ok {
		return graph.ErrInvalidNodeID
	}
	if s == StateDirty || s == StateRequested {
		g.states[id] = StatePrioritised
		g.markChangedLocked(id)
	}
	return nil
}

// SetState applies s to id. Setting Dirty transitively dirties every
// recursive child, special-casing a Processing child to ProcessingDirty
// rather than Dirty (§4.3).
func (g *LiveGraph) SetState(id graph.NodeID, s State) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.states[id]; !ok {
		return graph.ErrInvalidNodeID
	}
	if s == StateDirty {
		g.dirtyLocked(id)
		return nil
	}
	g.states[id] = s
	g.markChangedLocked(id)
	return nil
}

// ForceState unconditionally assigns s to id, bypassing the
// ProcessingDirty fix-up. Used to exit ProcessingDirty back to Dirty once a
// worker reports a cancellation.
func (g *LiveGraph) ForceState(id graph.NodeID, s State) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.states[id]; !ok {
		return graph.ErrInvalidNodeID
	}
	g.states[id] = s
	g.markChangedLocked(id)
	return nil
}

// dirtyLocked applies the Dirty (or ProcessingDirty, if currently
// Processing) transition to id and every transitive child.
func (g *LiveGraph) dirtyLocked(id graph.NodeID) {
	g.applyDirtyLocked(id)
	for _, child := range g.graph.ChildrenRecursive(id) {
		g.applyDirtyLocked(child)
	}
}

func (g *LiveGraph) applyDirtyLocked(id graph.NodeID) {
	cur, ok := g.states[id]
	if !ok {
		return
	}
	next := StateDirty
	if cur == StateProcessing {
		next = StateProcessingDirty
	}
	if next != cur {
		g.states[id] = next
		g.markChangedLocked(id)
	}
}

func (g *LiveGraph) markChangedLocked(id graph.NodeID) {
	g.changed[id] = struct{}{}
}

// Changed returns every NodeID whose state or identity transitioned since
// the last call to ClearChanged.
func (g *LiveGraph) Changed() []graph.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]graph.NodeID, 0, len(g.changed))
	for id := range g.changed {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ClearChanged empties the change log.
func (g *LiveGraph) ClearChanged() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.changed = make(map[graph.NodeID]struct{})
}

// ClosestProcessable returns the nearest ancestors of n (including n) that
// are themselves ready to run (§4.3, §GLOSSARY). The traversal walks
// parents: a Dirty/Requested/Prioritised parent is recursed into; a
// Processing/ProcessingDirty parent blocks that branch (contributes
// nothing); once every parent is Clean (vacuously true with no parents), n
// itself is processable.
func (g *LiveGraph) ClosestProcessable(n graph.NodeID) []graph.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make(map[graph.NodeID]struct{})
	visited := make(map[graph.NodeID]struct{})
	g.closestProcessableLocked(n, visited, out)

	result := make([]graph.NodeID, 0, len(out))
	for id := range out {
		result = append(result, id)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func (g *LiveGraph) closestProcessableLocked(id graph.NodeID, visited, out map[graph.NodeID]struct{}) {
	if _, ok := visited[id]; ok {
		return
	}
	visited[id] = struct{}{}

	allClean := true
	for _, p := range g.graph.Parents(id) {
		switch g.states[p] {
		case StateDirty, StateRequested, StatePrioritised:
			allClean = false
			g.closestProcessableLocked(p, visited, out)
		case StateProcessing, StateProcessingDirty:
			allClean = false
		case StateClean:
			// does not block, contributes nothing on its own
		}
	}
	if allClean {
		out[id] = struct{}{}
	}
}

// SlotDatas returns the currently stored SlotData produced for id.
func (g *LiveGraph) SlotDatas(id graph.NodeID) []slotdata.SlotData {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]slotdata.SlotData, len(g.slotData[id]))
	copy(out, g.slotData[id])
	return out
}

// SlotDataFor looks up the stored SlotData for a specific (node, slot); used
// by kernels resolving an incoming edge to a value.
func (g *LiveGraph) SlotDataFor(id graph.NodeID, slot graph.SlotID) (slotdata.SlotData, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, sd := range g.slotData[id] {
		if sd.SlotID == slot {
			return sd, true
		}
	}
	return slotdata.SlotData{}, false
}

// ReplaceSlotDatas discards any prior SlotData stored for id and stores the
// newly produced ones, releasing the discarded containers. Called by the
// engine on a successful completion (§4.4 step 1).
func (g *LiveGraph) ReplaceSlotDatas(id graph.NodeID, data []slotdata.SlotData) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, old := range g.slotData[id] {
		old.Image.Release()
	}
	g.slotData[id] = data
}

// EvictSlotDatas discards and releases any SlotData stored for id without
// replacement, used by the use_cache=false eviction sweep (§4.4 step 1).
func (g *LiveGraph) EvictSlotDatas(id graph.NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, old := range g.slotData[id] {
		old.Image.Release()
	}
	delete(g.slotData, id)
}

// EmbedSlotData stores data addressable by an Embed node id.
func (g *LiveGraph) EmbedSlotData(id graph.EmbedID, data slotdata.SlotData) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.embedded[id] = data
}

// EmbeddedSlotData looks up data stored by EmbedSlotData.
func (g *LiveGraph) EmbeddedSlotData(id graph.EmbedID) (slotdata.SlotData, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	sd, ok := g.embedded[id]
	if !ok {
		return slotdata.SlotData{}, errs.ErrNoSlotData
	}
	return sd, nil
}

// SetExternalInput supplies data for an InputGray/InputRgba endpoint node,
// as used when a nested sub-graph kernel feeds its child LiveGraph (§4.8).
func (g *LiveGraph) SetExternalInput(nodeID graph.NodeID, data slotdata.SlotData) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.external[nodeID] = data
	g.dirtyLocked(nodeID)
}

// ExternalInput looks up data supplied by SetExternalInput.
func (g *LiveGraph) ExternalInput(nodeID graph.NodeID) (slotdata.SlotData, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	sd, ok := g.external[nodeID]
	return sd, ok
}

// Snapshot is a point-in-time view of which nodes are candidates for
// discovery (§4.4 step 2), taken under a single read lock so the set is
// internally consistent.
type Snapshot struct {
	Candidates []graph.NodeID
}

// DiscoverCandidates returns the node ids eligible for this tick's
// discovery step, per the live graph's AutoUpdate mode.
func (g *LiveGraph) DiscoverCandidates() []graph.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []graph.NodeID
	for id, s := range g.states {
		if g.autoUpdate {
			if s.autoUpdateCandidate() {
				out = append(out, id)
			}
		} else if s.readyForDiscovery() {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Graph exposes the underlying NodeGraph for read-only structural queries
// (parents/children, edges). The lock is held only while the pointer is
// read; queries on the returned graph are not guarded by it.
func (g *LiveGraph) Graph() *graph.NodeGraph {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.graph
}

// IncomingEdges returns the edges currently feeding into node id's slots.
func (g *LiveGraph) IncomingEdges(id graph.NodeID) []graph.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []graph.Edge
	for _, e := range g.graph.Edges() {
		if e.InputNode == id {
			out = append(out, e)
		}
	}
	return out
}
