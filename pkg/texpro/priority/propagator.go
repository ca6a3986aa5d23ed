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

package priority

import (
	"sort"

	"github.com/cinode/texpro/pkg/texpro/graph"
)

// GraphTopology is the read-only view of a NodeGraph the propagator needs:
// the parent/child relation derived from the edge list.
type GraphTopology interface {
	Parents(id graph.NodeID) []graph.NodeID
	Children(id graph.NodeID) []graph.NodeID
}

// Propagator maintains, for a set of nodes, the invariant that each node's
// propagated priority equals the max of its own priority and the propagated
// priority of all of its children.
type Propagator struct {
	cells map[graph.NodeID]*Cell
}

// NewPropagator creates an empty propagator.
func NewPropagator() *Propagator {
	return &Propagator{cells: make(map[graph.NodeID]*Cell)}
}

// Register associates a node id with its priority cell. Registering the same
// id twice replaces the cell.
func (p *Propagator) Register(id graph.NodeID, cell *Cell) {
	p.cells[id] = cell
}

// Unregister drops a node id, e.g. when the node is removed from the graph.
func (p *Propagator) Unregister(id graph.NodeID) {
	delete(p.cells, id)
}

// Cell returns the priority cell for id, or nil if unregistered.
func (p *Propagator) Cell(id graph.NodeID) *Cell {
	return p.cells[id]
}

// Update re-propagates priorities for every touched cell, following §4.2:
// entries are visited highest-own-priority-first so that a single pass
// converges without needing a full graph traversal, and upward recursion
// stops as soon as a parent's propagated priority is already at least the
// candidate value (monotone termination).
func (p *Propagator) Update(topo GraphTopology) {
	type entry struct {
		id   graph.NodeID
		cell *Cell
	}

	entries := make([]entry, 0, len(p.cells))
	for id, cell := range p.cells {
		entries = append(entries, entry{id, cell})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].cell.Own() < entries[j].cell.Own()
	})

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !e.cell.touchedAndClear() {
			continue
		}
		p.recompute(e.id, e.cell, topo)
	}
}

// recompute sets e's propagated priority from its own priority and its
// children's current propagated priorities, then recurses into parents whose
// propagated priority actually increases as a result.
func (p *Propagator) recompute(id graph.NodeID, cell *Cell, topo GraphTopology) {
	newValue := int32(cell.Own())
	for _, childID := range topo.Children(id) {
		if childCell := p.cells[childID]; childCell != nil {
			if v := int32(childCell.Propagated()); v > newValue {
				newValue = v
			}
		}
	}

	old := cell.propagated.Swap(newValue)
	if old == newValue {
		return
	}

	for _, parentID := range topo.Parents(id) {
		parentCell := p.cells[parentID]
		if parentCell == nil {
			continue
		}
		if _, parentChanged := parentCell.fetchMaxPropagated(newValue); parentChanged {
			p.recompute(parentID, parentCell, topo)
		}
	}
}
