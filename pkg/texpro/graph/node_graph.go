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

// Package graph implements NodeGraph: the purely structural representation
// of nodes, typed slots and edges. It owns no goroutines and no locks of its
// own - concurrent access is the responsibility of the owner (LiveGraph adds
// a single sync.RWMutex around one NodeGraph, per §5). Nodes never hold
// pointers to each other; identity is always by NodeID and parent/child
// relationships are derived from the edge list on demand (§9).
package graph

import (
	"sort"
)

// NodeGraph is the flat, ordered collection of nodes and edges that make up
// one DAG (or, nested, one sub-graph embedded inside a Graph-kind node).
type NodeGraph struct {
	nodes       map[NodeID]*Node
	order       []NodeID // insertion order, for stable iteration/export
	edges       []Edge   // insertion order
	endpointIDs map[string]NodeID
}

// New returns an empty NodeGraph.
func New() *NodeGraph {
	return &NodeGraph{
		nodes:       make(map[NodeID]*Node),
		endpointIDs: make(map[string]NodeID),
	}
}

// HasNode reports whether id names a node currently in the graph.
func (g *NodeGraph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node with the given id.
func (g *NodeGraph) Node(id NodeID) (*Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, ErrInvalidNodeID
	}
	return n, nil
}

// Nodes returns all nodes in insertion order.
func (g *NodeGraph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *NodeGraph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// AddNode assigns a fresh random NodeID (retried on collision) to node,
// inserts it, and returns the assigned id. Input/output endpoint node types
// must carry a name unique among all input and output endpoint nodes.
func (g *NodeGraph) AddNode(n Node) (NodeID, error) {
	if err := g.validateName(n.Type); err != nil {
		return 0, err
	}
	id := newRandomNodeID()
	for g.HasNode(id) {
		id = newRandomNodeID()
	}
	return g.addNodeWithID(id, n)
}

// AddNodeWithID inserts node at a caller-chosen id, failing if the id is
// already taken. This is used when re-hydrating a graph from JSON so that
// ids remain stable across export/import round trips.
func (g *NodeGraph) AddNodeWithID(id NodeID, n Node) error {
	if g.HasNode(id) {
		return ErrInvalidNodeID
	}
	if err := g.validateName(n.Type); err != nil {
		return err
	}
	_, err := g.addNodeWithID(id, n)
	return err
}

func (g *NodeGraph) addNodeWithID(id NodeID, n Node) (NodeID, error) {
	n.ID = id
	g.nodes[id] = &n
	g.order = append(g.order, id)
	if name, ok := endpointName(n.Type); ok {
		g.endpointIDs[name] = id
	}
	return id, nil
}

func (g *NodeGraph) validateName(t NodeType) error {
	name, ok := endpointName(t)
	if !ok {
		return nil
	}
	if name == "" {
		return ErrInvalidName
	}
	if _, taken := g.endpointIDs[name]; taken {
		return ErrInvalidName
	}
	return nil
}

func endpointName(t NodeType) (string, bool) {
	if t.IsInput() || t.IsOutput() {
		return t.Name, true
	}
	return "", false
}

// RemoveNode deletes a node and every edge touching it, returning the
// removed edges.
func (g *NodeGraph) RemoveNode(id NodeID) ([]Edge, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, ErrInvalidNodeID
	}

	var removed []Edge
	kept := g.edges[:0:0]
	for _, e := range g.edges {
		if e.OutputNode == id || e.InputNode == id {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept

	delete(g.nodes, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	if name, ok := endpointName(n.Type); ok {
		delete(g.endpointIDs, name)
	}

	return removed, nil
}

// Connect wires outNode's outSlot to inNode's inSlot, validating existence,
// slot bounds and type compatibility. Any prior edge occupying the
// destination input slot is disconnected first (§4.1).
func (g *NodeGraph) Connect(outNode NodeID, outSlot SlotID, inNode NodeID, inSlot SlotID) (Edge, error) {
	out, err := g.Node(outNode)
	if err != nil {
		return Edge{}, err
	}
	in, err := g.Node(inNode)
	if err != nil {
		return Edge{}, err
	}

	outSlots := out.Type.OutputSlots()
	inSlots := in.Type.InputSlots()

	outDef, ok := findSlot(outSlots, outSlot)
	if !ok {
		return Edge{}, ErrInvalidSlotID
	}
	inDef, ok := findSlot(inSlots, inSlot)
	if !ok {
		return Edge{}, ErrInvalidSlotID
	}
	if !outDef.Type.Fits(inDef.Type) {
		return Edge{}, ErrInvalidSlotType
	}

	if _, err := g.DisconnectSlot(inNode, SideInput, inSlot); err != nil {
		return Edge{}, err
	}

	e := Edge{OutputNode: outNode, OutputSlot: outSlot, InputNode: inNode, InputSlot: inSlot}
	g.edges = append(g.edges, e)
	return e, nil
}

func findSlot(slots []Slot, id SlotID) (Slot, bool) {
	for _, s := range slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

// DisconnectSlot removes the edge(s) occupying the given slot on the given
// side of node, returning what was removed (at most one edge for an input
// slot; any number of fan-out edges for an output slot).
func (g *NodeGraph) DisconnectSlot(node NodeID, side Side, slot SlotID) ([]Edge, error) {
	if !g.HasNode(node) {
		return nil, ErrInvalidNodeID
	}

	var removed []Edge
	kept := g.edges[:0:0]
	for _, e := range g.edges {
		match := false
		switch side {
		case SideInput:
			match = e.InputNode == node && e.InputSlot == slot
		case SideOutput:
			match = e.OutputNode == node && e.OutputSlot == slot
		}
		if match {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
	return removed, nil
}

// Parents returns the ids of nodes with an edge feeding into id, deduped, in
// ascending NodeID order.
func (g *NodeGraph) Parents(id NodeID) []NodeID {
	seen := make(map[NodeID]struct{})
	for _, e := range g.edges {
		if e.InputNode == id {
			seen[e.OutputNode] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Children returns the ids of nodes fed by an output of id, deduped, in
// ascending NodeID order.
func (g *NodeGraph) Children(id NodeID) []NodeID {
	seen := make(map[NodeID]struct{})
	for _, e := range g.edges {
		if e.OutputNode == id {
			seen[e.InputNode] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// ChildrenRecursive returns every transitive descendant of id, deduped.
func (g *NodeGraph) ChildrenRecursive(id NodeID) []NodeID {
	visited := make(map[NodeID]struct{})
	var walk func(NodeID)
	walk = func(cur NodeID) {
		for _, child := range g.Children(cur) {
			if _, ok := visited[child]; ok {
				continue
			}
			visited[child] = struct{}{}
			walk(child)
		}
	}
	walk(id)
	return sortedKeys(visited)
}

func sortedKeys(m map[NodeID]struct{}) []NodeID {
	out := make([]NodeID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// externalInputSlots derives a Graph node's input slots from its sub-graph's
// InputGray/InputRgba endpoint nodes; slot id equals the endpoint node's own
// id, the convention used to route data into a nested LiveGraph (§4.8).
func (g *NodeGraph) externalInputSlots() []Slot {
	var out []Slot
	for _, n := range g.Nodes() {
		switch n.Type.Kind {
		case KindInputGray:
			out = append(out, Slot{ID: SlotID(n.ID), Type: SlotGray})
		case KindInputRgba:
			out = append(out, Slot{ID: SlotID(n.ID), Type: SlotRgba})
		}
	}
	return out
}

// externalOutputSlots derives a Graph node's output slots from its
// sub-graph's OutputGray/OutputRgba endpoint nodes.
func (g *NodeGraph) externalOutputSlots() []Slot {
	var out []Slot
	for _, n := range g.Nodes() {
		switch n.Type.Kind {
		case KindOutputGray:
			out = append(out, Slot{ID: SlotID(n.ID), Type: SlotGray})
		case KindOutputRgba:
			out = append(out, Slot{ID: SlotID(n.ID), Type: SlotRgba})
		}
	}
	return out
}

// ExternalInputIDs returns the NodeIDs of all InputGray/InputRgba endpoint
// nodes, in insertion order.
func (g *NodeGraph) ExternalInputIDs() []NodeID {
	var out []NodeID
	for _, n := range g.Nodes() {
		if n.Type.IsInput() {
			out = append(out, n.ID)
		}
	}
	return out
}

// ExternalOutputIDs returns the NodeIDs of all OutputGray/OutputRgba
// endpoint nodes, in insertion order.
func (g *NodeGraph) ExternalOutputIDs() []NodeID {
	var out []NodeID
	for _, n := range g.Nodes() {
		if n.Type.IsOutput() {
			out = append(out, n.ID)
		}
	}
	return out
}

// EndpointID looks up the NodeID of a named input or output endpoint node.
func (g *NodeGraph) EndpointID(name string) (NodeID, bool) {
	id, ok := g.endpointIDs[name]
	return id, ok
}
