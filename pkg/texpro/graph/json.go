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

package graph

import (
	"encoding/json"
	"sort"
)

// jsonNode and jsonEdge are the stable wire schema for NodeGraph
// import/export: plain structs with explicit json tags, following the
// teacher's webinterface.go convention of encoding/json over a hand-rolled
// binary format. Input/output endpoint nodes carry their user-chosen name as
// the stable cross-import handle (§6).
type jsonNode struct {
	ID           uint32  `json:"id"`
	Kind         byte    `json:"kind"`
	Name         string  `json:"name,omitempty"`
	Path         string  `json:"path,omitempty"`
	Embed        uint32  `json:"embed,omitempty"`
	Value        float32 `json:"value,omitempty"`
	Mix          byte    `json:"mix,omitempty"`
	ResizePolicy byte    `json:"resize_policy"`
	ResizeSlot   uint32  `json:"resize_slot,omitempty"`
	ResizeWidth  uint32  `json:"resize_width,omitempty"`
	ResizeHeight uint32  `json:"resize_height,omitempty"`
	ResizeFilter byte    `json:"resize_filter"`
}

type jsonEdge struct {
	OutputNode uint32 `json:"output_node"`
	OutputSlot uint32 `json:"output_slot"`
	InputNode  uint32 `json:"input_node"`
	InputSlot  uint32 `json:"input_slot"`
}

type jsonGraph struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

// MarshalJSON encodes the graph's nodes (in NodeID order, for a
// deterministic byte stream regardless of insertion order) and edges (in
// insertion order) into the stable wire schema. Nested Graph sub-graphs are
// not encoded by this format; they are out of scope for the JSON codec and
// are expected to be rebuilt programmatically.
func (g *NodeGraph) MarshalJSON() ([]byte, error) {
	nodes := g.Nodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	out := jsonGraph{
		Nodes: make([]jsonNode, 0, len(nodes)),
		Edges: make([]jsonEdge, 0, len(g.edges)),
	}
	for _, n := range nodes {
		out.Nodes = append(out.Nodes, jsonNode{
			ID:           uint32(n.ID),
			Kind:         byte(n.Type.Kind),
			Name:         n.Type.Name,
			Path:         n.Type.Path,
			Embed:        uint32(n.Type.Embed),
			Value:        n.Type.Value,
			Mix:          byte(n.Type.Mix),
			ResizePolicy: byte(n.ResizePolicy.Kind),
			ResizeSlot:   uint32(n.ResizePolicy.SpecificSlot),
			ResizeWidth:  n.ResizePolicy.Width,
			ResizeHeight: n.ResizePolicy.Height,
			ResizeFilter: byte(n.ResizeFilter),
		})
	}
	for _, e := range g.edges {
		out.Edges = append(out.Edges, jsonEdge{
			OutputNode: uint32(e.OutputNode),
			OutputSlot: uint32(e.OutputSlot),
			InputNode:  uint32(e.InputNode),
			InputSlot:  uint32(e.InputSlot),
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the wire schema into g, preserving NodeIDs exactly
// (via AddNodeWithID) so that edges, which reference ids directly, remain
// valid.
func (g *NodeGraph) UnmarshalJSON(data []byte) error {
	var in jsonGraph
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*g = *New()
	for _, n := range in.Nodes {
		node := Node{
			Type: NodeType{
				Kind:  NodeKind(n.Kind),
				Name:  n.Name,
				Path:  n.Path,
				Embed: EmbedID(n.Embed),
				Value: n.Value,
				Mix:   MixType(n.Mix),
			},
			ResizePolicy: ResizePolicy{
				Kind:         ResizePolicyKind(n.ResizePolicy),
				SpecificSlot: SlotID(n.ResizeSlot),
				Width:        n.ResizeWidth,
				Height:       n.ResizeHeight,
			},
			ResizeFilter: ResizeFilter(n.ResizeFilter),
		}
		if err := g.AddNodeWithID(NodeID(n.ID), node); err != nil {
			return err
		}
	}
	for _, e := range in.Edges {
		edge := Edge{
			OutputNode: NodeID(e.OutputNode),
			OutputSlot: SlotID(e.OutputSlot),
			InputNode:  NodeID(e.InputNode),
			InputSlot:  SlotID(e.InputSlot),
		}
		if !g.HasNode(edge.OutputNode) || !g.HasNode(edge.InputNode) {
			return ErrInvalidEdge
		}
		g.edges = append(g.edges, edge)
	}
	return nil
}
