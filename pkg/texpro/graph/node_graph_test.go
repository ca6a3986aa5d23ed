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
	"testing"

	"github.com/stretchr/testify/require"
)

func addValue(t *testing.T, g *NodeGraph) NodeID {
	t.Helper()
	id, err := g.AddNode(Node{Type: NodeType{Kind: KindValue, Value: 0.5}})
	require.NoError(t, err)
	return id
}

func TestConnectValidatesTypesAndReplacesOccupant(t *testing.T) {
	g := New()
	v1 := addValue(t, g)
	v2 := addValue(t, g)
	mix, err := g.AddNode(Node{Type: NodeType{Kind: KindMix, Mix: MixAdd}})
	require.NoError(t, err)

	_, err = g.Connect(v1, 0, mix, 0)
	require.NoError(t, err)
	require.Len(t, g.Edges(), 1)

	// Reconnecting slot 0 replaces the prior edge rather than adding a second.
	_, err = g.Connect(v2, 0, mix, 0)
	require.NoError(t, err)
	edges := g.Edges()
	require.Len(t, edges, 1)
	require.Equal(t, v2, edges[0].OutputNode)
}

func TestConnectRejectsIncompatibleSlotType(t *testing.T) {
	g := New()
	outRgba, err := g.AddNode(Node{Type: NodeType{Kind: KindInputRgba, Name: "in"}})
	require.NoError(t, err)
	sep, err := g.AddNode(Node{Type: NodeType{Kind: KindSeparateRgba}})
	require.NoError(t, err)

	// SeparateRgba output 0 is Gray; wiring it into a slot that only takes a
	// different concrete type than Gray/GrayOrRgba must fail. Build an
	// OutputRgba endpoint (wants Rgba) and try to feed it Gray directly.
	outEndpoint, err := g.AddNode(Node{Type: NodeType{Kind: KindOutputRgba, Name: "out"}})
	require.NoError(t, err)

	_, err = g.Connect(outRgba, 0, sep, 0)
	require.NoError(t, err)

	_, err = g.Connect(sep, 0, outEndpoint, 0)
	require.ErrorIs(t, err, ErrInvalidSlotType)
}

func TestDuplicateEndpointNameRejected(t *testing.T) {
	g := New()
	_, err := g.AddNode(Node{Type: NodeType{Kind: KindInputGray, Name: "a"}})
	require.NoError(t, err)
	_, err = g.AddNode(Node{Type: NodeType{Kind: KindInputGray, Name: "a"}})
	require.ErrorIs(t, err, ErrInvalidName)
}

func TestChildrenRecursiveDedups(t *testing.T) {
	g := New()
	v := addValue(t, g)
	mixA, _ := g.AddNode(Node{Type: NodeType{Kind: KindMix, Mix: MixAdd}})
	mixB, _ := g.AddNode(Node{Type: NodeType{Kind: KindMix, Mix: MixAdd}})
	leaf, _ := g.AddNode(Node{Type: NodeType{Kind: KindMix, Mix: MixAdd}})

	_, err := g.Connect(v, 0, mixA, 0)
	require.NoError(t, err)
	_, err = g.Connect(v, 0, mixB, 0)
	require.NoError(t, err)
	_, err = g.Connect(mixA, 0, leaf, 0)
	require.NoError(t, err)
	_, err = g.Connect(mixB, 0, leaf, 1)
	require.NoError(t, err)

	descendants := g.ChildrenRecursive(v)
	require.ElementsMatch(t, []NodeID{mixA, mixB, leaf}, descendants)
}

func TestRemoveNodeDropsEdges(t *testing.T) {
	g := New()
	v := addValue(t, g)
	mix, _ := g.AddNode(Node{Type: NodeType{Kind: KindMix, Mix: MixAdd}})
	_, err := g.Connect(v, 0, mix, 0)
	require.NoError(t, err)

	removed, err := g.RemoveNode(v)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	require.Empty(t, g.Edges())
	require.False(t, g.HasNode(v))
}

func TestSlotTypeFits(t *testing.T) {
	require.True(t, SlotGray.Fits(SlotGray))
	require.False(t, SlotGray.Fits(SlotRgba))
	require.True(t, SlotRgba.Fits(SlotGrayOrRgba))
	require.True(t, SlotGrayOrRgba.Fits(SlotRgba))
	require.True(t, SlotGrayOrRgba.Fits(SlotGray))
}
