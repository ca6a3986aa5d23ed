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

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cinode/texpro/pkg/texpro/graph"
	"github.com/cinode/texpro/pkg/texpro/livegraph"
)

func addValue(t *testing.T, g *livegraph.LiveGraph) graph.NodeID {
	t.Helper()
	id, err := g.AddNode(graph.Node{Type: graph.NodeType{Kind: graph.KindValue, Value: 0.1}})
	require.NoError(t, err)
	return id
}

func pack(t *testing.T, g *livegraph.LiveGraph, id graph.NodeID, own int8) ProcessPack {
	t.Helper()
	cell := g.PriorityCell(id)
	cell.SetOwn(own)
	g.UpdatePriorities()
	return ProcessPack{NodeID: id, Priority: cell, LiveGraph: g}
}

func TestUpdateAdmitsUpToMaxCount(t *testing.T) {
	g := livegraph.New()
	a := addValue(t, g)
	b := addValue(t, g)

	m := New()
	m.MaxCount = 2

	admitted, err := m.Update([]ProcessPack{pack(t, g, a, 1), pack(t, g, b, 2)})
	require.NoError(t, err)
	require.Len(t, admitted, 2)
	require.Len(t, m.Admitted(), 2)
}

func TestUpdatePreemptsStrictlyLowerPriority(t *testing.T) {
	g := livegraph.New()
	low := addValue(t, g)
	high := addValue(t, g)

	m := New()
	m.MaxCount = 1

	admitted, err := m.Update([]ProcessPack{pack(t, g, low, 1)})
	require.NoError(t, err)
	require.Len(t, admitted, 1)
	require.Equal(t, low, admitted[0].NodeID)

	admitted, err = m.Update([]ProcessPack{pack(t, g, high, 5)})
	require.NoError(t, err)
	require.Len(t, admitted, 1)
	require.Equal(t, high, admitted[0].NodeID)

	// The preempted node's cancel flag must now be set.
	require.True(t, g.CancelFlag(low).Load())

	stillAdmitted := m.Admitted()
	require.Len(t, stillAdmitted, 1)
	require.Equal(t, high, stillAdmitted[0].NodeID)
}

func TestUpdateDoesNotPreemptOnEqualPriority(t *testing.T) {
	g := livegraph.New()
	a := addValue(t, g)
	b := addValue(t, g)

	m := New()
	m.MaxCount = 1

	_, err := m.Update([]ProcessPack{pack(t, g, a, 3)})
	require.NoError(t, err)

	admitted, err := m.Update([]ProcessPack{pack(t, g, b, 3)})
	require.NoError(t, err)
	require.Empty(t, admitted)
	require.False(t, g.CancelFlag(a).Load())
}

func TestRemoveCleanDropsFinishedPacks(t *testing.T) {
	g := livegraph.New()
	a := addValue(t, g)

	m := New()
	m.MaxCount = 4

	_, err := m.Update([]ProcessPack{pack(t, g, a, 1)})
	require.NoError(t, err)
	require.Len(t, m.Admitted(), 1)

	require.NoError(t, g.ForceState(a, livegraph.StateClean))

	_, err = m.Update(nil)
	require.NoError(t, err)
	require.Empty(t, m.Admitted())
}
