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
	"testing"

	"github.com/cinode/texpro/pkg/texpro/graph"
	"github.com/stretchr/testify/require"
)

// chain is a trivial GraphTopology: a -> b -> c (a is parent of b, b parent of c).
type chain struct {
	parents  map[graph.NodeID][]graph.NodeID
	children map[graph.NodeID][]graph.NodeID
}

func (c chain) Parents(id graph.NodeID) []graph.NodeID  { return c.parents[id] }
func (c chain) Children(id graph.NodeID) []graph.NodeID { return c.children[id] }

func TestPropagatorIdentity(t *testing.T) {
	a, b, c := graph.NodeID(1), graph.NodeID(2), graph.NodeID(3)
	topo := chain{
		parents:  map[graph.NodeID][]graph.NodeID{b: {a}, c: {b}},
		children: map[graph.NodeID][]graph.NodeID{a: {b}, b: {c}},
	}

	p := NewPropagator()
	cellA, cellB, cellC := NewCell(0), NewCell(0), NewCell(5)
	p.Register(a, cellA)
	p.Register(b, cellB)
	p.Register(c, cellC)

	p.Update(topo)

	require.Equal(t, int8(5), cellC.Propagated())
	require.Equal(t, int8(5), cellB.Propagated())
	require.Equal(t, int8(5), cellA.Propagated())
}

func TestPropagatorOwnPriorityWins(t *testing.T) {
	a, b := graph.NodeID(1), graph.NodeID(2)
	topo := chain{
		parents:  map[graph.NodeID][]graph.NodeID{b: {a}},
		children: map[graph.NodeID][]graph.NodeID{a: {b}},
	}

	p := NewPropagator()
	cellA, cellB := NewCell(9), NewCell(0)
	p.Register(a, cellA)
	p.Register(b, cellB)

	p.Update(topo)

	require.Equal(t, int8(9), cellA.Propagated())
	require.Equal(t, int8(0), cellB.Propagated())
}

func TestPropagatorIncrementalRecompute(t *testing.T) {
	a, b := graph.NodeID(1), graph.NodeID(2)
	topo := chain{
		parents:  map[graph.NodeID][]graph.NodeID{b: {a}},
		children: map[graph.NodeID][]graph.NodeID{a: {b}},
	}

	p := NewPropagator()
	cellA, cellB := NewCell(0), NewCell(0)
	p.Register(a, cellA)
	p.Register(b, cellB)
	p.Update(topo)
	require.Equal(t, int8(0), cellA.Propagated())

	cellB.SetOwn(7)
	p.Update(topo)
	require.Equal(t, int8(7), cellA.Propagated())
}
