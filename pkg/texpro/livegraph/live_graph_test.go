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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cinode/texpro/pkg/texpro/graph"
)

func addValue(t *testing.T, g *LiveGraph) graph.NodeID {
	t.Helper()
	id, err := g.AddNode(graph.Node{Type: graph.NodeType{Kind: graph.KindValue, Value: 0.5}})
	require.NoError(t, err)
	return id
}

func addMix(t *testing.T, g *LiveGraph) graph.NodeID {
	t.Helper()
	id, err := g.AddNode(graph.Node{Type: graph.NodeType{Kind: graph.KindMix, Mix: graph.MixAdd}})
	require.NoError(t, err)
	return id
}

func TestNewNodeStartsDirty(t *testing.T) {
	g := New()
	id := addValue(t, g)
	s, err := g.State(id)
	require.NoError(t, err)
	require.Equal(t, StateDirty, s)
}

func TestRequestOnlyAppliesFromDirty(t *testing.T) {
	g := New()
	id := addValue(t, g)

	require.NoError(t, g.Request(id))
	s, _ := g.State(id)
	require.Equal(t, StateRequested, s)

	// Already Requested: Request is a no-op, does not regress or error.
	require.NoError(t, g.Request(id))
	s, _ = g.State(id)
	require.Equal(t, StateRequested, s)

	// From Clean, Request must not move the node at all.
	require.NoError(t, g.ForceState(id, StateClean))
	require.NoError(t, g.Request(id))
	s, _ = g.State(id)
	require.Equal(t, StateClean, s)
}

func TestSetStateDirtyPropagatesToDescendants(t *testing.T) {
	g := New()
	v := addValue(t, g)
	mixA := addMix(t, g)
	leaf := addMix(t, g)

	_, err := g.Connect(v, 0, mixA, 0)
	require.NoError(t, err)
	_, err = g.Connect(mixA, 0, leaf, 0)
	require.NoError(t, err)

	require.NoError(t, g.ForceState(v, StateClean))
	require.NoError(t, g.ForceState(mixA, StateClean))
	require.NoError(t, g.ForceState(leaf, StateClean))

	require.NoError(t, g.SetState(v, StateDirty))

	sv, _ := g.State(v)
	sa, _ := g.State(mixA)
	sl, _ := g.State(leaf)
	require.Equal(t, StateDirty, sv)
	require.Equal(t, StateDirty, sa)
	require.Equal(t, StateDirty, sl)
}

func TestSetStateDirtyOnProcessingDescendantBecomesProcessingDirty(t *testing.T) {
	g := New()
	v := addValue(t, g)
	mixA := addMix(t, g)

	_, err := g.Connect(v, 0, mixA, 0)
	require.NoError(t, err)

	require.NoError(t, g.ForceState(mixA, StateProcessing))
	require.NoError(t, g.SetState(v, StateDirty))

	s, _ := g.State(mixA)
	require.Equal(t, StateProcessingDirty, s)
}

func TestConnectCancelsDownstreamInFlightWork(t *testing.T) {
	g := New()
	v := addValue(t, g)
	mixA := addMix(t, g)

	require.NoError(t, g.ForceState(mixA, StateProcessing))

	_, err := g.Connect(v, 0, mixA, 0)
	require.NoError(t, err)

	require.True(t, g.CancelFlag(mixA).Load())
}

func TestClosestProcessableAllCleanParentsQualifiesNode(t *testing.T) {
	g := New()
	v := addValue(t, g)
	mixA := addMix(t, g)
	_, err := g.Connect(v, 0, mixA, 0)
	require.NoError(t, err)

	require.NoError(t, g.ForceState(v, StateClean))
	require.NoError(t, g.ForceState(mixA, StateDirty))

	result := g.ClosestProcessable(mixA)
	require.ElementsMatch(t, []graph.NodeID{mixA}, result)
}

func TestClosestProcessableRecursesIntoDirtyParent(t *testing.T) {
	g := New()
	v := addValue(t, g)
	mixA := addMix(t, g)
	_, err := g.Connect(v, 0, mixA, 0)
	require.NoError(t, err)

	// v is Dirty (never processed), mixA is also Dirty: the closest
	// processable ancestor of mixA is v, not mixA itself.
	result := g.ClosestProcessable(mixA)
	require.ElementsMatch(t, []graph.NodeID{v}, result)
}

func TestClosestProcessableBlockedByProcessingParent(t *testing.T) {
	g := New()
	v := addValue(t, g)
	mixA := addMix(t, g)
	_, err := g.Connect(v, 0, mixA, 0)
	require.NoError(t, err)

	require.NoError(t, g.ForceState(v, StateProcessing))

	result := g.ClosestProcessable(mixA)
	require.Empty(t, result)
}

func TestClosestProcessableNoParentsQualifiesNode(t *testing.T) {
	g := New()
	v := addValue(t, g)

	result := g.ClosestProcessable(v)
	require.ElementsMatch(t, []graph.NodeID{v}, result)
}

func TestDiscoverCandidatesRequestModeOnlyRequestedOrPrioritised(t *testing.T) {
	g := New(WithAutoUpdate(false))
	v := addValue(t, g)
	mixA := addMix(t, g)

	require.NoError(t, g.Request(v))

	candidates := g.DiscoverCandidates()
	require.ElementsMatch(t, []graph.NodeID{v}, candidates)
	_ = mixA
}

func TestDiscoverCandidatesAutoUpdateEveryNonCleanNonProcessing(t *testing.T) {
	g := New(WithAutoUpdate(true))
	v := addValue(t, g)
	mixA := addMix(t, g)

	require.NoError(t, g.ForceState(mixA, StateClean))

	candidates := g.DiscoverCandidates()
	require.ElementsMatch(t, []graph.NodeID{v}, candidates)
}

func TestChangedLogTracksMutations(t *testing.T) {
	g := New()
	v := addValue(t, g)
	require.NotEmpty(t, g.Changed())

	g.ClearChanged()
	require.Empty(t, g.Changed())

	require.NoError(t, g.Request(v))
	require.ElementsMatch(t, []graph.NodeID{v}, g.Changed())
}
