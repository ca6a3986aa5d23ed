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

func buildSampleGraph(t *testing.T) *NodeGraph {
	t.Helper()
	g := New()
	v := addValue(t, g)
	out, err := g.AddNode(Node{Type: NodeType{Kind: KindOutputGray, Name: "out"}})
	require.NoError(t, err)
	_, err = g.Connect(v, 0, out, 0)
	require.NoError(t, err)
	return g
}

func TestJSONRoundTrip(t *testing.T) {
	g := buildSampleGraph(t)

	data, err := g.MarshalJSON()
	require.NoError(t, err)

	g2 := New()
	require.NoError(t, g2.UnmarshalJSON(data))

	require.Len(t, g2.Nodes(), 2)
	require.Len(t, g2.Edges(), 1)
	id, ok := g2.EndpointID("out")
	require.True(t, ok)
	require.True(t, g2.HasNode(id))
}

func TestFingerprintStableAcrossInsertionOrder(t *testing.T) {
	g1 := New()
	a1, _ := g1.AddNode(Node{Type: NodeType{Kind: KindInputGray, Name: "a"}})
	b1, _ := g1.AddNode(Node{Type: NodeType{Kind: KindInputGray, Name: "b"}})
	_ = a1
	_ = b1

	fp1, err := g1.Fingerprint()
	require.NoError(t, err)

	g2 := New()
	require.NoError(t, g2.UnmarshalJSON(mustMarshal(t, g1)))
	fp2, err := g2.Fingerprint()
	require.NoError(t, err)

	require.Equal(t, fp1, fp2)
}

func mustMarshal(t *testing.T, g *NodeGraph) []byte {
	t.Helper()
	data, err := g.MarshalJSON()
	require.NoError(t, err)
	return data
}
