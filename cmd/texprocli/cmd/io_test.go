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

package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cinode/texpro/pkg/texpro/graph"
)

func TestSaveAndLoadGraphRoundTrip(t *testing.T) {
	ng := graph.New()
	a, err := ng.AddNode(graph.Node{Type: graph.NodeType{Kind: graph.KindValue, Value: 0.5}})
	require.NoError(t, err)
	b, err := ng.AddNode(graph.Node{Type: graph.NodeType{Kind: graph.KindOutputGray, Name: "out"}})
	require.NoError(t, err)
	_, err = ng.Connect(a, 0, b, 0)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, saveGraph(path, ng))

	loaded, err := loadGraph(path)
	require.NoError(t, err)
	require.Len(t, loaded.Nodes(), 2)
	require.Len(t, loaded.Edges(), 1)

	id, ok := loaded.EndpointID("out")
	require.True(t, ok)
	require.Equal(t, b, id)
}

func TestParseNodeKindRejectsUnknown(t *testing.T) {
	_, err := parseNodeKind("not-a-kind")
	require.Error(t, err)

	k, err := parseNodeKind("mix")
	require.NoError(t, err)
	require.Equal(t, graph.KindMix, k)
}

func TestParseResizePolicyAndFilter(t *testing.T) {
	p, err := parseResizePolicy("largest-axes")
	require.NoError(t, err)
	require.Equal(t, graph.ResizeLargestAxes, p)

	f, err := parseResizeFilter("lanczos3")
	require.NoError(t, err)
	require.Equal(t, graph.FilterLanczos3, f)
}
