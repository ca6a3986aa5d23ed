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

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cinode/texpro/pkg/texpro/graph"
	"github.com/cinode/texpro/pkg/texpro/livegraph"
)

func waitForClean(t *testing.T, lg *livegraph.LiveGraph, id graph.NodeID, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		state, err := lg.State(id)
		require.NoError(t, err)
		if state == livegraph.StateClean {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("node %s never went Clean (last state %s)", id, state)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestProcessorDrivesMixToClean(t *testing.T) {
	tp := New(WithTickInterval(time.Millisecond))
	lg := tp.NewLiveGraph()

	left, err := lg.AddNode(graph.Node{Type: graph.NodeType{Kind: graph.KindValue, Value: 0.25}})
	require.NoError(t, err)
	right, err := lg.AddNode(graph.Node{Type: graph.NodeType{Kind: graph.KindValue, Value: 0.5}})
	require.NoError(t, err)
	mix, err := lg.AddNode(graph.Node{Type: graph.NodeType{Kind: graph.KindMix, Mix: graph.MixAdd}})
	require.NoError(t, err)

	_, err = lg.Connect(left, 0, mix, 0)
	require.NoError(t, err)
	_, err = lg.Connect(right, 0, mix, 1)
	require.NoError(t, err)

	require.NoError(t, lg.Request(mix))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tp.Start(ctx)
	defer tp.Close()

	waitForClean(t, lg, mix, 2*time.Second)

	datas := lg.SlotDatas(mix)
	require.Len(t, datas, 1)
	pixels, err := datas[0].Image.Gray.Data()
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{0.75}, pixels, 1e-6)
}

func TestAwaitBufferRGBAReturnsBytes(t *testing.T) {
	tp := New(WithTickInterval(time.Millisecond))
	lg := tp.NewLiveGraph()

	id, err := lg.AddNode(graph.Node{Type: graph.NodeType{Kind: graph.KindValue, Value: 1}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tp.Start(ctx)
	defer tp.Close()

	bytes, err := tp.AwaitBufferRGBA(ctx, lg, id)
	require.NoError(t, err)
	require.Len(t, bytes, 4)
	require.Equal(t, []byte{255, 255, 255, 255}, bytes)
}

func TestCloseStopsLoop(t *testing.T) {
	tp := New(WithTickInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tp.Start(ctx)
	require.NoError(t, tp.Close())
}
