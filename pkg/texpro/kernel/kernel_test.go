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

package kernel

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cinode/texpro/pkg/texpro/buffer"
	"github.com/cinode/texpro/pkg/texpro/errs"
	"github.com/cinode/texpro/pkg/texpro/graph"
	"github.com/cinode/texpro/pkg/texpro/slotdata"
)

func grayInput(size buffer.Size, v float32) slotdata.SlotData {
	n := size.PixelCount()
	data := make([]float32, n)
	for i := range data {
		data[i] = v
	}
	return slotdata.SlotData{Image: slotdata.Image{Gray: buffer.NewContainer(buffer.NewMemory(size, data))}}
}

func TestRunValueEmitsConstant1x1(t *testing.T) {
	out, err := Run(context.Background(), Input{Node: graph.Node{Type: graph.NodeType{Kind: graph.KindValue, Value: 0.75}}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	data, err := out[0].Image.Gray.Data()
	require.NoError(t, err)
	require.Equal(t, []float32{0.75}, data)
}

func TestRunMixAddGray(t *testing.T) {
	size := buffer.Size{Width: 2, Height: 1}
	in := Input{
		Node: graph.Node{Type: graph.NodeType{Kind: graph.KindMix, Mix: graph.MixAdd}},
		Slots: map[graph.SlotID]slotdata.SlotData{
			0: grayInput(size, 0.2),
			1: grayInput(size, 0.3),
		},
	}
	out, err := Run(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	data, err := out[0].Image.Gray.Data()
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{0.5, 0.5}, data, 1e-6)
}

func TestRunMixMissingRightDefaultsToZero(t *testing.T) {
	size := buffer.Size{Width: 1, Height: 1}
	in := Input{
		Node: graph.Node{Type: graph.NodeType{Kind: graph.KindMix, Mix: graph.MixAdd}},
		Slots: map[graph.SlotID]slotdata.SlotData{
			0: grayInput(size, 0.4),
		},
	}
	out, err := Run(context.Background(), in)
	require.NoError(t, err)
	data, err := out[0].Image.Gray.Data()
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{0.4}, data, 1e-6)
}

func TestRunCombineSeparateRoundTrip(t *testing.T) {
	size := buffer.Size{Width: 1, Height: 1}
	combineIn := Input{
		Node: graph.Node{Type: graph.NodeType{Kind: graph.KindCombineRgba}},
		Slots: map[graph.SlotID]slotdata.SlotData{
			0: grayInput(size, 0.1),
			1: grayInput(size, 0.2),
			2: grayInput(size, 0.3),
		},
	}
	combined, err := Run(context.Background(), combineIn)
	require.NoError(t, err)
	require.Len(t, combined, 1)
	require.True(t, combined[0].Image.IsRGBA())

	separateIn := Input{
		Node:  graph.Node{Type: graph.NodeType{Kind: graph.KindSeparateRgba}},
		Slots: map[graph.SlotID]slotdata.SlotData{0: combined[0]},
	}
	separated, err := Run(context.Background(), separateIn)
	require.NoError(t, err)
	require.Len(t, separated, 4)

	r, err := separated[0].Image.Gray.Data()
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{0.1}, r, 1e-6)

	a, err := separated[3].Image.Gray.Data()
	require.NoError(t, err)
	require.InDeltaSlice(t, []float32{1.0}, a, 1e-6)
}

func TestRunEmbeddedMissingIsError(t *testing.T) {
	in := Input{
		Node: graph.Node{Type: graph.NodeType{Kind: graph.KindEmbedded, Embed: 7}},
		EmbeddedSlotData: func(graph.EmbedID) (slotdata.SlotData, error) {
			return slotdata.SlotData{}, errs.ErrNoSlotData
		},
	}
	_, err := Run(context.Background(), in)
	require.ErrorIs(t, err, errs.ErrNoSlotData)
}

func TestResizeInputsMostPixelsUpsizesSmaller(t *testing.T) {
	small := buffer.Size{Width: 1, Height: 1}
	big := buffer.Size{Width: 2, Height: 2}
	in := Input{
		Node: graph.Node{
			Type:         graph.NodeType{Kind: graph.KindMix, Mix: graph.MixAdd},
			ResizePolicy: graph.ResizePolicy{Kind: graph.ResizeMostPixels},
			ResizeFilter: graph.FilterNearest,
		},
		Slots: map[graph.SlotID]slotdata.SlotData{
			0: grayInput(small, 0.5),
			1: grayInput(big, 0.25),
		},
	}
	out, err := Run(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, big, out[0].Image.Size())
}

func TestRunCancelledReturnsErrCanceled(t *testing.T) {
	cancel := &atomic.Bool{}
	cancel.Store(true)
	_, err := Run(context.Background(), Input{
		Node:   graph.Node{Type: graph.NodeType{Kind: graph.KindValue}},
		Cancel: cancel,
	})
	require.ErrorIs(t, err, errs.ErrCanceled)
}
