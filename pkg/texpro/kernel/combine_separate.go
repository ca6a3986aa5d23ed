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
	"github.com/cinode/texpro/pkg/texpro/buffer"
	"github.com/cinode/texpro/pkg/texpro/graph"
	"github.com/cinode/texpro/pkg/texpro/slotdata"
)

// runCombineRgba builds an Rgba image from up to 4 Gray inputs by slot
// position; a missing channel defaults to a constant 1.0 (white) buffer
// (§4.8).
func runCombineRgba(in Input) ([]slotdata.SlotData, error) {
	var size buffer.Size
	found := false
	for i := 0; i < 4; i++ {
		if sd, ok := in.Slots[graph.SlotID(i)]; ok {
			size = sd.Image.Size()
			found = true
			break
		}
	}
	if !found {
		return nil, nil
	}

	var out [4]*buffer.Container
	for i := 0; i < 4; i++ {
		if sd, ok := in.Slots[graph.SlotID(i)]; ok {
			out[i] = sd.Image.Gray
			continue
		}
		out[i] = constantChannel(size, 1.0)
	}

	return []slotdata.SlotData{{
		NodeID: in.NodeID,
		SlotID: 0,
		Image:  slotdata.Image{RGBA: out},
	}}, nil
}

// runSeparateRgba splits an Rgba input (slot 0) into four Gray outputs; with
// no input connected it returns four black 1x1 Gray buffers (§4.8).
func runSeparateRgba(in Input) ([]slotdata.SlotData, error) {
	sd, ok := in.Slots[0]
	if !ok || !sd.Image.IsRGBA() {
		out := make([]slotdata.SlotData, 4)
		for i := 0; i < 4; i++ {
			out[i] = slotdata.SlotData{NodeID: in.NodeID, SlotID: graph.SlotID(i), Image: slotdata.NewValueImage(0)}
		}
		return out, nil
	}

	out := make([]slotdata.SlotData, 4)
	for i := 0; i < 4; i++ {
		out[i] = slotdata.SlotData{
			NodeID: in.NodeID,
			SlotID: graph.SlotID(i),
			Image:  slotdata.Image{Gray: sd.Image.RGBA[i]},
		}
	}
	return out, nil
}
