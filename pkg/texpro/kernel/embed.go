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

import "github.com/cinode/texpro/pkg/texpro/slotdata"

// runEmbedded looks up out-of-band data staged for this node's EmbedID
// (§4.8). Absent data is a processing error, not an empty result, since an
// Embed node with nothing staged for it indicates the caller forgot to
// supply it before the graph was driven.
func runEmbedded(in Input) ([]slotdata.SlotData, error) {
	sd, err := in.EmbeddedSlotData(in.Node.Type.Embed)
	if err != nil {
		return nil, err
	}
	sd.NodeID = in.NodeID
	sd.SlotID = 0
	return []slotdata.SlotData{sd}, nil
}
