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

// runValue emits a constant 1x1 Gray buffer carrying the node's configured
// value (§4.8).
func runValue(in Input) ([]slotdata.SlotData, error) {
	return []slotdata.SlotData{{
		NodeID: in.NodeID,
		SlotID: 0,
		Image:  slotdata.NewValueImage(in.Node.Type.Value),
	}}, nil
}
