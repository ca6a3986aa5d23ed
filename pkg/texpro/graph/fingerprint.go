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

import "github.com/cinode/texpro/pkg/texpro/fingerprint"

// Fingerprint returns a content digest of the graph's canonical JSON
// encoding (§4.1.1). Two graphs with identical nodes and edges always
// produce the same fingerprint, independent of node insertion order, since
// MarshalJSON sorts nodes by id. Edges are encoded in insertion order.
func (g *NodeGraph) Fingerprint() (string, error) {
	data, err := g.MarshalJSON()
	if err != nil {
		return "", err
	}
	return fingerprint.Of(data), nil
}
