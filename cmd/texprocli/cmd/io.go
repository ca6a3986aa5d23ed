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
	"encoding/json"
	"os"

	"github.com/cinode/texpro/pkg/texpro/graph"
)

func loadGraph(path string) (*graph.NodeGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ng := graph.New()
	if err := json.Unmarshal(data, ng); err != nil {
		return nil, err
	}
	return ng, nil
}

func saveGraph(path string, ng *graph.NodeGraph) error {
	data, err := json.MarshalIndent(ng, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
