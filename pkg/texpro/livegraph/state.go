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

// Package livegraph implements LiveGraph: one editable NodeGraph instance
// plus the per-node lifecycle state map, dirty propagation, readiness
// traversal (§4.3) and the priority propagator that governs it.
package livegraph

// State is a node's lifecycle state (§3). A node is created Dirty; it
// becomes Clean only on successful kernel completion, and reverts to Dirty
// on any upstream or self change.
type State byte

const (
	StateDirty State = iota
	StateRequested
	StatePrioritised
	StateProcessing
	StateProcessingDirty
	StateClean
)

func (s State) String() string {
	switch s {
	case StateDirty:
		return "Dirty"
	case StateRequested:
		return "Requested"
	case StatePrioritised:
		return "Prioritised"
	case StateProcessing:
		return "Processing"
	case StateProcessingDirty:
		return "ProcessingDirty"
	case StateClean:
		return "Clean"
	default:
		return "Unknown"
	}
}

// readyForDiscovery reports whether a node in this state is a candidate
// under request-mode discovery (§4.4 step 2).
func (s State) readyForDiscovery() bool {
	return s == StateRequested || s == StatePrioritised
}

// autoUpdateCandidate reports whether a node in this state is a candidate
// under auto-update discovery: every node not already Processing or Clean.
func (s State) autoUpdateCandidate() bool {
	return s != StateProcessing && s != StateClean
}
