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
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// NodeID uniquely identifies a node within a single NodeGraph. Values are
// assigned randomly at insertion time and retried on collision rather than
// handed out sequentially, so ids remain stable across node removal.
type NodeID uint32

func (n NodeID) String() string {
	return fmt.Sprintf("node-%08x", uint32(n))
}

// SlotID distinguishes parallel inputs or outputs on a single node.
type SlotID uint32

func (s SlotID) String() string {
	return fmt.Sprintf("slot-%d", uint32(s))
}

func newRandomNodeID() NodeID {
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	return NodeID(binary.BigEndian.Uint32(buf[:]))
}
