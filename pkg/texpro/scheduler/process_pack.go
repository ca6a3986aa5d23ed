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

// Package scheduler implements the priority-propagating bounded-admission
// scheduler (§4.5): ProcessPackManager decides, tick over tick, which
// candidate nodes actually get a worker, preempting lower-priority admitted
// work only when a strictly higher-priority candidate needs the slot.
package scheduler

import (
	"runtime"
	"sort"
	"sync"

	"github.com/cinode/texpro/pkg/texpro/graph"
	"github.com/cinode/texpro/pkg/texpro/livegraph"
	"github.com/cinode/texpro/pkg/texpro/priority"
)

// ProcessPack is a unit of admission: a node awaiting a worker, the priority
// cell that ranks it, and the live graph that owns it.
type ProcessPack struct {
	NodeID    graph.NodeID
	Priority  *priority.Cell
	LiveGraph *livegraph.LiveGraph
}

// ProcessPackManager tracks the set of currently admitted process packs and
// decides admission for each tick's candidate set (§4.5). It is safe for
// concurrent use.
type ProcessPackManager struct {
	mu           sync.Mutex
	processPacks []ProcessPack
	MaxCount     int
}

// New creates a manager whose default admission limit is the number of
// logical CPUs, mirroring the source's use of num_cpus::get().
func New() *ProcessPackManager {
	return &ProcessPackManager{MaxCount: runtime.NumCPU()}
}

// Update is given this tick's candidate packs (freshly discovered
// processable nodes) and returns the subset that were newly admitted. Packs
// already admitted from a prior tick are tracked internally and are not
// re-returned.
//
// Admission order favors the highest propagated priority: candidates are
// tried from highest to lowest; while there is a free slot every candidate
// is admitted; once slots are full, a candidate is admitted only if its
// priority is strictly greater than the lowest-priority currently admitted
// pack, which is then preempted (its node's cancel flag is set, and it is
// evicted from the tracked set - the running worker discovers the
// cancellation cooperatively). Equal priority never preempts.
func (m *ProcessPackManager) Update(candidates []ProcessPack) ([]ProcessPack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeClean()
	sortByPriority(m.processPacks)
	if len(m.processPacks) > m.MaxCount {
		m.processPacks = m.processPacks[:m.MaxCount]
	}

	sortByPriority(candidates)

	var admitted []ProcessPack
	for len(candidates) > 0 {
		pp := candidates[len(candidates)-1]
		candidates = candidates[:len(candidates)-1]

		if len(m.processPacks) < m.MaxCount {
			if ok := m.insertByPriority(pp); ok {
				admitted = append(admitted, pp)
			}
			continue
		}

		if pp.Priority.Propagated() > m.processPacks[0].Priority.Propagated() {
			if ok := m.insertByPriority(pp); !ok {
				continue
			}
			evicted := m.processPacks[0]
			m.processPacks = m.processPacks[1:]
			if flag := evicted.LiveGraph.CancelFlag(evicted.NodeID); flag != nil {
				flag.Store(true)
			}
			admitted = append(admitted, pp)
			continue
		}

		break
	}

	return admitted, nil
}

// removeClean drops any tracked pack whose node has since gone Clean (or
// been deleted).
func (m *ProcessPackManager) removeClean() {
	kept := m.processPacks[:0]
	for _, pp := range m.processPacks {
		state, err := pp.LiveGraph.State(pp.NodeID)
		if err != nil {
			continue
		}
		if state == livegraph.StateClean {
			continue
		}
		kept = append(kept, pp)
	}
	m.processPacks = kept
}

// insertByPriority un-cancels the node (a previous preemption may have
// cancelled it) and inserts pp into the tracked set at its sorted position.
// Reports false if the node no longer exists.
func (m *ProcessPackManager) insertByPriority(pp ProcessPack) bool {
	flag := pp.LiveGraph.CancelFlag(pp.NodeID)
	if flag == nil {
		return false
	}
	flag.Store(false)

	pos := sort.Search(len(m.processPacks), func(i int) bool {
		return m.processPacks[i].Priority.Propagated() >= pp.Priority.Propagated()
	})
	m.processPacks = append(m.processPacks, ProcessPack{})
	copy(m.processPacks[pos+1:], m.processPacks[pos:])
	m.processPacks[pos] = pp
	return true
}

func sortByPriority(packs []ProcessPack) {
	sort.SliceStable(packs, func(i, j int) bool {
		return packs[i].Priority.Propagated() < packs[j].Priority.Propagated()
	})
}

// Admitted returns a snapshot of the currently admitted process packs.
func (m *ProcessPackManager) Admitted() []ProcessPack {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ProcessPack, len(m.processPacks))
	copy(out, m.processPacks)
	return out
}
