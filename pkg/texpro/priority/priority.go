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

// Package priority implements the propagated-priority cells shared between a
// node and its LiveGraph, and the propagator that keeps propagated priorities
// consistent with the rule:
//
//	propagated(N) = max(own(N), max over children C of propagated(C))
package priority

import (
	"sync/atomic"
)

// Cell is the shared priority state of a single node. It is safe for
// concurrent use: own/propagated values and the touched flag are atomics, so
// readers (the scheduler, admission) never need the owning LiveGraph's lock.
type Cell struct {
	own        atomic.Int32 // int8 range, widened for atomic convenience
	propagated atomic.Int32
	touched    atomic.Bool
}

// NewCell creates a priority cell with the given initial own priority. The
// cell starts touched so the first propagator pass assigns its propagated
// value.
func NewCell(own int8) *Cell {
	c := &Cell{}
	c.own.Store(int32(own))
	c.propagated.Store(int32(own))
	c.touched.Store(true)
	return c
}

// Own returns the node's own (unpropagated) priority.
func (c *Cell) Own() int8 { return int8(c.own.Load()) }

// SetOwn updates the own priority and marks the cell touched if it changed.
func (c *Cell) SetOwn(v int8) {
	if c.own.Swap(int32(v)) != int32(v) {
		c.touched.Store(true)
	}
}

// Propagated returns the current propagated priority.
func (c *Cell) Propagated() int8 { return int8(c.propagated.Load()) }

// Touch marks the cell as needing re-propagation, e.g. after a structural
// edit that may affect it without itself changing own priority.
func (c *Cell) Touch() { c.touched.Store(true) }

// touchedAndClear reports whether the cell is touched, clearing the flag.
func (c *Cell) touchedAndClear() bool {
	return c.touched.Swap(false)
}

// fetchMaxPropagated sets propagated to max(current, v), returning the
// previous value and whether it changed.
func (c *Cell) fetchMaxPropagated(v int32) (prev int32, changed bool) {
	for {
		cur := c.propagated.Load()
		if v <= cur {
			return cur, false
		}
		if c.propagated.CompareAndSwap(cur, v) {
			return cur, true
		}
	}
}
