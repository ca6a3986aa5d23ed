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

package buffer

import (
	"sync"
	"sync/atomic"
)

// Container shares one TransientBuffer between the LiveGraph's slot-data
// list, in-flight kernel inputs and the cache queue (§3, §9). Go has no weak
// pointers usable here, so sharing is tracked with an explicit reference
// count rather than relying on GC timing: the cache only evicts a container
// once Refs() drops to zero, meaning every other owner released it.
//
// Lock order: the cache's queue lock is always acquired before a
// Container's own lock (§5).
type Container struct {
	mu   sync.RWMutex
	buf  *TransientBuffer
	refs atomic.Int32
}

// NewContainer wraps buf with an initial reference count of one, owned by
// the caller.
func NewContainer(buf *TransientBuffer) *Container {
	c := &Container{buf: buf}
	c.refs.Store(1)
	return c
}

// Retain increments the reference count and returns c, for chaining at a
// call site that stores the container in a new owner.
func (c *Container) Retain() *Container {
	c.refs.Add(1)
	return c
}

// Release decrements the reference count. The cache (or an explicit sweep)
// is responsible for reclaiming a container once Refs reaches zero.
func (c *Container) Release() {
	c.refs.Add(-1)
}

// Refs returns the current external reference count.
func (c *Container) Refs() int32 {
	return c.refs.Load()
}

// Size returns the buffer's pixel dimensions, which never change after
// construction.
func (c *Container) Size() Size {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf.Size()
}

// InMemory reports whether the wrapped buffer currently holds its data
// resident.
func (c *Container) InMemory() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf.InMemory()
}

// Bytes returns the wrapped buffer's resident byte footprint.
func (c *Container) Bytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf.Bytes()
}

// Request marks the wrapped buffer as wanted, prompting the cache to bring
// it back to memory on its next pass if spilled.
func (c *Container) Request() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Request()
}

// Data returns a copy of the resident pixel data, bringing the buffer to
// memory first if it is spilled.
func (c *Container) Data() ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.buf.InMemory() {
		if _, err := c.buf.ToMemory(); err != nil {
			return nil, err
		}
	}
	out := make([]float32, len(c.buf.Data()))
	copy(out, c.buf.Data())
	return out, nil
}

// spill attempts to move the wrapped buffer to storage, returning whether a
// transition happened. Called only by the cache, under its queue lock.
func (c *Container) spill() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.ToStorage()
}

// fetch brings the wrapped buffer back to memory, returning whether a
// transition happened.
func (c *Container) fetch() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.ToMemory()
}

// isRequested reports whether Request has been called on a spilled buffer
// since its last fetch.
func (c *Container) isRequested() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buf.IsRequested()
}
