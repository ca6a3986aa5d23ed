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
	"container/list"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Cache is the process-wide TransientBufferCache (§4.6): an ordered queue of
// containers plus a resident-byte threshold. A single dedicated goroutine
// runs Tick in a loop; Push is safe to call concurrently from any worker.
type Cache struct {
	mu        sync.Mutex
	queue     *list.List // of *Container, front = next eviction candidate
	threshold atomic.Int64
	shutdown  *atomic.Bool
	log       *slog.Logger
}

// NewCache creates a cache enforcing threshold resident bytes, stopping its
// loop once shutdown is set.
func NewCache(threshold int64, shutdown *atomic.Bool, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	c := &Cache{
		queue:    list.New(),
		shutdown: shutdown,
		log:      log,
	}
	c.threshold.Store(threshold)
	return c
}

// SetThreshold adjusts the resident-byte threshold live.
func (c *Cache) SetThreshold(bytes int64) { c.threshold.Store(bytes) }

// Push enqueues a newly produced container. Containers already in memory go
// to the back (least likely to be evicted next); containers that arrive
// already spilled go to the front, so they are preferred eviction victims
// over buffers nobody has re-requested yet (§4.6).
func (c *Cache) Push(container *Container) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if container.InMemory() {
		c.queue.PushBack(container)
	} else {
		c.queue.PushFront(container)
	}
}

// Tick performs one maintenance pass: drop containers nobody references any
// more, bring requested spilled containers back to memory, then spill from the front of the queue until resident bytes are at
// or under the threshold, or the front entry cannot be spilled further.
func (c *Cache) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for e := c.queue.Front(); e != nil; {
		next := e.Next()
		container := e.Value.(*Container)
		if container.Refs() <= 0 {
			c.queue.Remove(e)
		} else if !container.InMemory() && container.isRequested() {
			if _, err := container.fetch(); err != nil {
				c.log.Warn("failed to fetch requested buffer", slog.Any("err", err))
			}
		}
		e = next
	}

	var resident int64
	for e := c.queue.Front(); e != nil; e = e.Next() {
		resident += e.Value.(*Container).Bytes()
	}

	threshold := c.threshold.Load()
	for resident > threshold {
		front := c.queue.Front()
		if front == nil {
			break
		}
		container := front.Value.(*Container)
		if !container.InMemory() {
			// Already spilled and still over threshold: nothing left to
			// spill from the front; stop rather than spin.
			break
		}
		bytes := container.Bytes()
		spilled, err := container.spill()
		if err != nil {
			c.log.Warn("failed to spill buffer", slog.Any("err", err))
			break
		}
		if !spilled {
			break
		}
		resident -= bytes
		c.queue.MoveToBack(front)
	}
}

// Len reports the number of containers currently tracked by the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Len()
}

// Run loops Tick until shutdown is observed, sleeping briefly between
// passes (the cache's own dedicated goroutine, §4.7).
func (c *Cache) Run(interval time.Duration) {
	for !c.shutdown.Load() {
		c.Tick()
		time.Sleep(interval)
	}
}
