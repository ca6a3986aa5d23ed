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
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpillRoundTrip(t *testing.T) {
	data := []float32{0.1, 0.2, 0.3, 0.4}
	buf := NewMemory(Size{Width: 2, Height: 2}, data)

	changed, err := buf.ToStorage()
	require.NoError(t, err)
	require.True(t, changed)
	require.False(t, buf.InMemory())
	require.EqualValues(t, 0, buf.Bytes())

	changed, err = buf.ToMemory()
	require.NoError(t, err)
	require.True(t, changed)
	require.True(t, buf.InMemory())
	require.Equal(t, data, buf.Data())
}

func TestToStorageIsNoopWhenAlreadySpilled(t *testing.T) {
	buf := NewMemory(Size{Width: 1, Height: 1}, []float32{1})
	_, err := buf.ToStorage()
	require.NoError(t, err)

	changed, err := buf.ToStorage()
	require.NoError(t, err)
	require.False(t, changed)
}

func TestCacheSpillsUnderThreshold(t *testing.T) {
	var shutdown atomic.Bool
	cache := NewCache(8, &shutdown, nil) // 8 bytes = 2 float32s resident

	c1 := NewContainer(NewMemory(Size{Width: 2, Height: 1}, []float32{0, 0}))
	c2 := NewContainer(NewMemory(Size{Width: 2, Height: 1}, []float32{0, 0}))
	cache.Push(c1)
	cache.Push(c2)

	cache.Tick()

	// One of the two (8 bytes each) must have been spilled to fit under the
	// 8-byte threshold.
	require.True(t, c1.InMemory() != c2.InMemory())
}

func TestCacheDropsUnreferencedContainers(t *testing.T) {
	var shutdown atomic.Bool
	cache := NewCache(1<<30, &shutdown, nil)

	c := NewContainer(NewMemory(Size{Width: 1, Height: 1}, []float32{1}))
	cache.Push(c)
	require.Equal(t, 1, cache.Len())

	c.Release()
	cache.Tick()
	require.Equal(t, 0, cache.Len())
}

func TestPushOrderingPrefersSpilledAsVictim(t *testing.T) {
	var shutdown atomic.Bool
	cache := NewCache(1<<30, &shutdown, nil)

	resident := NewContainer(NewMemory(Size{Width: 1, Height: 1}, []float32{1}))
	spilled := NewContainer(NewMemory(Size{Width: 1, Height: 1}, []float32{2}))
	_, err := spilled.spill()
	require.NoError(t, err)

	cache.Push(resident)
	cache.Push(spilled)

	front := cache.queue.Front().Value.(*Container)
	require.Same(t, spilled, front)
}
