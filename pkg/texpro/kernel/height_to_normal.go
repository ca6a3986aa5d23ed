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

import (
	"math"

	"github.com/cinode/texpro/pkg/texpro/buffer"
	"github.com/cinode/texpro/pkg/texpro/errs"
	"github.com/cinode/texpro/pkg/texpro/slotdata"
)

// runHeightToNormal computes a tangent-space normal map from a height field
// (slot 0) via wraparound neighbor sampling and a cross product, remapped to
// [0,1] (§4.8). The node's cancel flag and the global shutdown flag are
// checked once per scanline, satisfying the per-scanline suspension-point
// requirement (§5).
func runHeightToNormal(in Input) ([]slotdata.SlotData, error) {
	sd, ok := in.Slots[0]
	if !ok {
		return nil, nil
	}
	if sd.Image.IsRGBA() {
		return nil, nil
	}

	size := sd.Image.Size()
	width, height := int(size.Width), int(size.Height)
	heightData, err := sd.Image.Gray.Data()
	if err != nil {
		return nil, err
	}

	pixelDistX := float32(1) / float32(width)
	pixelDistY := float32(1) / float32(height)

	normalX := make([]float32, width*height)
	normalY := make([]float32, width*height)
	normalZ := make([]float32, width*height)

	at := func(x, y int) float32 { return heightData[y*width+x] }
	wrap := func(v, max int) int {
		v %= max
		if v < 0 {
			v += max
		}
		return v
	}

	for y := 0; y < height; y++ {
		if in.cancelled() {
			return nil, errs.ErrCanceled
		}
		for x := 0; x < width; x++ {
			px := at(x, y)
			sampleUp := at(x, wrap(y-1, height))
			sampleLeft := at(wrap(x-1, width), y)

			tx, ty, tz := normalize3(pixelDistX, 0, px-sampleLeft)
			bx, by, bz := normalize3(0, pixelDistY, sampleUp-px)
			cx, cy, cz := cross3(tx, ty, tz, bx, by, bz)
			nx, ny, nz := normalize3(cx, cy, cz)

			idx := y*width + x
			normalX[idx] = nx*0.5 + 0.5
			normalY[idx] = ny*0.5 + 0.5
			normalZ[idx] = nz*0.5 + 0.5
		}
	}

	if in.cancelled() {
		return nil, errs.ErrCanceled
	}

	out := slotdata.Image{RGBA: [4]*buffer.Container{
		buffer.NewContainer(buffer.NewMemory(size, normalX)),
		buffer.NewContainer(buffer.NewMemory(size, normalY)),
		buffer.NewContainer(buffer.NewMemory(size, normalZ)),
		constantChannel(size, 1.0),
	}}
	return []slotdata.SlotData{{NodeID: in.NodeID, SlotID: 0, Image: out}}, nil
}

func normalize3(x, y, z float32) (float32, float32, float32) {
	length := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if length == 0 {
		return 0, 0, 0
	}
	return x / length, y / length, z / length
}

func cross3(ax, ay, az, bx, by, bz float32) (float32, float32, float32) {
	return ay*bz - az*by, az*bx - ax*bz, ax*by - ay*bx
}
