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
	"github.com/cinode/texpro/pkg/texpro/graph"
	"github.com/cinode/texpro/pkg/texpro/slotdata"
)

func mixOp(kind graph.MixType) func(a, b float32) float32 {
	switch kind {
	case graph.MixAdd:
		return func(a, b float32) float32 { return a + b }
	case graph.MixSubtract:
		return func(a, b float32) float32 { return a - b }
	case graph.MixMultiply:
		return func(a, b float32) float32 { return a * b }
	case graph.MixDivide:
		return func(a, b float32) float32 { return a / b }
	case graph.MixPow:
		return func(a, b float32) float32 { return float32(math.Pow(float64(a), float64(b))) }
	default:
		return func(a, b float32) float32 { return a }
	}
}

// zeroImage builds an all-zero image shaped like the given image, used when
// one side of a Mix is unconnected (§4.8).
func zeroImage(like slotdata.Image) slotdata.Image {
	size := like.Size()
	if like.IsRGBA() {
		return fillImageRGBA(size, 0)
	}
	return fillImageGray(size, 0)
}

func fillImageGray(size buffer.Size, v float32) slotdata.Image {
	n := size.PixelCount()
	data := make([]float32, n)
	for i := range data {
		data[i] = v
	}
	return slotdata.Image{Gray: buffer.NewContainer(buffer.NewMemory(size, data))}
}

func fillImageRGBA(size buffer.Size, v float32) slotdata.Image {
	mk := func() *buffer.Container {
		n := size.PixelCount()
		data := make([]float32, n)
		for i := range data {
			data[i] = v
		}
		return buffer.NewContainer(buffer.NewMemory(size, data))
	}
	return slotdata.Image{RGBA: [4]*buffer.Container{mk(), mk(), mk(), mk()}}
}

// runMix performs the per-pixel arithmetic operation over the left (slot 0)
// and right (slot 1) inputs (§4.8). A missing side defaults to a zero image
// shaped like the side that is present.
func runMix(in Input) ([]slotdata.SlotData, error) {
	left, hasLeft := in.Slots[0]
	right, hasRight := in.Slots[1]

	var leftImg, rightImg slotdata.Image
	switch {
	case hasLeft && hasRight:
		leftImg, rightImg = left.Image, right.Image
	case hasLeft:
		leftImg, rightImg = left.Image, zeroImage(left.Image)
	case hasRight:
		leftImg, rightImg = zeroImage(right.Image), right.Image
	default:
		return nil, nil
	}

	op := mixOp(in.Node.Type.Mix)
	size := leftImg.Size()

	out, err := mixImages(leftImg, rightImg, size, op)
	if err != nil {
		return nil, err
	}
	return []slotdata.SlotData{{NodeID: in.NodeID, SlotID: 0, Image: out}}, nil
}

func mixImages(left, right slotdata.Image, size buffer.Size, op func(a, b float32) float32) (slotdata.Image, error) {
	if !left.IsRGBA() && !right.IsRGBA() {
		out, err := mixChannel(left.Gray, right.Gray, size, op)
		if err != nil {
			return slotdata.Image{}, err
		}
		return slotdata.Image{Gray: out}, nil
	}

	leftRGBA := toRGBAChannels(left, size)
	rightRGBA := toRGBAChannels(right, size)

	var out [4]*buffer.Container
	for i := 0; i < 3; i++ {
		c, err := mixChannel(leftRGBA[i], rightRGBA[i], size, op)
		if err != nil {
			return slotdata.Image{}, err
		}
		out[i] = c
	}
	out[3] = constantChannel(size, 1.0)
	return slotdata.Image{RGBA: out}, nil
}

// toRGBAChannels widens a Gray image into 4 identical channels so it can be
// mixed against an Rgba image on the other side.
func toRGBAChannels(img slotdata.Image, size buffer.Size) [4]*buffer.Container {
	if img.IsRGBA() {
		return img.RGBA
	}
	return [4]*buffer.Container{img.Gray, img.Gray, img.Gray, constantChannel(size, 1.0)}
}

func constantChannel(size buffer.Size, v float32) *buffer.Container {
	n := size.PixelCount()
	data := make([]float32, n)
	for i := range data {
		data[i] = v
	}
	return buffer.NewContainer(buffer.NewMemory(size, data))
}

func mixChannel(left, right *buffer.Container, size buffer.Size, op func(a, b float32) float32) (*buffer.Container, error) {
	l, err := left.Data()
	if err != nil {
		return nil, err
	}
	r, err := right.Data()
	if err != nil {
		return nil, err
	}
	out := make([]float32, len(l))
	for i := range out {
		out[i] = op(l[i], r[i])
	}
	return buffer.NewContainer(buffer.NewMemory(size, out)), nil
}
