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

// Package slotdata holds the produced-output payload types (SlotData,
// Image) shared between the live graph, the engine and the node kernels.
// It is a leaf package, depending only on buffer and graph, that livegraph,
// kernel and engine all import.
package slotdata

import (
	"math"

	"github.com/cinode/texpro/pkg/texpro/buffer"
	"github.com/cinode/texpro/pkg/texpro/graph"
)

// Image is the pixel payload of a SlotData: either a single Gray channel or
// four Rgba channels (R, G, B, A in that order), each an independent
// single-channel buffer container (§3, mirroring the source's SlotImage).
type Image struct {
	Gray *buffer.Container    // set iff !IsRGBA
	RGBA [4]*buffer.Container // set iff IsRGBA
}

// IsRGBA reports whether the image carries four channels rather than one.
func (img Image) IsRGBA() bool { return img.RGBA[0] != nil }

// Size returns the pixel dimensions shared by all of the image's channels.
func (img Image) Size() buffer.Size {
	if img.IsRGBA() {
		return img.RGBA[0].Size()
	}
	return img.Gray.Size()
}

// Containers returns every buffer container referenced by the image.
func (img Image) Containers() []*buffer.Container {
	if img.IsRGBA() {
		return []*buffer.Container{img.RGBA[0], img.RGBA[1], img.RGBA[2], img.RGBA[3]}
	}
	return []*buffer.Container{img.Gray}
}

// Retain bumps the reference count of every backing container, for a new
// owner (e.g. the cache, or a kernel's input snapshot).
func (img Image) Retain() Image {
	for _, c := range img.Containers() {
		c.Retain()
	}
	return img
}

// Release drops the reference held by the caller on every backing
// container.
func (img Image) Release() {
	for _, c := range img.Containers() {
		c.Release()
	}
}

// NewValueImage builds a constant single-pixel Gray buffer, used by the
// Value node kernel and as the 1x1 black placeholder substituted for a
// missing edge input (§4.4).
func NewValueImage(value float32) Image {
	return Image{Gray: buffer.NewContainer(buffer.NewMemory(buffer.Size{Width: 1, Height: 1}, []float32{value}))}
}

// NewValueImageRGBA builds a size x size constant RGBA image with alpha
// fixed at 1.0, mirroring SlotImage::from_value(rgba=true).
func NewValueImageRGBA(size buffer.Size, value float32) Image {
	n := size.PixelCount()
	mk := func(v float32) *buffer.Container {
		data := make([]float32, n)
		for i := range data {
			data[i] = v
		}
		return buffer.NewContainer(buffer.NewMemory(size, data))
	}
	return Image{RGBA: [4]*buffer.Container{mk(value), mk(value), mk(value), mk(1.0)}}
}

// SlotData is a produced output, tagged with the node and slot that produced
// it (§3).
type SlotData struct {
	NodeID graph.NodeID
	SlotID graph.SlotID
	Image  Image
}

// ToU8RGBA converts the image to 4-byte-per-pixel RGBA, linear encoding
// (§6): Gray replicates to R=G=B with A=255; Rgba maps each channel
// independently via round(clamp(x,0,1)*255).
func (s SlotData) ToU8RGBA() ([]byte, error) {
	return toU8(s.Image, linearEncode)
}

// ToU8RGBASRGB is the sRGB-encoding variant of ToU8RGBA: R, G, B are encoded
// with the standard piecewise sRGB transfer function; alpha stays linear.
func (s SlotData) ToU8RGBASRGB() ([]byte, error) {
	return toU8(s.Image, srgbEncode)
}

func linearEncode(v float32) byte { return floatToByte(v) }

func floatToByte(v float32) byte {
	c := v
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	scaled := c*255 + 0.5
	if scaled > 255 {
		scaled = 255
	}
	return byte(scaled)
}

// srgbEncode applies the piecewise linear-to-sRGB transfer function (§6)
// before quantizing to a byte.
func srgbEncode(v float32) byte {
	c := float64(v)
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	var srgb float64
	if c <= 0.0031308 {
		srgb = 12.92 * c
	} else {
		srgb = 1.055*math.Pow(c, 1.0/2.4) - 0.055
	}
	return floatToByte(float32(srgb))
}

// srgbDecode is the inverse transfer function, mapping an sRGB-encoded value
// back into the engine's linear working space.
func srgbDecode(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// SRGBToLinear exposes srgbDecode. The image Read kernel does not call it:
// decoded source pixels are stored without sRGB conversion.
func SRGBToLinear(c float64) float64 { return srgbDecode(c) }

func toU8(img Image, encodeRGB func(float32) byte) ([]byte, error) {
	size := img.Size()
	n := size.PixelCount()
	out := make([]byte, 0, n*4)

	if !img.IsRGBA() {
		data, err := img.Gray.Data()
		if err != nil {
			return nil, err
		}
		for _, v := range data {
			b := encodeRGB(v)
			out = append(out, b, b, b, 255)
		}
		return out, nil
	}

	r, err := img.RGBA[0].Data()
	if err != nil {
		return nil, err
	}
	g, err := img.RGBA[1].Data()
	if err != nil {
		return nil, err
	}
	b, err := img.RGBA[2].Data()
	if err != nil {
		return nil, err
	}
	a, err := img.RGBA[3].Data()
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		out = append(out, encodeRGB(r[i]), encodeRGB(g[i]), encodeRGB(b[i]), linearEncode(a[i]))
	}
	return out, nil
}
