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
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/cinode/texpro/pkg/texpro/buffer"
	"github.com/cinode/texpro/pkg/texpro/errs"
	"github.com/cinode/texpro/pkg/texpro/graph"
	"github.com/cinode/texpro/pkg/texpro/slotdata"
)

// resizeInputs reconciles a node's connected inputs to one working size per
// its ResizePolicy before the kernel runs (§4.8). A node with fewer than two
// connected inputs never needs resizing.
func resizeInputs(slots map[graph.SlotID]slotdata.SlotData, policy graph.ResizePolicy, filter graph.ResizeFilter) (map[graph.SlotID]slotdata.SlotData, error) {
	if len(slots) < 2 {
		return slots, nil
	}

	target, err := targetSize(slots, policy)
	if err != nil {
		return nil, err
	}

	out := make(map[graph.SlotID]slotdata.SlotData, len(slots))
	for id, sd := range slots {
		if sd.Image.Size() == target {
			out[id] = sd
			continue
		}
		resized, err := resizeImage(sd.Image, target, filter)
		if err != nil {
			return nil, err
		}
		sd.Image = resized
		out[id] = sd
	}
	return out, nil
}

func targetSize(slots map[graph.SlotID]slotdata.SlotData, policy graph.ResizePolicy) (buffer.Size, error) {
	switch policy.Kind {
	case graph.ResizeMostPixels:
		var best buffer.Size
		bestN := -1
		for _, sd := range slots {
			s := sd.Image.Size()
			if n := s.PixelCount(); n > bestN {
				bestN, best = n, s
			}
		}
		return best, nil

	case graph.ResizeLeastPixels:
		var best buffer.Size
		bestN := -1
		for _, sd := range slots {
			s := sd.Image.Size()
			if n := s.PixelCount(); bestN == -1 || n < bestN {
				bestN, best = n, s
			}
		}
		return best, nil

	case graph.ResizeLargestAxes:
		var w, h uint32
		for _, sd := range slots {
			s := sd.Image.Size()
			if s.Width > w {
				w = s.Width
			}
			if s.Height > h {
				h = s.Height
			}
		}
		return buffer.Size{Width: w, Height: h}, nil

	case graph.ResizeSmallestAxes:
		w, h := uint32(math.MaxUint32), uint32(math.MaxUint32)
		for _, sd := range slots {
			s := sd.Image.Size()
			if s.Width < w {
				w = s.Width
			}
			if s.Height < h {
				h = s.Height
			}
		}
		return buffer.Size{Width: w, Height: h}, nil

	case graph.ResizeSpecificSlot:
		if sd, ok := slots[policy.SpecificSlot]; ok {
			return sd.Image.Size(), nil
		}
		return buffer.Size{Width: 1, Height: 1}, nil

	case graph.ResizeSpecificSize:
		return buffer.Size{Width: policy.Width, Height: policy.Height}, nil

	default:
		return buffer.Size{}, errs.ErrInvalidBufferCount
	}
}

func resizeImage(img slotdata.Image, target buffer.Size, filter graph.ResizeFilter) (slotdata.Image, error) {
	if img.IsRGBA() {
		var out [4]*buffer.Container
		for i := 0; i < 4; i++ {
			c, err := resizeContainer(img.RGBA[i], target, filter)
			if err != nil {
				return slotdata.Image{}, err
			}
			out[i] = c
		}
		return slotdata.Image{RGBA: out}, nil
	}
	c, err := resizeContainer(img.Gray, target, filter)
	if err != nil {
		return slotdata.Image{}, err
	}
	return slotdata.Image{Gray: c}, nil
}

func resizeContainer(c *buffer.Container, target buffer.Size, filter graph.ResizeFilter) (*buffer.Container, error) {
	data, err := c.Data()
	if err != nil {
		return nil, err
	}
	size := c.Size()
	w, h := int(size.Width), int(size.Height)
	nw, nh := int(target.Width), int(target.Height)

	var resized []float32
	if filter == graph.FilterGaussian {
		resized = gaussianResizeChannel(data, w, h, nw, nh)
	} else {
		resized = resizeChannelFloats(data, w, h, nw, nh, interpolatorFor(filter))
	}
	return buffer.NewContainer(buffer.NewMemory(target, resized)), nil
}

// interpolatorFor maps a ResizeFilter onto an x/image/draw scaler.
// x/image/draw carries no native Lanczos kernel, so Lanczos3 is mapped onto
// CatmullRom, its highest-quality scaler (see DESIGN.md); Gaussian bypasses
// this mapping entirely in favor of a hand-rolled box-blur pre-pass.
func interpolatorFor(f graph.ResizeFilter) draw.Interpolator {
	switch f {
	case graph.FilterNearest:
		return draw.NearestNeighbor
	case graph.FilterTriangle:
		return draw.ApproxBiLinear
	case graph.FilterCatmullRom, graph.FilterLanczos3:
		return draw.CatmullRom
	default:
		return draw.ApproxBiLinear
	}
}

// floatChannel adapts a single float32 plane to image.Image/draw.Image so
// x/image/draw's scalers can resize it directly. Values are treated as
// normalized [0,1] texture data (§6): they are clamped to that range when
// converted to the 16-bit channel x/image/draw's color model expects, so an
// out-of-range HDR intermediate is clipped by a resize - a documented
// limitation (see DESIGN.md).
type floatChannel struct {
	w, h int
	pix  []float32
}

func newFloatChannel(w, h int) *floatChannel {
	return &floatChannel{w: w, h: h, pix: make([]float32, w*h)}
}

func (p *floatChannel) ColorModel() color.Model { return color.Gray16Model }
func (p *floatChannel) Bounds() image.Rectangle { return image.Rect(0, 0, p.w, p.h) }

func (p *floatChannel) At(x, y int) color.Color {
	return color.Gray16{Y: floatToGray16(p.pix[y*p.w+x])}
}

func (p *floatChannel) Set(x, y int, c color.Color) {
	g := color.Gray16Model.Convert(c).(color.Gray16)
	p.pix[y*p.w+x] = float32(g.Y) / 0xffff
}

func floatToGray16(v float32) uint16 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint16(v*0xffff + 0.5)
}

func resizeChannelFloats(data []float32, w, h, nw, nh int, interp draw.Interpolator) []float32 {
	src := &floatChannel{w: w, h: h, pix: data}
	dst := newFloatChannel(nw, nh)
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst.pix
}

// gaussianResizeChannel approximates a Gaussian-filtered resize with a
// separable box blur sized to the downscale ratio followed by a bilinear
// resample, since x/image/draw has no native Gaussian scaler.
func gaussianResizeChannel(data []float32, w, h, nw, nh int) []float32 {
	blurred := data
	if rx := blurRadius(w, nw); rx > 0 {
		blurred = boxBlurHoriz(blurred, w, h, rx)
	}
	if ry := blurRadius(h, nh); ry > 0 {
		blurred = boxBlurVert(blurred, w, h, ry)
	}
	return resizeChannelFloats(blurred, w, h, nw, nh, draw.ApproxBiLinear)
}

func blurRadius(from, to int) int {
	if to <= 0 || from <= to {
		return 0
	}
	return (from/to - 1) / 2
}

func boxBlurHoriz(data []float32, w, h, radius int) []float32 {
	out := make([]float32, len(data))
	window := float32(2*radius + 1)
	for y := 0; y < h; y++ {
		row := data[y*w : (y+1)*w]
		outRow := out[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			var sum float32
			for k := -radius; k <= radius; k++ {
				sum += row[clampInt(x+k, 0, w-1)]
			}
			outRow[x] = sum / window
		}
	}
	return out
}

func boxBlurVert(data []float32, w, h, radius int) []float32 {
	out := make([]float32, len(data))
	window := float32(2*radius + 1)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			var sum float32
			for k := -radius; k <= radius; k++ {
				sum += data[clampInt(y+k, 0, h-1)*w+x]
			}
			out[y*w+x] = sum / window
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
