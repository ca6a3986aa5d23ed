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
	stdimage "image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/cinode/texpro/pkg/texpro/buffer"
	"github.com/cinode/texpro/pkg/texpro/errs"
	"github.com/cinode/texpro/pkg/texpro/slotdata"
)

// runImageRead decodes the node's source file into an Rgba SlotData (§4.8).
// Decoding uses the standard library's image package (PNG/GIF registered
// here, JPEG via its decoder) rather than a third-party codec: stdlib
// already covers these formats losslessly, so a third-party codec would
// duplicate rather than extend capability (see DESIGN.md).
func runImageRead(in Input) ([]slotdata.SlotData, error) {
	f, err := os.Open(in.Node.Type.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := stdimage.Decode(f)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := uint32(bounds.Dx()), uint32(bounds.Dy())
	size := buffer.Size{Width: width, Height: height}
	n := size.PixelCount()

	r := make([]float32, n)
	g := make([]float32, n)
	b := make([]float32, n)
	a := make([]float32, n)

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			r[i] = float32(c.R) / 0xffff
			g[i] = float32(c.G) / 0xffff
			b[i] = float32(c.B) / 0xffff
			a[i] = float32(c.A) / 0xffff
			i++
		}
	}

	out := slotdata.Image{RGBA: [4]*buffer.Container{
		buffer.NewContainer(buffer.NewMemory(size, r)),
		buffer.NewContainer(buffer.NewMemory(size, g)),
		buffer.NewContainer(buffer.NewMemory(size, b)),
		buffer.NewContainer(buffer.NewMemory(size, a)),
	}}
	return []slotdata.SlotData{{NodeID: in.NodeID, SlotID: 0, Image: out}}, nil
}

// runImageWrite encodes slot 0's input to the node's destination file as
// PNG (§4.8). A node with no input connected performs no write, matching
// the source's "no slot data means nothing to do" behavior.
func runImageWrite(in Input) ([]slotdata.SlotData, error) {
	sd, ok := in.Slots[0]
	if !ok {
		return nil, nil
	}

	size := sd.Image.Size()
	pixels, err := sd.ToU8RGBA()
	if err != nil {
		return nil, err
	}
	if len(pixels) != int(size.Width)*int(size.Height)*4 {
		return nil, errs.ErrInvalidBufferCount
	}

	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, int(size.Width), int(size.Height)))
	copy(img.Pix, pixels)

	f, err := os.Create(in.Node.Type.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return nil, err
	}
	return nil, nil
}
