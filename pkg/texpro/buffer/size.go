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

// Package buffer implements TransientBuffer, TransientBufferContainer and
// TransientBufferCache (§4.6): single-channel float32 pixel planes that
// transparently spill to a temp file when the process-wide resident byte
// threshold is exceeded.
package buffer

// Size is the pixel dimensions of a single-channel buffer.
type Size struct {
	Width  uint32
	Height uint32
}

// PixelCount returns Width * Height.
func (s Size) PixelCount() int {
	return int(s.Width) * int(s.Height)
}
