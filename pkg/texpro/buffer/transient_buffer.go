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
	"encoding/binary"
	"os"
)

const bytesPerFloat = 4

// TransientBuffer is a single-channel pixel plane that is either resident in
// memory or spilled to a temporary file. The spill file format is a
// pixel-major sequence of native-endian IEEE-754 float32 values, exactly
// Width*Height of them, with no header (§6).
type TransientBuffer struct {
	size      Size
	mem       []float32
	file      *os.File
	requested bool
}

// NewMemory wraps data (len must equal size.PixelCount()) as a resident
// buffer.
func NewMemory(size Size, data []float32) *TransientBuffer {
	return &TransientBuffer{size: size, mem: data}
}

// Size returns the buffer's pixel dimensions.
func (b *TransientBuffer) Size() Size { return b.size }

// InMemory reports whether the buffer currently holds its data resident.
func (b *TransientBuffer) InMemory() bool { return b.mem != nil }

// Bytes returns the resident byte footprint of the buffer: zero once
// spilled, since bytes on disk do not count against the memory threshold.
func (b *TransientBuffer) Bytes() int64 {
	if !b.InMemory() {
		return 0
	}
	return int64(b.size.PixelCount() * bytesPerFloat)
}

// Request marks the buffer as wanted by a reader. This is a no-op while
// resident; while spilled it signals the cache to bring it back to memory on
// the next pass.
func (b *TransientBuffer) Request() {
	if !b.InMemory() {
		b.requested = true
	}
}

// IsRequested reports whether Request has been called since the last
// ToMemory transition.
func (b *TransientBuffer) IsRequested() bool { return b.requested }

// Data returns the resident pixel slice. Callers must check InMemory first;
// calling this on a spilled buffer panics, mirroring an unwrap on an enum
// variant mismatch in the source.
func (b *TransientBuffer) Data() []float32 {
	if !b.InMemory() {
		panic("buffer: Data called on a spilled TransientBuffer")
	}
	return b.mem
}

// ToStorage serializes the resident buffer to a new temp file and drops the
// in-memory copy, returning whether a transition actually happened (false if
// already spilled).
func (b *TransientBuffer) ToStorage() (bool, error) {
	if !b.InMemory() {
		return false, nil
	}

	f, err := os.CreateTemp("", "texpro-buffer-*.bin")
	if err != nil {
		return false, err
	}

	if err := binary.Write(f, binary.NativeEndian, b.mem); err != nil {
		f.Close()
		os.Remove(f.Name())
		return false, err
	}

	b.file = f
	b.mem = nil
	return true, nil
}

// ToMemory reads the spilled file back into memory and releases the file,
// returning whether a transition happened (false if already resident).
func (b *TransientBuffer) ToMemory() (bool, error) {
	if b.InMemory() {
		return false, nil
	}

	if _, err := b.file.Seek(0, 0); err != nil {
		return false, err
	}

	data := make([]float32, b.size.PixelCount())
	if err := binary.Read(b.file, binary.NativeEndian, data); err != nil {
		return false, err
	}

	name := b.file.Name()
	b.file.Close()
	os.Remove(name)
	b.file = nil
	b.mem = data
	b.requested = false
	return true, nil
}
