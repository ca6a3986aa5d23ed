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

// Package fingerprint produces a stable, human-shareable content digest for
// a serialized NodeGraph. It reuses exactly the hash-then-base58 pattern the
// teacher uses for its own content-addressed blob names
// (pkg/common.BlobName), applied to the canonical JSON encoding of a graph
// instead of to a blob's raw bytes.
package fingerprint

import (
	base58 "github.com/jbenet/go-base58"
	"golang.org/x/crypto/blake2b"
)

// Of returns the base58-encoded blake2b-256 digest of data.
func Of(data []byte) string {
	sum := blake2b.Sum256(data)
	return base58.Encode(sum[:])
}
