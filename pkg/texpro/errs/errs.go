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

// Package errs holds the sentinel errors (§7) shared across the live graph,
// engine and node kernels. Graph-structural errors (invalid id, invalid
// slot, ...) live next to NodeGraph in package graph instead; these are the
// remaining kinds that only make sense once a graph is live and being
// processed.
package errs

import "errors"

var (
	ErrNoSlotData         = errors.New("no slot data stored for node/slot")
	ErrNodeProcessing     = errors.New("node is currently processing")
	ErrCanceled           = errors.New("kernel execution canceled")
	ErrUnableToLock       = errors.New("unable to acquire lock without blocking")
	ErrInvalidBufferCount = errors.New("invalid buffer count")
)
