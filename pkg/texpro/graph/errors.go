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

package graph

import "errors"

var (
	ErrInvalidNodeID   = errors.New("invalid node id")
	ErrInvalidSlotID   = errors.New("invalid slot id")
	ErrInvalidSlotType = errors.New("invalid slot type")
	ErrInvalidEdge     = errors.New("invalid edge")
	ErrInvalidName     = errors.New("invalid or duplicate endpoint name")
	ErrSlotOccupied    = errors.New("slot occupied")
	ErrSlotNotOccupied = errors.New("slot not occupied")
)
