/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package arena owns the fixed-capacity, zero-initialized byte regions the
// rest of the module is built on: the log ring buffer and the four tick
// storage arenas. Nothing here ever grows a region after it's allocated.
package arena

import (
	"fmt"
	"sync"
	"unsafe"
)

// region is one allocation tracked for Release.
type region struct {
	name string
	mem  []byte
}

// Allocator hands out pre-sized, zeroed byte regions and releases all of
// them together. A node builds exactly one Allocator at startup.
type Allocator struct {
	mu      sync.Mutex
	regions []region
}

// New returns an empty Allocator.
func New() *Allocator {
	return &Allocator{}
}

// AllocateBytes reserves a zero-initialized arena of exactly size bytes.
// Failure here is fatal to the caller the way the original's pool allocator
// treats an allocation failure as unrecoverable; this package only reports
// it, the caller decides how loud to be about it.
func (a *Allocator) AllocateBytes(name string, size uint64) ([]byte, error) {
	buf, err := mapAnonymous(size)
	if err != nil {
		return nil, fmt.Errorf("arena: allocate %s (%d bytes): %w", name, size, err)
	}
	a.mu.Lock()
	a.regions = append(a.regions, region{name: name, mem: buf})
	a.mu.Unlock()
	return buf, nil
}

// AllocateTyped reserves a zero-initialized arena of n contiguous values of
// type T, backed by one byte region, and returns a typed view over it. The
// byte region stays reachable through the returned slice's header; Release
// unmaps the whole allocator at once, not per typed view.
func AllocateTyped[T any](a *Allocator, name string, n int) ([]T, error) {
	if n == 0 {
		return nil, nil
	}
	var zero T
	elemSize := unsafe.Sizeof(zero)
	raw, err := a.AllocateBytes(name, uint64(n)*uint64(elemSize))
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&raw[0])), n), nil
}

// Bytes reinterprets a typed arena slice as its backing bytes, the
// inverse of AllocateTyped. Used by checkpoint I/O, which only ever deals
// in raw bytes.
func Bytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	elemSize := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), uintptr(len(s))*elemSize)
}

// Release unmaps every region this allocator handed out. Call it exactly
// once, when the owning node shuts down.
func (a *Allocator) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.regions {
		unmapAnonymous(r.mem)
	}
	a.regions = nil
}

// Names returns the allocation names in the order they were requested,
// mainly useful for diagnostics (the REPL's status command prints these).
func (a *Allocator) Names() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.regions))
	for i, r := range a.regions {
		out[i] = r.name
	}
	return out
}
