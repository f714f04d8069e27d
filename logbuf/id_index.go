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

package logbuf

import "sync"

type idSlot struct {
	offset uint64
	length uint64
}

// IDIndex is the direct-indexed log id lookup (B2): logId mod N picks a
// slot, and the slot is only trusted once the logId actually stored at that
// byte offset in the ring is re-read and found to match. There is no
// generic hash map here on purpose — a slot recycled by a later wrap is
// detected by this re-read, not by any bookkeeping on write.
type IDIndex struct {
	mu      sync.RWMutex
	buf     []byte // shared with the owning Ring, for logId re-reads
	entries []idSlot
}

// NewIDIndex builds an index with n slots over buf (the ring's backing
// bytes). n is typically constants.Params.LogIdIndexEntries().
func NewIDIndex(buf []byte, n uint64) *IDIndex {
	return &IDIndex{buf: buf, entries: make([]idSlot, n)}
}

func (ix *IDIndex) set(id, offset, length uint64) {
	ix.mu.Lock()
	ix.entries[id%uint64(len(ix.entries))] = idSlot{offset: offset, length: length}
	ix.mu.Unlock()
}

func (ix *IDIndex) reset() {
	ix.mu.Lock()
	for i := range ix.entries {
		ix.entries[i] = idSlot{}
	}
	ix.mu.Unlock()
}

// Get returns the byte range of the record with the given logId, and
// whether that record is still live. A slot can be "occupied" but stale
// once the ring has wrapped past it and overwritten it with a later
// record; the re-read of the stored logId is what catches that.
func (ix *IDIndex) Get(id uint64) (offset, length uint64, ok bool) {
	ix.mu.RLock()
	slot := ix.entries[id%uint64(len(ix.entries))]
	ix.mu.RUnlock()

	if slot.length == 0 {
		return 0, 0, false
	}
	if logIDAt(ix.buf, slot.offset) != id {
		return 0, 0, false
	}
	return slot.offset, slot.length, true
}
