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

// txInfo is one entry in the flat tx→log ring: the transaction it
// describes, the logId of its first logged record, and how many
// consecutive records belong to it.
type txInfo struct {
	hash       [32]byte
	firstLogID uint64
	count      uint64
}

// tickSpan locates a tick's run of entries inside the flat ring. start is
// -1 when the tick has no entries yet, mirroring the original's
// BlobInfo{-1,-1} sentinel (a zero-valued span would be indistinguishable
// from "tick 0 has one entry at ring position 0").
type tickSpan struct {
	start, length int64
}

// TxIndex is the two-level tx→log index (B3): a flat ring of txInfo plus a
// per-tick span into that ring, so "all log records for transaction X in
// tick Y" is a span lookup followed by a short linear scan, not a scan of
// the whole ring.
type TxIndex struct {
	mu sync.Mutex

	entries []txInfo
	counter uint64

	tickIndex []tickSpan
	tickBegin uint32

	currentTick uint32
	currentHash [32]byte
	hasCurrent  bool
}

// NewTxIndex builds an index with ringSize entries and room for
// ticksPerEpoch distinct ticks.
func NewTxIndex(ringSize uint64, ticksPerEpoch uint32) *TxIndex {
	t := &TxIndex{
		entries:   make([]txInfo, ringSize),
		tickIndex: make([]tickSpan, ticksPerEpoch),
	}
	t.resetLocked(0)
	return t
}

func (t *TxIndex) resetLocked(tickBegin uint32) {
	for i := range t.entries {
		t.entries[i] = txInfo{}
	}
	for i := range t.tickIndex {
		t.tickIndex[i] = tickSpan{start: -1, length: -1}
	}
	t.counter = 0
	t.tickBegin = tickBegin
	t.hasCurrent = false
}

// Reset clears every entry and span and rebases the index at tickBegin,
// called when a new epoch starts.
func (t *TxIndex) Reset(tickBegin uint32) {
	t.mu.Lock()
	t.resetLocked(tickBegin)
	t.mu.Unlock()
}

// RegisterNewTx records which transaction subsequent logMessage calls
// belong to. Only updates the "current" marker when either the tick or
// the hash actually changed, matching the original's guard against
// clobbering the in-progress entry on every call.
func (t *TxIndex) RegisterNewTx(tick uint32, hash [32]byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasCurrent || t.currentTick != tick || t.currentHash != hash {
		t.currentTick = tick
		t.currentHash = hash
		t.hasCurrent = true
	}
}

// addLogID extends or starts the tx→log entry for whatever transaction was
// last registered. Called once per appended record, while the ring's lock
// is already held.
func (t *TxIndex) addLogID(logID uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasCurrent {
		return
	}

	tickOffset := int(t.currentTick - t.tickBegin)
	if tickOffset < 0 || tickOffset >= len(t.tickIndex) {
		return
	}

	if t.counter > 0 {
		last := &t.entries[(t.counter-1)%uint64(len(t.entries))]
		// Extending the last entry is a real comparison. Opening a new
		// entry below stores the hash by assignment; the original writes
		// that store as a no-op comparison (==) instead.
		if last.hash == t.currentHash {
			last.count++
			return
		}
	}

	idx := t.counter % uint64(len(t.entries))
	t.entries[idx] = txInfo{hash: t.currentHash, firstLogID: logID, count: 1}

	span := &t.tickIndex[tickOffset]
	if span.start == -1 {
		span.start = int64(t.counter)
		span.length = 1
	} else {
		span.length++
	}
	t.counter++
}

// LogIDInfo returns the first logId and record count for a transaction in
// a given tick, or (-1, -1) if no record was ever logged for it.
func (t *TxIndex) LogIDInfo(tick uint32, hash [32]byte) (firstLogID int64, length int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tickOffset := int(tick - t.tickBegin)
	if tickOffset < 0 || tickOffset >= len(t.tickIndex) {
		return -1, -1
	}
	span := t.tickIndex[tickOffset]
	if span.start == -1 {
		return -1, -1
	}
	end := span.start + span.length
	for i := span.start; i < end; i++ {
		e := &t.entries[uint64(i)%uint64(len(t.entries))]
		if e.hash == hash {
			return int64(e.firstLogID), int64(e.count)
		}
	}
	return -1, -1
}
