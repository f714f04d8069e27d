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

import (
	"errors"
	"sync"

	"github.com/qubic-labs/ticklog/constants"
)

var (
	// ErrPayloadTooLarge is returned when a message's payload would not fit
	// in the size field of a record header.
	ErrPayloadTooLarge = errors.New("logbuf: payload exceeds maximum message size")
	// ErrRecordExceedsBuffer is returned when even a freshly-wrapped buffer
	// could not hold the record; the caller asked for something bigger than
	// the whole ring.
	ErrRecordExceedsBuffer = errors.New("logbuf: record larger than the log buffer")
)

// Ring is the append-only, wrap-around event log (B1). It owns the backing
// byte arena and the monotonic logId counter; B2 and B3 are built on top of
// it rather than inside it, the same separation the indexes have from the
// buffer in the original.
type Ring struct {
	mu   sync.Mutex
	buf  []byte
	tail uint64

	nextLogID uint64
	tickBegin uint32

	clock Clock
	ticks TickSource

	ids *IDIndex
	txs *TxIndex
}

// NewRing wires a byte arena (sized constants.Params.LogBufferSize) together
// with a clock and tick source. Pass the IDIndex/TxIndex this ring should
// keep up to date as it appends; they're built once, and the IDIndex
// shares the ring's backing buffer for logId re-reads.
func NewRing(buf []byte, clock Clock, ticks TickSource, ids *IDIndex, txs *TxIndex) *Ring {
	return &Ring{buf: buf, clock: clock, ticks: ticks, ids: ids, txs: txs}
}

// Append writes one record and returns its logId. The buffer wraps to
// offset 0 whenever the new record would run past the end — note this is
// the corrected condition, not the original's literal (and miscounted)
// one; see the log buffer design note.
func (r *Ring) Append(messageType uint8, payload []byte) (uint64, error) {
	if uint64(len(payload)) > constants.MaxMessagePayloadSize {
		return 0, ErrPayloadTooLarge
	}
	total := uint64(constants.LogRecordHeaderSize) + uint64(len(payload))
	if total > uint64(len(r.buf)) {
		return 0, ErrRecordExceedsBuffer
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tail+total > uint64(len(r.buf)) {
		r.tail = 0
	}

	id := r.nextLogID
	offset := r.tail

	header := newRecordHeader(r.clock.Now(), r.ticks.CurrentEpoch(), r.ticks.CurrentTick(), messageType, uint32(len(payload)), id)
	header.encode(r.buf[offset:])
	copy(r.buf[offset+constants.LogRecordHeaderSize:], payload)

	r.ids.set(id, offset, total)
	r.txs.addLogID(id)

	r.tail = offset + total
	r.nextLogID = id + 1
	return id, nil
}

// Reset clears the ring back to an empty state with a new starting tick,
// the way the original's qLogger::reset does at the start of each epoch.
func (r *Ring) Reset(tickBegin uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tail = 0
	r.nextLogID = 0
	r.tickBegin = tickBegin
	r.ids.reset()
	r.txs.Reset(tickBegin)
}

// NextLogID reports the id that will be assigned to the next appended
// record, useful for tests and the REPL's status command.
func (r *Ring) NextLogID() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextLogID
}

// bytes exposes the backing buffer for the request handler's range reads.
// Unexported: only logbuf itself reads raw ring bytes.
func (r *Ring) bytes() []byte { return r.buf }

// WithReadLock runs fn while holding the ring's lock, so a reader that
// resolves logId->offset through ids/txs and then reads the resolved byte
// range out of buf does so as a single critical section — the same
// logBufferLock the spec has Append hold across its own tail advance and
// B2/B3 update. Without this, a concurrent Append can overwrite the exact
// bytes a reader is mid-read on.
func (r *Ring) WithReadLock(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}
