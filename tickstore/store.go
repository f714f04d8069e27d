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

package tickstore

import (
	"errors"
	"sync"

	"github.com/qubic-labs/ticklog/arena"
	"github.com/qubic-labs/ticklog/constants"
)

// Store is the aggregate of all four tick arenas plus the epoch window
// bookkeeping that ties them together: tick data (C1), quorum ticks (C2),
// the transaction blob (C3) and the transaction offset index (C4). It's
// one long-lived value a node builds once, the way the original keeps one
// TickStorage instance for the process lifetime.
type Store struct {
	params constants.Params

	tickDataMu sync.Mutex
	tickData   []TickData // len == 2*M (current + previous-epoch window, each sized M)

	ticksMu []sync.Mutex // len == C, one per computor
	ticks   []Tick       // len == 2*M*C

	txMu      sync.RWMutex // guards the transaction blob and offset index together
	txBlob    []byte       // len == currentSize + previousSize
	txOffsets []uint64     // len == 2*M*T

	txCurrentSize  uint64
	txPreviousSize uint64

	tickBegin, tickEnd       uint32
	oldTickBegin, oldTickEnd uint32
	nextTickTransactionOffset uint64

	debug bool
}

// NewStore allocates every arena Store needs via alloc and returns an
// empty store (call BeginEpoch before using it). debug is recorded on the
// store but nothing reads it: CheckInvariants runs its full walk whenever
// it is called.
func NewStore(alloc *arena.Allocator, p constants.Params, debug bool) (*Store, error) {
	m := int(p.MaxTicksPerEpoch)
	c := int(p.NumberOfComputors)

	tickData, err := arena.AllocateTyped[TickData](alloc, "tickstore.tickData", 2*m)
	if err != nil {
		return nil, err
	}
	ticks, err := arena.AllocateTyped[Tick](alloc, "tickstore.ticks", 2*m*c)
	if err != nil {
		return nil, err
	}
	txOffsets, err := arena.AllocateTyped[uint64](alloc, "tickstore.txOffsets", 2*m*int(p.NumberOfTransactionsPerTick))
	if err != nil {
		return nil, err
	}

	currentSize := p.CurrentTransactionBlobSize()
	previousSize := p.PreviousTransactionBlobSize()
	txBlob, err := alloc.AllocateBytes("tickstore.txBlob", currentSize+previousSize)
	if err != nil {
		return nil, err
	}

	return &Store{
		params:         p,
		tickData:       tickData,
		ticksMu:        make([]sync.Mutex, c),
		ticks:          ticks,
		txBlob:         txBlob,
		txOffsets:      txOffsets,
		txCurrentSize:  currentSize,
		txPreviousSize: previousSize,
		debug:          debug,
	}, nil
}

// Params returns the capacities this store was built with.
func (s *Store) Params() constants.Params { return s.params }

// TickBegin and TickEnd bound the current epoch's tick storage window:
// [TickBegin, TickEnd).
func (s *Store) TickBegin() uint32 { return s.tickBegin }
func (s *Store) TickEnd() uint32   { return s.tickEnd }

func (s *Store) tickInCurrentEpochStorage(tick uint32) bool {
	return tick >= s.tickBegin && tick < s.tickEnd
}

func (s *Store) tickInPreviousEpochStorage(tick uint32) bool {
	return tick >= s.oldTickBegin && tick < s.oldTickEnd
}

func (s *Store) tickToIndexCurrentEpoch(tick uint32) uint32 {
	return tick - s.tickBegin
}

func (s *Store) tickToIndexPreviousEpoch(tick uint32) uint32 {
	return s.params.MaxTicksPerEpoch + (tick - s.oldTickBegin)
}

var (
	ErrTickOutOfRange = errors.New("tickstore: tick is outside both the current and previous epoch window")
	ErrArenaFull       = errors.New("tickstore: transaction blob arena has no room left this epoch")
)

// TickDataByIndex returns the raw slot at arena index i, bypassing the
// tick-to-index translation (mirrors the original's byIndex()).
func (s *Store) TickDataByIndex(i uint32) *TickData {
	s.tickDataMu.Lock()
	defer s.tickDataMu.Unlock()
	return &s.tickData[i]
}

// TickDataByTick resolves tick against whichever of the current/previous
// epoch windows contains it.
func (s *Store) TickDataByTick(tick uint32) (*TickData, error) {
	s.tickDataMu.Lock()
	defer s.tickDataMu.Unlock()
	switch {
	case s.tickInCurrentEpochStorage(tick):
		return &s.tickData[s.tickToIndexCurrentEpoch(tick)], nil
	case s.tickInPreviousEpochStorage(tick):
		return &s.tickData[s.tickToIndexPreviousEpoch(tick)], nil
	default:
		return nil, ErrTickOutOfRange
	}
}

// TicksForTick returns the C quorum-tick slots (one per computor) for the
// given tick, in whichever epoch window contains it.
func (s *Store) TicksForTick(tick uint32) ([]Tick, error) {
	c := int(s.params.NumberOfComputors)
	var base uint32
	switch {
	case s.tickInCurrentEpochStorage(tick):
		base = s.tickToIndexCurrentEpoch(tick)
	case s.tickInPreviousEpochStorage(tick):
		base = s.tickToIndexPreviousEpoch(tick)
	default:
		return nil, ErrTickOutOfRange
	}
	start := int(base) * c
	return s.ticks[start : start+c], nil
}

// LockComputor and UnlockComputor acquire/release the per-computor lock
// for writes into the quorum ticks arena. Callers are expected to follow
// the module-wide lock ordering (tick data, then transactions, then
// ticks[c] ascending) when holding more than one of these at once.
func (s *Store) LockComputor(c int)   { s.ticksMu[c].Lock() }
func (s *Store) UnlockComputor(c int) { s.ticksMu[c].Unlock() }

// LockTickData and UnlockTickData guard writes into the tick data arena.
func (s *Store) LockTickData()   { s.tickDataMu.Lock() }
func (s *Store) UnlockTickData() { s.tickDataMu.Unlock() }

// TxOffsetsForTick returns the per-slot offset array for one tick,
// resolved against whichever epoch window contains it.
func (s *Store) TxOffsetsForTick(tick uint32) ([]uint64, error) {
	t := int(s.params.NumberOfTransactionsPerTick)
	var base uint32
	switch {
	case s.tickInCurrentEpochStorage(tick):
		base = s.tickToIndexCurrentEpoch(tick)
	case s.tickInPreviousEpochStorage(tick):
		base = s.tickToIndexPreviousEpoch(tick)
	default:
		return nil, ErrTickOutOfRange
	}
	start := int(base) * t
	return s.txOffsets[start : start+t], nil
}

// TransactionAt decodes the transaction stored at a raw blob offset, as
// previously returned by AppendTransaction or read out of TxOffsetsForTick.
func (s *Store) TransactionAt(offset uint64) (*Transaction, error) {
	s.txMu.RLock()
	defer s.txMu.RUnlock()
	return DecodeTransactionAt(s.txBlob, offset)
}

// AppendTransaction bump-allocates room for tx in the current epoch's
// transaction blob, validates it, and records its offset at (tick, slot)
// in the offset index.
func (s *Store) AppendTransaction(tick uint32, slot int, tx *Transaction) (uint64, error) {
	if err := tx.CheckValidity(s.params); err != nil {
		return 0, err
	}
	if !s.tickInCurrentEpochStorage(tick) {
		return 0, ErrTickOutOfRange
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	encoded := tx.Encode()
	offset := s.nextTickTransactionOffset
	if offset+uint64(len(encoded)) > s.txCurrentSize {
		return 0, ErrArenaFull
	}
	copy(s.txBlob[offset:], encoded)
	s.nextTickTransactionOffset = offset + uint64(len(encoded))

	idx := int(s.tickToIndexCurrentEpoch(tick))*int(s.params.NumberOfTransactionsPerTick) + slot
	s.txOffsets[idx] = offset
	return offset, nil
}

// NextTickTransactionOffset is the current epoch's bump-allocation
// cursor into the transaction blob.
func (s *Store) NextTickTransactionOffset() uint64 { return s.nextTickTransactionOffset }

// The Bytes accessors below give checkpoint I/O a raw byte view over each
// arena without it needing to know the element layout. They're the only
// way code outside this package touches arena contents directly.

func (s *Store) TickDataBytes() []byte  { return arena.Bytes(s.tickData) }
func (s *Store) TicksBytes() []byte     { return arena.Bytes(s.ticks) }
func (s *Store) TxOffsetsBytes() []byte { return arena.Bytes(s.txOffsets) }
func (s *Store) TxBlobBytes() []byte    { return s.txBlob }

// The Current* accessors below expose just the current epoch's half of
// each arena, the slice a checkpoint actually saves and loads; the
// previous-epoch tail window is never itself checkpointed, and a restored
// store has no previous-epoch window (RestoreMetadata clears it) until the
// next seamless BeginEpoch builds one.
func (s *Store) CurrentTickDataBytes() []byte {
	return arena.Bytes(s.tickData[:s.params.MaxTicksPerEpoch])
}

func (s *Store) CurrentTicksBytes() []byte {
	n := uint64(s.params.MaxTicksPerEpoch) * uint64(s.params.NumberOfComputors)
	return arena.Bytes(s.ticks[:n])
}

func (s *Store) CurrentTxOffsetsBytes() []byte {
	n := uint64(s.params.MaxTicksPerEpoch) * uint64(s.params.NumberOfTransactionsPerTick)
	return arena.Bytes(s.txOffsets[:n])
}

func (s *Store) CurrentTxBlobBytes() []byte {
	return s.txBlob[:s.txCurrentSize]
}

// OldTickBegin and OldTickEnd bound the previous epoch's surviving tail
// window, [OldTickBegin, OldTickEnd). Both are 0 when there is none.
func (s *Store) OldTickBegin() uint32 { return s.oldTickBegin }
func (s *Store) OldTickEnd() uint32   { return s.oldTickEnd }

// Metadata summarizes everything a checkpoint needs to restore besides
// the raw arena bytes themselves.
type Metadata struct {
	TickBegin                 uint32
	TickEnd                   uint32
	TotalTransactionSize      uint64
	NextTickTransactionOffset uint64
}

// CurrentMetadata snapshots the store's current epoch window and
// transaction cursor.
func (s *Store) CurrentMetadata() Metadata {
	return Metadata{
		TickBegin:                 s.tickBegin,
		TickEnd:                   s.tickEnd,
		TotalTransactionSize:      s.nextTickTransactionOffset - s.params.FirstTickTransactionOffset,
		NextTickTransactionOffset: s.nextTickTransactionOffset,
	}
}

// RestoreMetadata applies a previously-saved Metadata to the store. Only
// valid immediately after the arena bytes themselves have been restored;
// it does not touch any arena content.
func (s *Store) RestoreMetadata(m Metadata) {
	s.tickBegin = m.TickBegin
	s.tickEnd = m.TickEnd
	s.nextTickTransactionOffset = m.NextTickTransactionOffset
	s.oldTickBegin = 0
	s.oldTickEnd = 0
}

// LockAll acquires every lock in the store, in the module-wide order
// (tick data, then transactions, then ticks[c] ascending), for a caller
// that needs a consistent snapshot across every arena. checkpoint's
// TrySave/TryLoad do not take these locks themselves. UnlockAll releases
// them in the reverse order.
func (s *Store) LockAll() {
	s.tickDataMu.Lock()
	s.txMu.Lock()
	for c := range s.ticksMu {
		s.ticksMu[c].Lock()
	}
}

func (s *Store) UnlockAll() {
	for c := len(s.ticksMu) - 1; c >= 0; c-- {
		s.ticksMu[c].Unlock()
	}
	s.txMu.Unlock()
	s.tickDataMu.Unlock()
}
