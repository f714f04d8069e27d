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
	"testing"

	"github.com/qubic-labs/ticklog/arena"
	"github.com/qubic-labs/ticklog/constants"
)

func testParams() constants.Params {
	return constants.Params{
		MaxTicksPerEpoch:            20,
		TicksToKeepFromPriorEpoch:   4,
		NumberOfComputors:           3,
		NumberOfTransactionsPerTick: 4,
		MaxTransactionSize:          256,
		TransactionSparseness:       1,
		FirstTickTransactionOffset:  64,
	}
}

func newTestStore(t *testing.T) (*Store, *arena.Allocator) {
	t.Helper()
	a := arena.New()
	s, err := NewStore(a, testParams(), true)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s, a
}

func TestBeginEpochColdStartSetsWindow(t *testing.T) {
	s, a := newTestStore(t)
	defer a.Release()

	s.BeginEpoch(1000)
	if s.TickBegin() != 1000 {
		t.Fatalf("tickBegin = %d, want 1000", s.TickBegin())
	}
	if s.TickEnd() != 1000+testParams().MaxTicksPerEpoch {
		t.Fatalf("tickEnd = %d, want %d", s.TickEnd(), 1000+testParams().MaxTicksPerEpoch)
	}
	if s.oldTickEnd != 0 {
		t.Fatalf("expected no previous-epoch window on cold start, got oldTickEnd=%d", s.oldTickEnd)
	}
}

func TestTickDataByTickRoundTrips(t *testing.T) {
	s, a := newTestStore(t)
	defer a.Release()
	s.BeginEpoch(100)

	slot, err := s.TickDataByTick(105)
	if err != nil {
		t.Fatalf("TickDataByTick: %v", err)
	}
	slot.Epoch = 7
	slot.Timestamp = 42

	again, err := s.TickDataByTick(105)
	if err != nil {
		t.Fatalf("TickDataByTick: %v", err)
	}
	if again.Epoch != 7 || again.Timestamp != 42 {
		t.Fatalf("write did not persist: %+v", *again)
	}
}

func TestTickDataByTickOutOfRange(t *testing.T) {
	s, a := newTestStore(t)
	defer a.Release()
	s.BeginEpoch(100)

	if _, err := s.TickDataByTick(50); err != ErrTickOutOfRange {
		t.Fatalf("expected ErrTickOutOfRange, got %v", err)
	}
}

func TestAppendTransactionAndReadBack(t *testing.T) {
	s, a := newTestStore(t)
	defer a.Release()
	s.BeginEpoch(100)

	tx := &Transaction{SourcePublicKey: [32]byte{1}, DestinationPublicKey: [32]byte{2}, Amount: 10, Tick: 100, Input: []byte("ab"), InputSize: 2}
	offset, err := s.AppendTransaction(100, 0, tx)
	if err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}

	got, err := s.TransactionAt(offset)
	if err != nil {
		t.Fatalf("TransactionAt: %v", err)
	}
	if got.Amount != 10 || string(got.Input) != "ab" {
		t.Fatalf("got %+v", *got)
	}

	offsets, err := s.TxOffsetsForTick(100)
	if err != nil {
		t.Fatal(err)
	}
	if offsets[0] != offset {
		t.Fatalf("offset index slot 0 = %d, want %d", offsets[0], offset)
	}
}

func TestAppendTransactionRejectsTickOutsideWindow(t *testing.T) {
	s, a := newTestStore(t)
	defer a.Release()
	s.BeginEpoch(100)

	tx := &Transaction{Tick: 50, InputSize: 0}
	if _, err := s.AppendTransaction(50, 0, tx); err != ErrTickOutOfRange {
		t.Fatalf("expected ErrTickOutOfRange, got %v", err)
	}
}

func TestAppendTransactionRejectsOversized(t *testing.T) {
	s, a := newTestStore(t)
	defer a.Release()
	s.BeginEpoch(100)

	tx := &Transaction{Tick: 100, Input: make([]byte, 1000), InputSize: 1000}
	if _, err := s.AppendTransaction(100, 0, tx); err != ErrTransactionTooLarge {
		t.Fatalf("expected ErrTransactionTooLarge, got %v", err)
	}
}

func TestAppendTransactionRejectsArenaFull(t *testing.T) {
	s, a := newTestStore(t)
	defer a.Release()
	s.BeginEpoch(100)

	var lastErr error
	for i := 0; i < 1000; i++ {
		tx := &Transaction{Tick: 100, Input: make([]byte, 32), InputSize: 32}
		if _, err := s.AppendTransaction(100, i%int(testParams().NumberOfTransactionsPerTick), tx); err != nil {
			lastErr = err
			break
		}
	}
	if lastErr != ErrArenaFull {
		t.Fatalf("expected to eventually hit ErrArenaFull, got %v", lastErr)
	}
}
