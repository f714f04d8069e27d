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

import "testing"

// A seamless transition (the new epoch's first tick falls inside the old
// epoch's storage window) must carry the trailing K ticks of tick data
// into the previous-epoch half of the arena instead of discarding them.
func TestBeginEpochSeamlessTransitionPreservesTailTickData(t *testing.T) {
	s, a := newTestStore(t)
	defer a.Release()

	s.BeginEpoch(100) // window [100, 120)

	slot, err := s.TickDataByTick(118)
	if err != nil {
		t.Fatal(err)
	}
	slot.Epoch = 9
	slot.Timestamp = 555

	// New epoch starts at 119: still inside [100,120), so this is seamless.
	s.BeginEpoch(119)

	if s.oldTickBegin > 118 || s.oldTickEnd <= 118 {
		t.Fatalf("expected tick 118 to fall in previous window [%d,%d)", s.oldTickBegin, s.oldTickEnd)
	}

	carried, err := s.TickDataByTick(118)
	if err != nil {
		t.Fatalf("TickDataByTick(118) after transition: %v", err)
	}
	if carried.Epoch != 9 || carried.Timestamp != 555 {
		t.Fatalf("tick 118's data was not carried across the transition: %+v", *carried)
	}
}

// The current-epoch region must be zeroed after a seamless transition so
// stale data from the old epoch can't leak through at the same index.
func TestBeginEpochSeamlessTransitionZeroesCurrentRegion(t *testing.T) {
	s, a := newTestStore(t)
	defer a.Release()

	s.BeginEpoch(100)
	// Tick 100 sits at index 0 of the old window, the same index tick 119
	// gets in the new one.
	slot, _ := s.TickDataByTick(100)
	slot.Epoch = 3

	s.BeginEpoch(119)

	fresh, err := s.TickDataByTick(119)
	if err != nil {
		t.Fatal(err)
	}
	if !fresh.Empty() {
		t.Fatalf("expected tick 119's slot to be empty right after the transition, got %+v", *fresh)
	}
}

// A transaction written in the tail window must still decode correctly
// after relocation, at its (possibly different) relocated offset.
func TestBeginEpochSeamlessTransitionRelocatesTransactions(t *testing.T) {
	s, a := newTestStore(t)
	defer a.Release()

	s.BeginEpoch(100)
	tx := &Transaction{SourcePublicKey: [32]byte{1}, Tick: 118, Input: []byte("hi"), InputSize: 2}
	if _, err := s.AppendTransaction(118, 0, tx); err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}

	s.BeginEpoch(119)

	offsets, err := s.TxOffsetsForTick(118)
	if err != nil {
		t.Fatalf("TxOffsetsForTick: %v", err)
	}
	if offsets[0] == 0 {
		t.Fatalf("expected tick 118's transaction offset to survive the transition")
	}
	got, err := s.TransactionAt(offsets[0])
	if err != nil {
		t.Fatalf("TransactionAt: %v", err)
	}
	if string(got.Input) != "hi" {
		t.Fatalf("got input %q after relocation, want %q", got.Input, "hi")
	}
}

// A gap (the new initial tick is outside the current window entirely) is
// treated like a cold start: no previous-epoch window survives.
func TestBeginEpochGapIsTreatedAsColdStart(t *testing.T) {
	s, a := newTestStore(t)
	defer a.Release()

	s.BeginEpoch(100)
	s.BeginEpoch(500) // far outside [100,120)

	if s.oldTickEnd != 0 {
		t.Fatalf("expected no previous-epoch window after a gap, got oldTickEnd=%d", s.oldTickEnd)
	}
}

func TestCheckInvariantsPassesAfterNormalUse(t *testing.T) {
	s, a := newTestStore(t)
	defer a.Release()

	s.BeginEpoch(100)
	tx := &Transaction{Tick: 100, Input: []byte("x"), InputSize: 1}
	if _, err := s.AppendTransaction(100, 0, tx); err != nil {
		t.Fatal(err)
	}
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("CheckInvariants: %v", err)
	}
}
