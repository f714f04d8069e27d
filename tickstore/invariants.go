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

import "fmt"

// CheckInvariants walks the whole store looking for anything that
// shouldn't be possible if every write went through AppendTransaction and
// BeginEpoch correctly. It's the Go equivalent of the original's
// debug-only consistency assertion: expensive, not on any hot path, meant
// to be called from tests and from an operator's status command, not from
// request handling.
func (s *Store) CheckInvariants() error {
	if s.tickBegin > s.tickEnd {
		return fmt.Errorf("tickstore: tickBegin %d > tickEnd %d", s.tickBegin, s.tickEnd)
	}
	if s.tickEnd != s.tickBegin+s.params.MaxTicksPerEpoch {
		return fmt.Errorf("tickstore: tickEnd %d does not match tickBegin+M (%d)", s.tickEnd, s.tickBegin+s.params.MaxTicksPerEpoch)
	}
	if s.oldTickEnd != 0 && s.oldTickEnd > s.tickBegin {
		return fmt.Errorf("tickstore: previous epoch window overlaps current (oldTickEnd=%d, tickBegin=%d)", s.oldTickEnd, s.tickBegin)
	}

	t := int(s.params.NumberOfTransactionsPerTick)

	walk := func(from, to uint32, indexOf func(uint32) uint32) (uint64, error) {
		var lastEnd uint64
		for tick := from; tick < to; tick++ {
			base := int(indexOf(tick)) * t
			for slot := 0; slot < t; slot++ {
				off := s.txOffsets[base+slot]
				if off == 0 {
					continue
				}
				tx, err := DecodeTransactionAt(s.txBlob, off)
				if err != nil {
					return 0, fmt.Errorf("tickstore: tick %d slot %d: %w", tick, slot, err)
				}
				if tx.Tick != tick {
					return 0, fmt.Errorf("tickstore: tick %d slot %d holds a transaction stamped for tick %d", tick, slot, tx.Tick)
				}
				if end := off + tx.TotalSize(); end > lastEnd {
					lastEnd = end
				}
			}
		}
		return lastEnd, nil
	}

	if s.oldTickEnd != 0 {
		if _, err := walk(s.oldTickBegin, s.oldTickEnd, s.tickToIndexPreviousEpoch); err != nil {
			return err
		}
	}
	lastCurrentEnd, err := walk(s.tickBegin, s.tickEnd, s.tickToIndexCurrentEpoch)
	if err != nil {
		return err
	}
	if lastCurrentEnd < s.params.FirstTickTransactionOffset {
		lastCurrentEnd = s.params.FirstTickTransactionOffset
	}
	if lastCurrentEnd != s.nextTickTransactionOffset {
		return fmt.Errorf("tickstore: last transaction ends at %d but nextTickTransactionOffset is %d", lastCurrentEnd, s.nextTickTransactionOffset)
	}

	return nil
}
