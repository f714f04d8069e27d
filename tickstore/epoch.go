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

// BeginEpoch starts a new epoch at newInitialTick. When the new initial
// tick falls inside the current epoch's storage window (a seamless
// transition, no gap), the trailing K ticks are relocated into the
// previous-epoch half of each arena instead of being discarded, so
// RequestLog-style lookups against recently-finished ticks keep working
// across the boundary. Anything else (first epoch ever, or a gap/restart)
// is treated as a cold start: everything is zeroed and there is no
// previous-epoch window at all.
func (s *Store) BeginEpoch(newInitialTick uint32) {
	c := int(s.params.NumberOfComputors)
	t := int(s.params.NumberOfTransactionsPerTick)
	m := s.params.MaxTicksPerEpoch

	seamless := s.tickBegin != 0 && s.tickInCurrentEpochStorage(newInitialTick) && s.tickBegin < newInitialTick

	if seamless {
		s.oldTickEnd = newInitialTick
		oldTickBegin := s.tickBegin
		if newInitialTick > s.params.TicksToKeepFromPriorEpoch && newInitialTick-s.params.TicksToKeepFromPriorEpoch > oldTickBegin {
			oldTickBegin = newInitialTick - s.params.TicksToKeepFromPriorEpoch
		}
		s.oldTickBegin = oldTickBegin

		tickIndex := s.oldTickBegin - s.tickBegin
		tickCount := s.oldTickEnd - s.oldTickBegin

		copy(s.tickData[m:m+tickCount], s.tickData[tickIndex:tickIndex+tickCount])
		copy(s.ticks[uint64(m)*uint64(c):uint64(m)*uint64(c)+uint64(tickCount)*uint64(c)],
			s.ticks[uint64(tickIndex)*uint64(c):uint64(tickIndex)*uint64(c)+uint64(tickCount)*uint64(c)])

		total := s.nextTickTransactionOffset - s.params.FirstTickTransactionOffset
		keep := total
		if keep > s.txPreviousSize {
			keep = s.txPreviousSize
		}
		firstToKeep := s.nextTickTransactionOffset - keep
		copy(s.txBlob[s.txCurrentSize:s.txCurrentSize+keep], s.txBlob[firstToKeep:firstToKeep+keep])

		offsetDelta := int64(s.txCurrentSize+keep) - int64(s.nextTickTransactionOffset)

		for tick := s.oldTickBegin; tick < s.oldTickEnd; tick++ {
			curBase := int(s.tickToIndexCurrentEpoch(tick)) * t
			prevBase := int(s.tickToIndexPreviousEpoch(tick)) * t
			for slot := 0; slot < t; slot++ {
				off := s.txOffsets[curBase+slot]
				if off == 0 || off < firstToKeep {
					s.txOffsets[prevBase+slot] = 0
					continue
				}
				s.txOffsets[prevBase+slot] = uint64(int64(off) + offsetDelta)
			}
		}

		zeroTickData(s.tickData[:m])
		zeroTicks(s.ticks[:uint64(m)*uint64(c)])
		zeroOffsets(s.txOffsets[:m*uint32(t)])
		zeroBytes(s.txBlob[:s.txCurrentSize])
	} else {
		zeroTickData(s.tickData)
		zeroTicks(s.ticks)
		zeroOffsets(s.txOffsets)
		zeroBytes(s.txBlob)
		s.oldTickBegin = 0
		s.oldTickEnd = 0
	}

	s.tickBegin = newInitialTick
	s.tickEnd = newInitialTick + m
	s.nextTickTransactionOffset = s.params.FirstTickTransactionOffset
}

func zeroTickData(s []TickData) {
	for i := range s {
		s[i] = TickData{}
	}
}

func zeroTicks(s []Tick) {
	for i := range s {
		s[i] = Tick{}
	}
}

func zeroOffsets(s []uint64) {
	for i := range s {
		s[i] = 0
	}
}

func zeroBytes(s []byte) {
	for i := range s {
		s[i] = 0
	}
}
