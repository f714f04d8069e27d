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

// Package tickstore holds the four per-tick arenas (tick data, quorum
// ticks, transaction blob, transaction offset index) and the epoch
// transition that relocates their tails across an epoch boundary.
package tickstore

// TickData is the fixed-size slot one tick occupies in the tick data
// arena (C1). Epoch == 0 means the slot has never been written, the same
// "empty" convention the original uses.
type TickData struct {
	Epoch     uint16
	Tick      uint32
	Timestamp uint64
}

// Empty reports whether this slot has never been populated for the
// current epoch.
func (d TickData) Empty() bool { return d.Epoch == 0 }

// Tick is one computor's quorum vote for a given tick slot (C2): (tick,
// computor) picks the slot, the way the original's ticks arena is
// indexed.
type Tick struct {
	Epoch         uint16
	ComputorIndex uint16
	Tick          uint32
	Timestamp     uint64
	Digest        [32]byte
}

// Empty reports whether this computor never voted for this tick slot.
func (t Tick) Empty() bool { return t.Epoch == 0 }
