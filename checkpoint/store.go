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

package checkpoint

import (
	"log"
	"time"

	"github.com/qubic-labs/ticklog/constants"
	"github.com/qubic-labs/ticklog/tickstore"
)

// Result codes for TrySave/TryLoad. 0 is always success; everything else
// identifies which step failed, the same "return a small result code
// instead of an error chain" convention the rest of this module uses for
// expected-but-unusual outcomes. The numbering matches the save order
// (tick data, ticks, offsets, transactions, metadata) read backwards, plus
// a distinct code for a save that has nothing new to write.
const (
	ResultOK                           = 0
	ResultMetadataFailed               = 1
	ResultTransactionsFailed           = 2
	ResultTickTransactionOffsetsFailed = 3
	ResultTicksFailed                  = 4
	ResultTickDataFailed               = 5
	ResultNothingToSave                = 6
)

// Store drives checkpoint save/load for a tickstore.Store against a
// directory of chunked files, with an optional audit trail.
type Store struct {
	Dir   string
	Audit *AuditLog // nil is fine; recording is best-effort
}

func New(dir string, audit *AuditLog) *Store {
	return &Store{Dir: dir, Audit: audit}
}

// TrySave snapshots s's current epoch as of tick to disk under epoch.
// Save order is tick data, ticks, tick-transaction offsets, transactions,
// metadata last — metadata landing last is what makes an interrupted
// save detectable on the next load (see TryLoad).
func (c *Store) TrySave(s *tickstore.Store, epoch uint32, tick uint32) int {
	start := time.Now()
	code := c.trySave(s, epoch, tick)
	if c.Audit != nil {
		c.Audit.RecordSave(epoch, tick, code, time.Since(start))
	}
	return code
}

func (c *Store) trySave(s *tickstore.Store, epoch uint32, tick uint32) int {
	if tick <= s.TickBegin() {
		return ResultNothingToSave
	}

	if err := saveLargeFile(c.Dir, "snapshotTickdata", epoch, s.CurrentTickDataBytes()); err != nil {
		log.Printf("checkpoint: failed to save tickData: %v", err)
		return ResultTickDataFailed
	}
	if err := saveLargeFile(c.Dir, "snapshotTicks", epoch, s.CurrentTicksBytes()); err != nil {
		log.Printf("checkpoint: failed to save ticks: %v", err)
		return ResultTicksFailed
	}
	if err := saveLargeFile(c.Dir, "snapshotTickTransactionOffsets", epoch, s.CurrentTxOffsetsBytes()); err != nil {
		log.Printf("checkpoint: failed to save tickTransactionOffsets: %v", err)
		return ResultTickTransactionOffsetsFailed
	}

	highWaterMark := transactionHighWaterMark(s, tick)
	if err := saveLargeFile(c.Dir, "snapshotTickTransaction", epoch, s.CurrentTxBlobBytes()[:highWaterMark]); err != nil {
		log.Printf("checkpoint: failed to save transactions: %v", err)
		return ResultTransactionsFailed
	}

	meta := fromStoreMetadata(epoch, s.CurrentMetadata())
	meta.NextTickTransactionOffset = highWaterMark
	if err := saveMetadata(c.Dir, epoch, meta); err != nil {
		log.Printf("checkpoint: failed to save metadata: %v", err)
		return ResultMetadataFailed
	}
	return ResultOK
}

// TryLoad restores s from the checkpoint saved under epoch. Metadata is
// read first: its absence or inconsistency means there's nothing (whole)
// to load, and the arena files are never touched.
func (c *Store) TryLoad(s *tickstore.Store, epoch uint32) int {
	start := time.Now()
	code := c.tryLoad(s, epoch)
	if c.Audit != nil {
		c.Audit.RecordLoad(epoch, code, time.Since(start))
	}
	return code
}

func (c *Store) tryLoad(s *tickstore.Store, epoch uint32) int {
	meta, err := loadMetadata(c.Dir, epoch)
	if err != nil {
		log.Printf("checkpoint: failed to load metadata: %v", err)
		return ResultMetadataFailed
	}
	// Reuses ResultTransactionsFailed rather than a code of its own: an
	// inconsistent metadata file and a failed transactions load are both
	// "the snapshot isn't usable", not a missing-file problem.
	if meta.TickBegin > meta.TickEnd || meta.TickBegin != s.TickBegin() || meta.TickEnd > meta.TickBegin+s.Params().MaxTicksPerEpoch || meta.Epoch != epoch {
		log.Printf("checkpoint: metadata inconsistent: %+v", meta)
		return ResultTransactionsFailed
	}

	if err := loadLargeFile(c.Dir, "snapshotTickdata", epoch, s.CurrentTickDataBytes()); err != nil {
		log.Printf("checkpoint: failed to load tickData: %v", err)
		return ResultTickDataFailed
	}
	if err := loadLargeFile(c.Dir, "snapshotTicks", epoch, s.CurrentTicksBytes()); err != nil {
		log.Printf("checkpoint: failed to load ticks: %v", err)
		return ResultTicksFailed
	}
	if err := loadLargeFile(c.Dir, "snapshotTickTransactionOffsets", epoch, s.CurrentTxOffsetsBytes()); err != nil {
		log.Printf("checkpoint: failed to load tickTransactionOffsets: %v", err)
		return ResultTickTransactionOffsetsFailed
	}
	if err := loadLargeFile(c.Dir, "snapshotTickTransaction", epoch, s.CurrentTxBlobBytes()[:meta.NextTickTransactionOffset]); err != nil {
		log.Printf("checkpoint: failed to load transactions: %v", err)
		return ResultTransactionsFailed
	}

	s.RestoreMetadata(meta.toStoreMetadata())
	return ResultOK
}

// transactionHighWaterMark scans backward from tick, at most
// constants.CheckpointHighWaterMarkTicks ticks, looking for the furthest
// byte any recorded transaction reaches into the blob. Bounding the scan
// keeps a save cheap on an epoch with many ticks behind it; the original
// source makes the same bet (anything further back was already captured
// by an earlier save).
func transactionHighWaterMark(s *tickstore.Store, tick uint32) uint64 {
	lowerBound := s.TickBegin()
	if tick >= uint32(constants.CheckpointHighWaterMarkTicks) && tick-uint32(constants.CheckpointHighWaterMarkTicks) > lowerBound {
		lowerBound = tick - uint32(constants.CheckpointHighWaterMarkTicks)
	}

	var mark uint64
	for t := int64(tick); t >= int64(lowerBound); t-- {
		offsets, err := s.TxOffsetsForTick(uint32(t))
		if err != nil {
			continue
		}
		for _, off := range offsets {
			if off == 0 {
				continue
			}
			tx, err := s.TransactionAt(off)
			if err != nil {
				continue
			}
			if end := off + tx.TotalSize(); end > mark {
				mark = end
			}
		}
	}
	return mark
}
