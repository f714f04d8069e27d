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

// Package checkpoint implements chunked save/load of the tick storage
// arenas to plain files, plus a best-effort sqlite-backed audit trail of
// save/load attempts.
package checkpoint

import (
	"fmt"
	"os"

	"github.com/qubic-labs/ticklog/tickstore"
	"github.com/qubic-labs/ticklog/wire"
)

const metadataSize = 4 + 4 + 4 + 8 + 8

// Metadata is the descriptor written last on save and read first on load,
// so a partially-written snapshot (process killed mid-save) is detected
// by its absence rather than by a corrupt arena file.
type Metadata struct {
	Epoch                     uint32
	TickBegin                 uint32
	TickEnd                   uint32
	TotalTransactionSize      uint64
	NextTickTransactionOffset uint64
}

// PreloadTick reports the tick a caller should resume network sync from
// after loading this checkpoint.
func (m Metadata) PreloadTick() uint32 { return m.TickEnd }

func (m Metadata) encode() []byte {
	buf := make([]byte, metadataSize)
	wire.PutUint32(buf, m.Epoch)
	wire.PutUint32(buf[4:], m.TickBegin)
	wire.PutUint32(buf[8:], m.TickEnd)
	wire.PutUint64(buf[12:], m.TotalTransactionSize)
	wire.PutUint64(buf[20:], m.NextTickTransactionOffset)
	return buf
}

func decodeMetadata(buf []byte) Metadata {
	return Metadata{
		Epoch:                     wire.Uint32(buf),
		TickBegin:                 wire.Uint32(buf[4:]),
		TickEnd:                   wire.Uint32(buf[8:]),
		TotalTransactionSize:      wire.Uint64(buf[12:]),
		NextTickTransactionOffset: wire.Uint64(buf[20:]),
	}
}

func fromStoreMetadata(epoch uint32, m tickstore.Metadata) Metadata {
	return Metadata{
		Epoch:                     epoch,
		TickBegin:                 m.TickBegin,
		TickEnd:                   m.TickEnd,
		TotalTransactionSize:      m.TotalTransactionSize,
		NextTickTransactionOffset: m.NextTickTransactionOffset,
	}
}

func (m Metadata) toStoreMetadata() tickstore.Metadata {
	return tickstore.Metadata{
		TickBegin:                 m.TickBegin,
		TickEnd:                   m.TickEnd,
		NextTickTransactionOffset: m.NextTickTransactionOffset,
	}
}

// saveMetadata writes m's encoded form last, after every arena chunk has
// already landed on disk.
func saveMetadata(dir string, epoch uint32, m Metadata) error {
	path := metadataPath(dir, epoch)
	if err := os.WriteFile(path, m.encode(), 0o644); err != nil {
		return fmt.Errorf("checkpoint: write %s: %w", path, err)
	}
	return nil
}

// loadMetadata reads back what saveMetadata wrote. Its presence with the
// exact expected size is what tells TryLoad a snapshot is complete.
func loadMetadata(dir string, epoch uint32) (Metadata, error) {
	path := metadataPath(dir, epoch)
	buf, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("checkpoint: read %s: %w", path, err)
	}
	if len(buf) != metadataSize {
		return Metadata{}, fmt.Errorf("checkpoint: %s is %d bytes, want %d", path, len(buf), metadataSize)
	}
	return decodeMetadata(buf), nil
}
