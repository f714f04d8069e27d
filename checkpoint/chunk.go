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
	"fmt"
	"os"
	"path/filepath"

	"github.com/qubic-labs/ticklog/constants"
)

// snapshotPath names the single file a stem's data lands in when it fits
// in one chunk: stem.<epoch>, no chunk id suffix.
func snapshotPath(dir, stem string, epoch uint32) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%d", stem, epoch))
}

// chunkPath names one piece of a stem's data that didn't fit in one
// chunk: stem.<epoch>.<chunkId>, zero-based.
func chunkPath(dir, stem string, epoch uint32, chunkID int) string {
	return fmt.Sprintf("%s.%d", snapshotPath(dir, stem, epoch), chunkID)
}

// saveLargeFile writes data to a single stem.<epoch> file when it fits in
// one chunk, or splits it into constants.CheckpointChunkSize pieces with
// a ".<chunkId>" suffix when it doesn't. A piece whose file already
// exists with the exact expected size is left alone, so a save
// interrupted partway through can be resumed by calling this again with
// the same data: already-written pieces are skipped, not rewritten.
func saveLargeFile(dir, stem string, epoch uint32, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("checkpoint: create %s: %w", dir, err)
	}
	chunkSize := constants.CheckpointChunkSize
	if len(data) < chunkSize {
		return writeIfSizeDiffers(snapshotPath(dir, stem, epoch), data)
	}
	for i, off := 0, 0; off < len(data); i, off = i+1, off+chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		if err := writeIfSizeDiffers(chunkPath(dir, stem, epoch, i), data[off:end]); err != nil {
			return err
		}
	}
	return nil
}

func writeIfSizeDiffers(path string, data []byte) error {
	if fi, err := os.Stat(path); err == nil && fi.Size() == int64(len(data)) {
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: write %s: %w", path, err)
	}
	return nil
}

// loadLargeFile reads exactly len(into) bytes back into into, from a
// single stem.<epoch> file or, for data that was saved in pieces, from
// each stem.<epoch>.<chunkId> file in order. Every piece must exist with
// the exact expected size; loading is not itself resumable (there is
// nothing partial to resume into), it either succeeds completely or
// returns an error.
func loadLargeFile(dir, stem string, epoch uint32, into []byte) error {
	chunkSize := constants.CheckpointChunkSize
	if len(into) < chunkSize {
		return readExact(snapshotPath(dir, stem, epoch), into)
	}
	for i, off := 0, 0; off < len(into); i, off = i+1, off+chunkSize {
		end := off + chunkSize
		if end > len(into) {
			end = len(into)
		}
		if err := readExact(chunkPath(dir, stem, epoch, i), into[off:end]); err != nil {
			return err
		}
	}
	return nil
}

func readExact(path string, into []byte) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("checkpoint: read %s: %w", path, err)
	}
	if len(data) != len(into) {
		return fmt.Errorf("checkpoint: %s is %d bytes, want %d", path, len(data), len(into))
	}
	copy(into, data)
	return nil
}

func metadataPath(dir string, epoch uint32) string {
	return snapshotPath(dir, "snapshotMetadata", epoch)
}
