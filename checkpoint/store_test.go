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
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/qubic-labs/ticklog/arena"
	"github.com/qubic-labs/ticklog/constants"
	"github.com/qubic-labs/ticklog/tickstore"
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
		LogBufferSize:               1 << 16,
		LogTxInfoStorage:            256,
	}
}

func newTestStore(t *testing.T) *tickstore.Store {
	t.Helper()
	alloc := arena.New()
	t.Cleanup(alloc.Release)
	s, err := tickstore.NewStore(alloc, testParams(), true)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s.BeginEpoch(0)
	return s
}

func sampleTx(n byte) *tickstore.Transaction {
	tx := &tickstore.Transaction{Amount: int64(n), Tick: 0}
	tx.SourcePublicKey[0] = n
	return tx
}

func TestTrySaveThenTryLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t)

	for slot := 0; slot < 2; slot++ {
		if _, err := s.AppendTransaction(0, slot, sampleTx(byte(slot+1))); err != nil {
			t.Fatalf("AppendTransaction: %v", err)
		}
	}

	cp := New(dir, nil)
	if code := cp.TrySave(s, 7, 1); code != ResultOK {
		t.Fatalf("TrySave = %d, want ResultOK", code)
	}

	restored := newTestStore(t)
	if code := cp.TryLoad(restored, 7); code != ResultOK {
		t.Fatalf("TryLoad = %d, want ResultOK", code)
	}

	if diff := cmp.Diff(s.CurrentMetadata(), restored.CurrentMetadata()); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}

	offsets, err := restored.TxOffsetsForTick(0)
	if err != nil {
		t.Fatalf("TxOffsetsForTick: %v", err)
	}
	tx, err := restored.TransactionAt(offsets[0])
	if err != nil {
		t.Fatalf("TransactionAt: %v", err)
	}
	if tx.Amount != 1 {
		t.Fatalf("restored tx.Amount = %d, want 1", tx.Amount)
	}
}

func TestTrySaveSkipsWhenTickHasNotAdvanced(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t)

	cp := New(dir, nil)
	if code := cp.TrySave(s, 1, s.TickBegin()); code != ResultNothingToSave {
		t.Fatalf("TrySave = %d, want ResultNothingToSave", code)
	}
}

func TestSaveLargeFileSkipsChunkOfExactSize(t *testing.T) {
	dir := t.TempDir()
	data := []byte("some checkpoint bytes")

	if err := saveLargeFile(dir, "stem", 1, data); err != nil {
		t.Fatalf("saveLargeFile: %v", err)
	}
	// Data this small fits in one chunk, so it lands at the bare
	// stem.<epoch> path with no chunk id suffix.
	path := snapshotPath(dir, "stem", 1)
	if err := os.Chmod(path, 0o444); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(path, 0o644) })

	// Re-saving identical data must not attempt to rewrite the read-only
	// file; a real rewrite here would fail.
	if err := saveLargeFile(dir, "stem", 1, data); err != nil {
		t.Fatalf("saveLargeFile (resume): %v", err)
	}
}

func TestLoadLargeFileRejectsSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	path := snapshotPath(dir, "stem", 1)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("short"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	into := make([]byte, 10)
	if err := loadLargeFile(dir, "stem", 1, into); err == nil {
		t.Fatal("loadLargeFile: expected size mismatch error, got nil")
	}
}

func TestTryLoadFailsWhenMetadataMissing(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t)
	cp := New(dir, nil)
	if code := cp.TryLoad(s, 42); code != ResultMetadataFailed {
		t.Fatalf("TryLoad = %d, want ResultMetadataFailed", code)
	}
}

func TestTryLoadFailsWhenArenaChunkMissingDespiteMetadata(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t)
	cp := New(dir, nil)
	if code := cp.TrySave(s, 3, 1); code != ResultOK {
		t.Fatalf("TrySave = %d, want ResultOK", code)
	}

	// Simulate an interrupted save: the metadata file is complete, but an
	// arena file written earlier has gone missing. testParams' arenas are
	// all far smaller than one chunk, so the ticks snapshot lives at the
	// bare stem.<epoch> path with no chunk id suffix.
	if err := os.Remove(snapshotPath(dir, "snapshotTicks", 3)); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	restored := newTestStore(t)
	if code := cp.TryLoad(restored, 3); code != ResultTicksFailed {
		t.Fatalf("TryLoad = %d, want ResultTicksFailed", code)
	}
}

func TestTryLoadFailsWhenMetadataEpochMismatches(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t)
	cp := New(dir, nil)
	if code := cp.TrySave(s, 5, 1); code != ResultOK {
		t.Fatalf("TrySave = %d, want ResultOK", code)
	}

	// Copy the epoch-5 metadata file to the epoch-6 path so loadMetadata
	// succeeds (the file exists, right size) but the embedded epoch still
	// says 5: this exercises the consistency check rather than the
	// missing-file path, and shares its result code with a failed
	// transactions load.
	data, err := os.ReadFile(metadataPath(dir, 5))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if err := os.WriteFile(metadataPath(dir, 6), data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	restored := newTestStore(t)
	if code := cp.TryLoad(restored, 6); code != ResultTransactionsFailed {
		t.Fatalf("TryLoad = %d, want ResultTransactionsFailed", code)
	}
}

func TestAuditLogRecordsSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	audit, err := OpenAuditLog(filepath.Join(dir, "audit.db"))
	if err != nil {
		t.Fatalf("OpenAuditLog: %v", err)
	}
	defer audit.Close()

	s := newTestStore(t)
	cp := New(t.TempDir(), audit)
	if code := cp.TrySave(s, 1, 1); code != ResultOK {
		t.Fatalf("TrySave = %d, want ResultOK", code)
	}

	var count int
	if err := audit.db.QueryRow("SELECT COUNT(*) FROM checkpoint_audit WHERE operation = 'save'").Scan(&count); err != nil {
		t.Fatalf("query audit rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("audit row count = %d, want 1", count)
	}
}

func TestNilAuditLogMethodsAreNoOps(t *testing.T) {
	var a *AuditLog
	a.RecordSave(1, 1, ResultOK, 0)
	a.RecordLoad(1, ResultOK, 0)
	if err := a.Close(); err != nil {
		t.Fatalf("Close on nil AuditLog: %v", err)
	}
}
