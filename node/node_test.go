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

package node

import (
	"path/filepath"
	"testing"

	"github.com/qubic-labs/ticklog/constants"
	"github.com/qubic-labs/ticklog/logbuf"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Params: constants.Params{
			MaxTicksPerEpoch:            20,
			TicksToKeepFromPriorEpoch:   4,
			NumberOfComputors:           3,
			NumberOfTransactionsPerTick: 4,
			MaxTransactionSize:          256,
			TransactionSparseness:       1,
			FirstTickTransactionOffset:  64,
			LogBufferSize:               1 << 16,
			LogTxInfoStorage:            256,
		},
		Passcode:      [4]uint64{1, 2, 3, 4},
		CheckpointDir: filepath.Join(t.TempDir(), "checkpoints"),
		Debug:         true,
	}
}

func newTestNode(t *testing.T) *Node {
	t.Helper()
	n, err := NewNode(testConfig(t))
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	t.Cleanup(n.Deinit)
	return n
}

// TestNewNodeInitStartsEpochAtGivenTick verifies that Init starts tick
// storage at the given tick and that CurrentTick reports it back.
func TestNewNodeInitStartsEpochAtGivenTick(t *testing.T) {
	n := newTestNode(t)
	n.Init(7, 100)

	if n.CurrentEpoch() != 7 {
		t.Fatalf("CurrentEpoch = %d, want 7", n.CurrentEpoch())
	}
	if n.CurrentTick() != 100 {
		t.Fatalf("CurrentTick = %d, want 100", n.CurrentTick())
	}
	if n.Store().TickBegin() != 100 {
		t.Fatalf("Store().TickBegin() = %d, want 100", n.Store().TickBegin())
	}
}

// TestLogQuTransferIsRetrievableThroughRequestLog verifies the path from a
// typed log call through to a RequestLog wire response covering it.
func TestLogQuTransferIsRetrievableThroughRequestLog(t *testing.T) {
	n := newTestNode(t)
	n.Init(1, 0)

	id, err := n.Ring().LogQuTransfer(logbuf.QuTransfer{Amount: 42})
	if err != nil {
		t.Fatalf("LogQuTransfer: %v", err)
	}

	req := logbuf.RequestLog{Passcode: n.Config.Passcode, FromID: id, ToID: id}
	frames := n.ProcessRequestLog(req)
	if len(frames) != 1 {
		t.Fatalf("ProcessRequestLog: got %d frames, want 1", len(frames))
	}
}

// TestTrySaveToFileThenTryLoadFromFileRoundTrips verifies a node can
// checkpoint its tick storage and restore it into a fresh node.
func TestTrySaveToFileThenTryLoadFromFileRoundTrips(t *testing.T) {
	n := newTestNode(t)
	n.Init(3, 0)

	if code := n.TrySaveToFile(3, 1); code != 0 {
		t.Fatalf("TrySaveToFile = %d, want 0", code)
	}

	restored, err := NewNode(n.Config)
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	defer restored.Deinit()

	if code := restored.TryLoadFromFile(3, 0); code != 0 {
		t.Fatalf("TryLoadFromFile = %d, want 0", code)
	}
	if restored.Store().TickBegin() != n.Store().TickBegin() {
		t.Fatalf("restored TickBegin = %d, want %d", restored.Store().TickBegin(), n.Store().TickBegin())
	}
}
