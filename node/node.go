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

// Package node wires the log ring, the tick storage arenas and checkpoint
// I/O together into the one long-lived object a process builds at startup.
package node

import (
	"log"
	"sync/atomic"

	"github.com/qubic-labs/ticklog/arena"
	"github.com/qubic-labs/ticklog/checkpoint"
	"github.com/qubic-labs/ticklog/constants"
	"github.com/qubic-labs/ticklog/logbuf"
	"github.com/qubic-labs/ticklog/tickstore"
)

// Config describes everything a Node needs to construct its arenas and
// checkpoint location; it's the runtime analogue of the capacity constants
// the original hardcodes at compile time.
type Config struct {
	Params        constants.Params
	Passcode      [4]uint64
	CheckpointDir string
	AuditDbPath   string // empty disables the audit trail
	Debug         bool
}

// NewConfig returns a Config built from default capacities, the caller's
// passcode and checkpoint location.
func NewConfig(passcode [4]uint64, checkpointDir, auditDbPath string) *Config {
	return &Config{
		Params:        constants.DefaultParams(),
		Passcode:      passcode,
		CheckpointDir: checkpointDir,
		AuditDbPath:   auditDbPath,
	}
}

// Node owns the arena allocator, the log ring and its indexes, the tick
// storage arenas, and checkpoint I/O for a single running process.
type Node struct {
	Config *Config

	alloc *arena.Allocator

	ring    *logbuf.Ring
	ids     *logbuf.IDIndex
	txs     *logbuf.TxIndex
	handler *logbuf.Handler

	store *tickstore.Store
	cp    *checkpoint.Store
	audit *checkpoint.AuditLog

	epoch atomic.Uint32
	tick  atomic.Uint32
}

// NewNode allocates every arena Config.Params describes and wires the log
// ring, its indexes and the tick storage together. Call Init (or
// TryLoadFromFile, when resuming from a checkpoint) before first use and
// Deinit when the process shuts down.
func NewNode(config *Config) (*Node, error) {
	alloc := arena.New()

	p := config.Params
	logBuf, err := alloc.AllocateBytes("node.logRing", p.LogBufferSize)
	if err != nil {
		alloc.Release()
		return nil, err
	}

	n := &Node{Config: config, alloc: alloc}

	ids := logbuf.NewIDIndex(logBuf, p.LogIdIndexEntries())
	txs := logbuf.NewTxIndex(p.LogTxInfoStorage, p.MaxTicksPerEpoch)
	n.ring = logbuf.NewRing(logBuf, logbuf.SystemClock(), n, ids, txs)
	n.ids = ids
	n.txs = txs
	n.handler = logbuf.NewHandler(n.ring, config.Passcode, int(constants.MaxMessagePayloadSize))

	store, err := tickstore.NewStore(alloc, p, config.Debug)
	if err != nil {
		alloc.Release()
		return nil, err
	}
	n.store = store

	var audit *checkpoint.AuditLog
	if config.AuditDbPath != "" {
		audit, err = checkpoint.OpenAuditLog(config.AuditDbPath)
		if err != nil {
			alloc.Release()
			return nil, err
		}
	}
	n.audit = audit
	n.cp = checkpoint.New(config.CheckpointDir, audit)

	return n, nil
}

// Init starts the first epoch at initialTick. Call this once, before the
// node processes anything, unless the node is being restored with
// TryLoadFromFile, which positions the store itself.
func (n *Node) Init(initialEpoch uint32, initialTick uint32) {
	n.epoch.Store(initialEpoch)
	n.tick.Store(initialTick)
	n.store.BeginEpoch(initialTick)
	n.ring.Reset(initialTick)
}

// Deinit releases every arena this node owns and closes the audit log.
func (n *Node) Deinit() {
	if n.audit != nil {
		if err := n.audit.Close(); err != nil {
			log.Printf("node: failed to close audit log: %v", err)
		}
	}
	n.alloc.Release()
}

// CurrentEpoch and CurrentTick implement logbuf.TickSource, so every log
// record this node appends is stamped with the epoch/tick it believes is
// current.
func (n *Node) CurrentEpoch() uint16 { return uint16(n.epoch.Load()) }
func (n *Node) CurrentTick() uint32  { return n.tick.Load() }

// AdvanceTick moves the node's current tick forward. It does not touch
// tick storage; callers append TickData/Tick entries through Store
// themselves.
func (n *Node) AdvanceTick(tick uint32) { n.tick.Store(tick) }

// BeginEpoch transitions tick storage to a new epoch starting at
// newInitialTick and updates the node's current epoch/tick.
func (n *Node) BeginEpoch(newEpoch uint32, newInitialTick uint32) {
	n.store.BeginEpoch(newInitialTick)
	n.epoch.Store(newEpoch)
	n.tick.Store(newInitialTick)
	n.ring.Reset(newInitialTick)
}

// Store exposes the tick storage arenas for callers that process
// transactions, tick data and quorum ticks.
func (n *Node) Store() *tickstore.Store { return n.store }

// Ring exposes the log ring for callers that need direct access beyond
// the typed Log* helpers (LogQuTransfer and friends).
func (n *Node) Ring() *logbuf.Ring { return n.ring }

// RegisterNewTx tells the tx→log index that subsequent Append calls
// belong to a new transaction, so they're grouped together rather than
// attributed to whatever transaction was current before.
func (n *Node) RegisterNewTx(tick uint32, hash [32]byte) {
	n.txs.RegisterNewTx(tick, hash)
}

// ProcessRequestLog answers a RequestLog wire request with the response
// frame(s) to send back.
func (n *Node) ProcessRequestLog(req logbuf.RequestLog) [][]byte {
	return n.handler.RequestLog(req)
}

// ProcessRequestLogIdRangeFromTx answers a RequestLogIdRangeFromTx wire
// request.
func (n *Node) ProcessRequestLogIdRangeFromTx(req logbuf.RequestLogIdRangeFromTx) logbuf.ResponseLogIdRangeFromTx {
	return n.handler.RequestLogIdRangeFromTx(req)
}

// TrySaveToFile checkpoints the current epoch's tick storage to disk.
func (n *Node) TrySaveToFile(epoch, tick uint32) int {
	return n.cp.TrySave(n.store, epoch, tick)
}

// TryLoadFromFile restores tick storage from a previously saved
// checkpoint for epoch, which is expected to have started at
// expectedTickBegin. Call this instead of Init, not after it: it
// positions the store at expectedTickBegin itself so the checkpoint's
// metadata can be sanity-checked against it before anything is restored.
func (n *Node) TryLoadFromFile(epoch uint32, expectedTickBegin uint32) int {
	n.store.BeginEpoch(expectedTickBegin)
	code := n.cp.TryLoad(n.store, epoch)
	if code == checkpoint.ResultOK {
		n.epoch.Store(epoch)
		n.tick.Store(n.store.TickEnd())
	}
	return code
}

// AllocatorNames reports every arena region this node has allocated, for
// diagnostics.
func (n *Node) AllocatorNames() []string { return n.alloc.Names() }
