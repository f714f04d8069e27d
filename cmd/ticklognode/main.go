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

// Command ticklognode builds a node against the configured capacities,
// optionally resuming from a checkpoint, and demonstrates the log-append
// and tick-storage operations end to end. There is no peer transport in
// scope here; wiring a real network listener onto node.Node's
// ProcessRequestLog/ProcessRequestLogIdRangeFromTx is left to whatever
// carries the wire frames.
package main

import (
	"log"

	"github.com/spf13/pflag"

	"github.com/qubic-labs/ticklog/constants"
	"github.com/qubic-labs/ticklog/logbuf"
	"github.com/qubic-labs/ticklog/node"
	"github.com/qubic-labs/ticklog/tickstore"
)

func main() {
	checkpointDir := pflag.String("checkpoint-dir", "./checkpoints", "directory to save/load checkpoints from")
	auditDbPath := pflag.String("audit-db", "./checkpoints/audit.db", "sqlite path for the checkpoint audit trail")
	resumeEpoch := pflag.Uint32("resume-epoch", 0, "epoch to restore from disk before starting (0 skips restore)")
	epoch := pflag.Uint32("epoch", 1, "epoch to start at when not resuming")
	tick := pflag.Uint32("tick", 0, "tick to start at when not resuming, or the epoch's expected starting tick when resuming")
	passcodeA := pflag.Uint64("passcode0", 0, "first word of the request passcode")
	passcodeB := pflag.Uint64("passcode1", 0, "second word of the request passcode")
	passcodeC := pflag.Uint64("passcode2", 0, "third word of the request passcode")
	passcodeD := pflag.Uint64("passcode3", 0, "fourth word of the request passcode")
	pflag.Parse()

	passcode := [4]uint64{*passcodeA, *passcodeB, *passcodeC, *passcodeD}
	config := node.NewConfig(passcode, *checkpointDir, *auditDbPath)

	n, err := node.NewNode(config)
	if err != nil {
		log.Fatalf("ticklognode: failed to build node: %v", err)
	}
	defer n.Deinit()

	startTick := *tick
	if *resumeEpoch != 0 {
		if code := n.TryLoadFromFile(*resumeEpoch, *tick); code != 0 {
			log.Fatalf("ticklognode: failed to resume epoch %d: result code %d", *resumeEpoch, code)
		}
		startTick = n.Store().TickEnd()
		log.Printf("resumed epoch %d, resuming network sync from tick %d", *resumeEpoch, startTick)
	} else {
		n.Init(*epoch, startTick)
	}

	demonstrate(n)
}

// demonstrate logs one of every message kind and records a tick's worth
// of tick data, quorum ticks and transactions, then checkpoints the
// result. It's meant as a smoke test of the wiring, not a real protocol
// loop.
func demonstrate(n *node.Node) {
	tick := n.CurrentTick()
	epoch := n.CurrentEpoch()

	beginEpochHash := constants.ProtocolTxBeginEpoch
	beginTickHash := constants.ProtocolTxBeginTick
	endTickHash := constants.ProtocolTxEndTick

	n.RegisterNewTx(tick, beginEpochHash)
	if _, err := n.Ring().LogCustom(logbuf.CustomMessage{Data: []byte("begin epoch")}); err != nil {
		log.Printf("LogCustom: %v", err)
	}

	n.RegisterNewTx(tick, beginTickHash)
	if _, err := n.Ring().LogCustom(logbuf.CustomMessage{Data: []byte("begin tick")}); err != nil {
		log.Printf("LogCustom: %v", err)
	}

	var quHash [32]byte
	quHash[0] = 1
	n.RegisterNewTx(tick, quHash)
	if _, err := n.Ring().LogQuTransfer(logbuf.QuTransfer{Amount: 1000}); err != nil {
		log.Printf("LogQuTransfer: %v", err)
	}

	tx := &tickstore.Transaction{Tick: tick, Amount: 1000}
	if _, err := n.Store().AppendTransaction(tick, 0, tx); err != nil {
		log.Printf("AppendTransaction: %v", err)
	}

	n.RegisterNewTx(tick, endTickHash)
	if _, err := n.Ring().LogCustom(logbuf.CustomMessage{Data: []byte("end tick")}); err != nil {
		log.Printf("LogCustom: %v", err)
	}

	// TrySaveToFile saves everything up to and including the given tick, so
	// it must be called with a tick past the one storage was opened at.
	saveTick := tick + 1
	n.AdvanceTick(saveTick)
	if code := n.TrySaveToFile(uint32(epoch), saveTick); code != 0 {
		log.Printf("checkpoint save returned %d", code)
	} else {
		log.Printf("checkpointed epoch %d tick %d", epoch, saveTick)
	}
}
