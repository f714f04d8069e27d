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

// Command ticklogctl is an interactive operator console for a running
// node: inspect its current epoch/tick, trigger a checkpoint, and issue
// the two log request kinds by hand.
package main

import (
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/pflag"

	"github.com/qubic-labs/ticklog/logbuf"
	"github.com/qubic-labs/ticklog/node"
)

func main() {
	checkpointDir := pflag.String("checkpoint-dir", "./checkpoints", "directory to save/load checkpoints from")
	auditDbPath := pflag.String("audit-db", "", "sqlite path for the checkpoint audit trail (empty disables it)")
	epoch := pflag.Uint32("epoch", 1, "initial epoch")
	tick := pflag.Uint32("tick", 0, "initial tick")
	pflag.Parse()

	config := node.NewConfig([4]uint64{0, 0, 0, 0}, *checkpointDir, *auditDbPath)
	n, err := node.NewNode(config)
	if err != nil {
		log.Fatalf("ticklogctl: failed to build node: %v", err)
	}
	defer n.Deinit()
	n.Init(*epoch, *tick)

	repl(n)
}

func repl(n *node.Node) {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("status"),
		readline.PcItem("begin-epoch"),
		readline.PcItem("save"),
		readline.PcItem("load"),
		readline.PcItem("request-log"),
		readline.PcItem("tx-log-info"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "ticklog> ",
		HistoryFile:     "/tmp/ticklogctl_history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Printf("ticklogctl: failed to create readline: %v", err)
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}

		switch strings.ToLower(parts[0]) {
		case "status":
			handleStatus(n)
		case "begin-epoch":
			handleBeginEpoch(n, parts)
		case "save":
			handleSave(n, parts)
		case "load":
			handleLoad(n, parts)
		case "request-log":
			handleRequestLog(n, parts)
		case "tx-log-info":
			handleTxLogInfo(n, parts)
		case "help":
			displayHelp()
		case "exit":
			return
		default:
			fmt.Println("Unknown command. Type 'help' for available commands.")
		}
	}
}

func displayHelp() {
	fmt.Print(`Commands:
  status                           - show current epoch/tick and allocator regions
  begin-epoch <epoch> <tick>       - transition tick storage to a new epoch
  save <epoch> <tick>              - checkpoint tick storage to disk
  load <epoch> <expectedTickBegin> - restore tick storage from a checkpoint
  request-log <fromId> <toId>      - fetch raw log records in [fromId, toId]
  tx-log-info <tick> <hexHash>     - fetch the logId range for one transaction
  help                              - this message
  exit                              - quit
`)
}

func handleStatus(n *node.Node) {
	fmt.Printf("epoch=%d tick=%d tickWindow=[%d,%d) nextLogID=%d\n",
		n.CurrentEpoch(), n.CurrentTick(), n.Store().TickBegin(), n.Store().TickEnd(), n.Ring().NextLogID())
	fmt.Println("arenas:", strings.Join(n.AllocatorNames(), ", "))
	if err := n.Store().CheckInvariants(); err != nil {
		fmt.Println("invariants: FAILED:", err)
	} else {
		fmt.Println("invariants: OK")
	}
}

func handleBeginEpoch(n *node.Node, parts []string) {
	if len(parts) != 3 {
		fmt.Println("Usage: begin-epoch <epoch> <tick>")
		return
	}
	epoch, tick, ok := parseTwoUints(parts[1], parts[2])
	if !ok {
		return
	}
	n.BeginEpoch(uint32(epoch), uint32(tick))
	fmt.Printf("began epoch %d at tick %d\n", epoch, tick)
}

func handleSave(n *node.Node, parts []string) {
	if len(parts) != 3 {
		fmt.Println("Usage: save <epoch> <tick>")
		return
	}
	epoch, tick, ok := parseTwoUints(parts[1], parts[2])
	if !ok {
		return
	}
	code := n.TrySaveToFile(uint32(epoch), uint32(tick))
	fmt.Printf("save result: %d\n", code)
}

func handleLoad(n *node.Node, parts []string) {
	if len(parts) != 3 {
		fmt.Println("Usage: load <epoch> <expectedTickBegin>")
		return
	}
	epoch, tickBegin, ok := parseTwoUints(parts[1], parts[2])
	if !ok {
		return
	}
	code := n.TryLoadFromFile(uint32(epoch), uint32(tickBegin))
	fmt.Printf("load result: %d\n", code)
}

func handleRequestLog(n *node.Node, parts []string) {
	if len(parts) != 3 {
		fmt.Println("Usage: request-log <fromId> <toId>")
		return
	}
	fromID, toID, ok := parseTwoUints(parts[1], parts[2])
	if !ok {
		return
	}
	req := logbuf.RequestLog{Passcode: n.Config.Passcode, FromID: fromID, ToID: toID}
	frames := n.ProcessRequestLog(req)
	if len(frames) == 0 {
		fmt.Println("no data (bad range, unknown id, or bad passcode)")
		return
	}
	for i, frame := range frames {
		fmt.Printf("frame %d: %d bytes\n", i, len(frame))
	}
}

func handleTxLogInfo(n *node.Node, parts []string) {
	if len(parts) != 3 {
		fmt.Println("Usage: tx-log-info <tick> <hexHash>")
		return
	}
	tick, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		fmt.Printf("invalid tick %q: %v\n", parts[1], err)
		return
	}
	hashBytes, err := hex.DecodeString(parts[2])
	if err != nil || len(hashBytes) != 32 {
		fmt.Println("hash must be 64 hex characters")
		return
	}
	var hash [32]byte
	copy(hash[:], hashBytes)

	req := logbuf.RequestLogIdRangeFromTx{Passcode: n.Config.Passcode, Tick: uint32(tick), TxHash: hash}
	resp := n.ProcessRequestLogIdRangeFromTx(req)
	fmt.Printf("fromLogID=%d length=%d\n", resp.FromLogID, resp.Length)
}

func parseTwoUints(a, b string) (uint64, uint64, bool) {
	x, err := strconv.ParseUint(a, 10, 64)
	if err != nil {
		fmt.Printf("invalid number %q: %v\n", a, err)
		return 0, 0, false
	}
	y, err := strconv.ParseUint(b, 10, 64)
	if err != nil {
		fmt.Printf("invalid number %q: %v\n", b, err)
		return 0, 0, false
	}
	return x, y, true
}
