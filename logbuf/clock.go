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

// Package logbuf implements the event log ring buffer (B1), its two
// lookup indexes (B2 log id, B3 tx→log) and the request handler (B4) that
// serves range queries over them.
package logbuf

import "time"

// Clock supplies the wall-clock timestamp stamped into a record header.
// The module has no wall-clock source of its own; production wiring uses
// systemClock (in node), tests use a fixed fakeClock.
type Clock interface {
	Now() time.Time
}

// TickSource supplies the epoch/tick a record is stamped with. Production
// wiring is node.Node, which reports the epoch/tick it tracks itself at
// append time.
type TickSource interface {
	CurrentEpoch() uint16
	CurrentTick() uint32
}

type systemClock struct{}

// SystemClock is the production Clock, backed by time.Now.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

// staticTickSource is a TickSource fixed at construction, useful for a node
// that tracks its own epoch/tick outside of tickstore (e.g. in tests).
type staticTickSource struct {
	epoch uint16
	tick  uint32
}

func StaticTickSource(epoch uint16, tick uint32) TickSource {
	return &staticTickSource{epoch: epoch, tick: tick}
}

func (s *staticTickSource) CurrentEpoch() uint16 { return s.epoch }
func (s *staticTickSource) CurrentTick() uint32  { return s.tick }
