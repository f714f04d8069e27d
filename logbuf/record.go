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

package logbuf

import (
	"time"

	"github.com/qubic-labs/ticklog/constants"
	"github.com/qubic-labs/ticklog/wire"
)

// RecordHeader is the fixed 24-byte prefix of every logged record:
//
//	byte 0   year (since 2000)
//	byte 1   month
//	byte 2   day
//	byte 3   hour
//	byte 4   minute
//	byte 5   second
//	bytes 6-7   epoch
//	bytes 8-11  tick
//	bytes 12-15 size (low 24 bits) and message type (high 8 bits)
//	bytes 16-23 logId
type RecordHeader struct {
	Year, Month, Day, Hour, Minute, Second uint8
	Epoch                                  uint16
	Tick                                   uint32
	MessageSize                            uint32
	MessageType                            uint8
	LogID                                  uint64
}

func newRecordHeader(ts time.Time, epoch uint16, tick uint32, messageType uint8, payloadSize uint32, logID uint64) RecordHeader {
	y := ts.Year() - 2000
	if y < 0 {
		y = 0
	}
	return RecordHeader{
		Year:         uint8(y),
		Month:        uint8(ts.Month()),
		Day:          uint8(ts.Day()),
		Hour:         uint8(ts.Hour()),
		Minute:       uint8(ts.Minute()),
		Second:       uint8(ts.Second()),
		Epoch:        epoch,
		Tick:         tick,
		MessageSize:  payloadSize,
		MessageType:  messageType,
		LogID:        logID,
	}
}

func (h RecordHeader) encode(buf []byte) {
	buf[0] = h.Year
	buf[1] = h.Month
	buf[2] = h.Day
	buf[3] = h.Hour
	buf[4] = h.Minute
	buf[5] = h.Second
	wire.PutUint16(buf[6:], h.Epoch)
	wire.PutUint32(buf[8:], h.Tick)
	sizeAndType := (h.MessageSize & constants.MaxMessagePayloadSize) | uint32(h.MessageType)<<24
	wire.PutUint32(buf[12:], sizeAndType)
	wire.PutUint64(buf[16:], h.LogID)
}

func decodeRecordHeader(buf []byte) RecordHeader {
	sizeAndType := wire.Uint32(buf[12:])
	return RecordHeader{
		Year:        buf[0],
		Month:       buf[1],
		Day:         buf[2],
		Hour:        buf[3],
		Minute:      buf[4],
		Second:      buf[5],
		Epoch:       wire.Uint16(buf[6:]),
		Tick:        wire.Uint32(buf[8:]),
		MessageSize: sizeAndType & constants.MaxMessagePayloadSize,
		MessageType: uint8(sizeAndType >> 24),
		LogID:       wire.Uint64(buf[16:]),
	}
}

// logIDAt re-reads just the logId field of the record starting at offset,
// without decoding the rest of the header. This is what the log id index
// uses to tell a live slot from a stale one.
func logIDAt(buf []byte, offset uint64) uint64 {
	return wire.Uint64(buf[offset+16:])
}
