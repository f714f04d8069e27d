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

// Package wire has the little-endian packed encode/decode helpers shared by
// the log record header and payloads, the stored transactions and the
// checkpoint metadata. Everything here is fixed layout, no padding, no
// reflection.
package wire

import "encoding/binary"

// PutUint16, PutUint32 and PutUint64 write v at buf[0:] in the packed
// little-endian layout every wire struct in this module uses.
func PutUint16(buf []byte, v uint16) { binary.LittleEndian.PutUint16(buf, v) }
func PutUint32(buf []byte, v uint32) { binary.LittleEndian.PutUint32(buf, v) }
func PutUint64(buf []byte, v uint64) { binary.LittleEndian.PutUint64(buf, v) }

func Uint16(buf []byte) uint16 { return binary.LittleEndian.Uint16(buf) }
func Uint32(buf []byte) uint32 { return binary.LittleEndian.Uint32(buf) }
func Uint64(buf []byte) uint64 { return binary.LittleEndian.Uint64(buf) }

// PutHash and Hash copy a 32-byte identifier (a transaction hash or public
// key) to/from a buffer without any byte-order conversion.
func PutHash(buf []byte, h [32]byte) { copy(buf, h[:]) }
func Hash(buf []byte) [32]byte {
	var h [32]byte
	copy(h[:], buf)
	return h
}

// PutPasscode and Passcode handle the four-word passcode layout of
// RequestLog and RequestLogIdRangeFromTx. No package in this module calls
// them; logbuf receives those requests already decoded.
func PutPasscode(buf []byte, p [4]uint64) {
	for i, w := range p {
		PutUint64(buf[i*8:], w)
	}
}

func Passcode(buf []byte) [4]uint64 {
	var p [4]uint64
	for i := range p {
		p[i] = Uint64(buf[i*8:])
	}
	return p
}
